// Package alara writes a tagged mesh as ALARA activation-code geometry:
// one zone per voxel and one mixture per non-void zone.
package alara

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/lukaszgryglicki/mmgrid/internal/meshstore"
	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
)

// NameFunc names the ALARA material for an (id, density) pair.
type NameFunc func(id int, density float64) string

// MaterialName is the default NameFunc.
func MaterialName(id int, density float64) string {
	return "mat" + strconv.Itoa(id) + "_rho-" + strconv.FormatFloat(density, 'g', -1, 64)
}

type material struct {
	name string
	frac []float64
}

// WriteGeometry writes the geometry, volume, mat_loading and mixture
// blocks. The mesh must carry the tags written by mmgrid.Export. A nil
// names uses MaterialName.
func WriteGeometry(w io.Writer, mesh *meshstore.Mesh, names NameFunc) error {
	if names == nil {
		names = MaterialName
	}
	mats, err := materials(mesh, names)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "geometry rectangular\n\nvolume\n")
	for v := range mesh.Voxels() {
		fmt.Fprintf(bw, "    %s    zone_%d\n", fmtFloat(mesh.VoxelVolume(v.I, v.J, v.K)), mesh.Index(v.I, v.J, v.K))
	}
	fmt.Fprintf(bw, "end\n\nmat_loading\n")
	filled := make([]bool, mesh.Len())
	for n := range filled {
		for _, m := range mats {
			if m.frac[n] > 0 {
				filled[n] = true
				break
			}
		}
		if filled[n] {
			fmt.Fprintf(bw, "    zone_%d    mix_%d\n", n, n)
		} else {
			fmt.Fprintf(bw, "    zone_%d    void\n", n)
		}
	}
	fmt.Fprintf(bw, "end\n")
	for n := range filled {
		if !filled[n] {
			continue
		}
		fmt.Fprintf(bw, "\nmixture mix_%d\n", n)
		for _, m := range mats {
			if f := m.frac[n]; f > 0 {
				fmt.Fprintf(bw, "    material %s 1 %s\n", m.name, fmtFloat(f))
			}
		}
		fmt.Fprintf(bw, "end\n")
	}
	return bw.Flush()
}

// materials collects the fraction tags of every non-void material.
func materials(mesh *meshstore.Mesh, names NameFunc) ([]material, error) {
	ids, ok := mesh.MeshTag(mmgrid.MaterialIDsTag)
	if !ok {
		return nil, fmt.Errorf("alara: mesh has no %s tag", mmgrid.MaterialIDsTag)
	}
	dens, ok := mesh.MeshTag(mmgrid.MaterialDensitiesTag)
	if !ok || len(dens) != len(ids) {
		return nil, fmt.Errorf("alara: mesh tag %s does not match %s", mmgrid.MaterialDensitiesTag, mmgrid.MaterialIDsTag)
	}
	var out []material
	for m, id := range ids {
		if int(id) == mmgrid.VoidID {
			continue
		}
		t, ok := mesh.Tag(mmgrid.FractionTag(m))
		if !ok {
			return nil, fmt.Errorf("alara: mesh has no %s tag", mmgrid.FractionTag(m))
		}
		out = append(out, material{name: names(int(id), dens[m]), frac: t.Elements})
	}
	return out, nil
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
