package meshstore

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
)

// DataVersion is written to every file and checked on read.
const DataVersion = "mmgrid-1"

const (
	meshTagPrefix = "meshtag_"
	meshTagList   = "mesh_tags"
)

var boundVars = [3]string{"x_bounds", "y_bounds", "z_bounds"}

// WriteNetCDF writes the boundaries, every voxel tag as a double variable
// over (x, y, z) and every mesh tag as a global attribute. The record count
// is patched in place at the end, so w must be a file.
func (m *Mesh) WriteNetCDF(w *os.File) error {
	h := cdf.NewHeader(
		[]string{"x", "y", "z", "xb", "yb", "zb"},
		[]int{m.nx, m.ny, m.nz, m.nx + 1, m.ny + 1, m.nz + 1})
	h.AddAttribute("", "comment", "structured mesh with macromaterial tags")
	h.AddAttribute("", "data_version", DataVersion)

	var listed []string
	for _, name := range m.MeshTagNames() {
		v := m.meshTags[name]
		if len(v) == 0 {
			continue
		}
		h.AddAttribute("", meshTagPrefix+name, v)
		listed = append(listed, name)
	}
	if len(listed) > 0 {
		h.AddAttribute("", meshTagList, strings.Join(listed, ","))
	}

	for a, name := range boundVars {
		h.AddVariable(name, []string{[]string{"xb", "yb", "zb"}[a]}, []float64{0})
	}
	names := m.TagNames()
	for _, name := range names {
		h.AddVariable(name, []string{"x", "y", "z"}, []float64{0})
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("meshstore: creating netcdf: %v", err)
	}
	for a, name := range boundVars {
		if err := writeVar(f, name, m.bounds[a]); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := writeVar(f, name, m.tags[name].Elements); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeVar(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	if _, err := f.Writer(name, start, end).Write(data); err != nil {
		return fmt.Errorf("meshstore: writing variable %s: %v", name, err)
	}
	return nil
}

func readVar(f *cdf.File, name string) ([]float64, error) {
	n := 1
	for _, l := range f.Header.Lengths(name) {
		n *= l
	}
	buf := make([]float64, n)
	if _, err := f.Reader(name, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("meshstore: reading variable %s: %v", name, err)
	}
	return buf, nil
}

// ReadNetCDF loads a mesh written by WriteNetCDF.
func ReadNetCDF(r cdf.ReaderWriterAt) (*Mesh, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("meshstore: opening netcdf: %v", err)
	}
	if v, _ := f.Header.GetAttribute("", "data_version").(string); v != DataVersion {
		return nil, fmt.Errorf("meshstore: data version %q is incompatible with %q", v, DataVersion)
	}

	var bounds [3][]float64
	for a, name := range boundVars {
		if bounds[a], err = readVar(f, name); err != nil {
			return nil, err
		}
	}
	m, err := New(bounds[0], bounds[1], bounds[2])
	if err != nil {
		return nil, err
	}

	for _, name := range f.Header.Variables() {
		if name == boundVars[0] || name == boundVars[1] || name == boundVars[2] {
			continue
		}
		data, err := readVar(f, name)
		if err != nil {
			return nil, err
		}
		t, err := m.VoxelTag(name)
		if err != nil {
			return nil, err
		}
		if len(data) != len(t.Elements) {
			return nil, fmt.Errorf("meshstore: variable %s has %d values, mesh has %d voxels", name, len(data), len(t.Elements))
		}
		copy(t.Elements, data)
	}

	list, _ := f.Header.GetAttribute("", meshTagList).(string)
	for _, name := range strings.Split(list, ",") {
		if name == "" {
			continue
		}
		v, ok := f.Header.GetAttribute("", meshTagPrefix+name).([]float64)
		if !ok {
			return nil, fmt.Errorf("meshstore: mesh tag %s is missing", name)
		}
		if err := m.SetMeshTag(name, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}
