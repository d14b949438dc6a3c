package mmgrid

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Mesh tag names read by downstream writers.
const (
	MaterialIDsTag       = "material_ids"
	MaterialDensitiesTag = "material_densities"
)

// MeshStore is the external mesh the results are attached to.
type MeshStore interface {
	Dims() (nx, ny, nz int)
	// VoxelTag returns the (nx, ny, nz) tag called name, creating it if needed.
	VoxelTag(name string) (*sparse.DenseArray, error)
	// SetMeshTag replaces the per-mesh values called name.
	SetMeshTag(name string, values []float64) error
}

// FractionTag is the voxel tag holding the fractions of material index m.
func FractionTag(m int) string { return fmt.Sprintf("mat%03d_frac", m) }

// ErrorTag is the voxel tag holding the standard errors of material index m.
func ErrorTag(m int) string { return fmt.Sprintf("mat%03d_err", m) }

// Export writes the normalised fractions and errors of every material into
// mesh, together with the index -> (id, density) listing. Tags are reused
// and overwritten, so exporting twice leaves the same tags.
func Export(s *Store, reg *Registry, mesh MeshStore) error {
	nx, ny, nz := s.grid.Dims()
	if !s.normalized {
		return fmt.Errorf("mmgrid: exporting %s grid: %w", s.grid, ErrNotNormalized)
	}
	if mx, my, mz := mesh.Dims(); mx != nx || my != ny || mz != nz {
		return fmt.Errorf("mmgrid: exporting %s grid with %d materials to %dx%dx%d mesh: %w",
			s.grid, reg.Len(), mx, my, mz, ErrDimsMismatch)
	}
	if reg.Len() != s.nMat {
		return fmt.Errorf("mmgrid: registry has %d materials, store has %d", reg.Len(), s.nMat)
	}

	ids := make([]float64, reg.Len())
	densities := make([]float64, reg.Len())
	for m := 0; m < reg.Len(); m++ {
		if err := writeTag(mesh, FractionTag(m), s.frac, m, s.nMat); err != nil {
			return err
		}
		if err := writeTag(mesh, ErrorTag(m), s.err, m, s.nMat); err != nil {
			return err
		}
		k := reg.Key(m)
		ids[m], densities[m] = float64(k.ID), k.Density
	}
	if err := mesh.SetMeshTag(MaterialIDsTag, ids); err != nil {
		return fmt.Errorf("mmgrid: tag %s: %w", MaterialIDsTag, err)
	}
	if err := mesh.SetMeshTag(MaterialDensitiesTag, densities); err != nil {
		return fmt.Errorf("mmgrid: tag %s: %w", MaterialDensitiesTag, err)
	}
	DebugLog("Exported %d materials onto %dx%dx%d mesh", reg.Len(), nx, ny, nz)
	return nil
}

func writeTag(mesh MeshStore, name string, src *sparse.DenseArray, m, nMat int) error {
	dst, err := mesh.VoxelTag(name)
	if err != nil {
		return fmt.Errorf("mmgrid: tag %s: %w", name, err)
	}
	if len(dst.Elements)*nMat != len(src.Elements) {
		return fmt.Errorf("mmgrid: tag %s has %d values, want %d: %w",
			name, len(dst.Elements), len(src.Elements)/nMat, ErrDimsMismatch)
	}
	copyMaterial(dst.Elements, src.Elements, m, nMat)
	return nil
}
