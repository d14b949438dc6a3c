package meshstore

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMesh(t *testing.T) *Mesh {
	t.Helper()
	m, err := New([]float64{0, 1, 3}, []float64{-1, 0, 1, 2}, []float64{0, 0.5})
	require.NoError(t, err)
	return m
}

func TestNewValidatesBounds(t *testing.T) {
	_, err := New([]float64{0}, []float64{0, 1}, []float64{0, 1})
	require.True(t, errors.Is(err, ErrBadBounds))
	_, err = New([]float64{0, 1}, []float64{0, 0}, []float64{0, 1})
	require.True(t, errors.Is(err, ErrBadBounds))
}

func TestMeshLayout(t *testing.T) {
	m := testMesh(t)
	nx, ny, nz := m.Dims()
	require.Equal(t, [3]int{2, 3, 1}, [3]int{nx, ny, nz})
	require.Equal(t, 6, m.Len())
	require.InDelta(t, 2*1*0.5, m.VoxelVolume(1, 2, 0), 1e-15)

	var got []int
	for v := range m.Voxels() {
		got = append(got, m.Index(v.I, v.J, v.K))
	}
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, got)

	b := m.Bounds(0)
	b[0] = 42
	require.Equal(t, 0.0, m.Bounds(0)[0])
}

func TestVoxelTagGetOrCreate(t *testing.T) {
	m := testMesh(t)
	a, err := m.VoxelTag("mat001_frac")
	require.NoError(t, err)
	a.Elements[3] = 0.25
	b, err := m.VoxelTag("mat001_frac")
	require.NoError(t, err)
	require.Equal(t, 0.25, b.Elements[3])
	require.Equal(t, []int{2, 3, 1}, b.Shape)

	_, err = m.VoxelTag("bad name")
	require.True(t, errors.Is(err, ErrTagName))

	_, ok := m.Tag("missing")
	require.False(t, ok)
	_, err = m.VoxelTag("a_err")
	require.NoError(t, err)
	require.Equal(t, []string{"a_err", "mat001_frac"}, m.TagNames())
}

func TestSetMeshTagCopies(t *testing.T) {
	m := testMesh(t)
	v := []float64{0, 1, 2}
	require.NoError(t, m.SetMeshTag("material_ids", v))
	v[0] = 9
	got, ok := m.MeshTag("material_ids")
	require.True(t, ok)
	require.Equal(t, []float64{0, 1, 2}, got)
	require.NoError(t, m.SetMeshTag("material_ids", []float64{5}))
	got, _ = m.MeshTag("material_ids")
	require.Equal(t, []float64{5}, got)
}

func TestNetCDFRoundTrip(t *testing.T) {
	m := testMesh(t)
	frac, err := m.VoxelTag("mat000_frac")
	require.NoError(t, err)
	for i := range frac.Elements {
		frac.Elements[i] = float64(i) / 10
	}
	_, err = m.VoxelTag("mat000_err")
	require.NoError(t, err)
	require.NoError(t, m.SetMeshTag("material_ids", []float64{0, 7}))
	require.NoError(t, m.SetMeshTag("material_densities", []float64{0, 2.5}))

	path := filepath.Join(t.TempDir(), "mesh.ncf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, m.WriteNetCDF(f))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := ReadNetCDF(f)
	require.NoError(t, err)

	for a := 0; a < 3; a++ {
		require.Equal(t, m.Bounds(a), got.Bounds(a))
	}
	require.Equal(t, m.TagNames(), got.TagNames())
	g, ok := got.Tag("mat000_frac")
	require.True(t, ok)
	require.Equal(t, frac.Elements, g.Elements)
	require.Equal(t, []string{"material_densities", "material_ids"}, got.MeshTagNames())
	d, _ := got.MeshTag("material_densities")
	require.Equal(t, []float64{0, 2.5}, d)
}

func TestSaveTagPNGs(t *testing.T) {
	m, err := New([]float64{0, 1, 2}, []float64{0, 1}, []float64{0, 1, 2, 3})
	require.NoError(t, err)
	tag, err := m.VoxelTag("frac")
	require.NoError(t, err)
	tag.Elements[m.Index(1, 0, 2)] = 0.5

	prefix := filepath.Join(t.TempDir(), "out", "slice")
	paths, err := m.SaveTagPNGs("frac", prefix, 0)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	f, err := os.Open(paths[2])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
	r, _, _, _ := img.At(1, 0).RGBA()
	require.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(0, 0).RGBA()
	require.Equal(t, uint32(0), r)

	_, err = m.SaveTagPNGs("missing", prefix, 0)
	require.Error(t, err)
}
