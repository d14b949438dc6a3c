package alara

import (
	"bytes"
	"testing"

	"github.com/lukaszgryglicki/mmgrid/internal/meshstore"
	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
	"github.com/stretchr/testify/require"
)

func taggedMesh(t *testing.T) *meshstore.Mesh {
	t.Helper()
	m, err := meshstore.New([]float64{0, 1, 3}, []float64{0, 1}, []float64{0, 1})
	require.NoError(t, err)
	require.NoError(t, m.SetMeshTag(mmgrid.MaterialIDsTag, []float64{0, 3}))
	require.NoError(t, m.SetMeshTag(mmgrid.MaterialDensitiesTag, []float64{0, 1.5}))
	void, err := m.VoxelTag(mmgrid.FractionTag(0))
	require.NoError(t, err)
	copy(void.Elements, []float64{0.5, 1})
	steel, err := m.VoxelTag(mmgrid.FractionTag(1))
	require.NoError(t, err)
	copy(steel.Elements, []float64{0.5, 0})
	return m
}

func TestMaterialName(t *testing.T) {
	require.Equal(t, "mat3_rho-1.5", MaterialName(3, 1.5))
	require.Equal(t, "mat12_rho-7.85", MaterialName(12, 7.85))
}

func TestWriteGeometry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeometry(&buf, taggedMesh(t), nil))
	want := `geometry rectangular

volume
    1    zone_0
    2    zone_1
end

mat_loading
    zone_0    mix_0
    zone_1    void
end

mixture mix_0
    material mat3_rho-1.5 1 0.5
end
`
	require.Equal(t, want, buf.String())
}

func TestWriteGeometryCustomNames(t *testing.T) {
	var buf bytes.Buffer
	names := func(id int, _ float64) string { return "steel" }
	require.NoError(t, WriteGeometry(&buf, taggedMesh(t), names))
	require.Contains(t, buf.String(), "material steel 1 0.5\n")
}

func TestWriteGeometryNeedsTags(t *testing.T) {
	m, err := meshstore.New([]float64{0, 1}, []float64{0, 1}, []float64{0, 1})
	require.NoError(t, err)
	require.Error(t, WriteGeometry(&bytes.Buffer{}, m, nil))

	require.NoError(t, m.SetMeshTag(mmgrid.MaterialIDsTag, []float64{0, 1}))
	require.NoError(t, m.SetMeshTag(mmgrid.MaterialDensitiesTag, []float64{0, 1}))
	require.Error(t, WriteGeometry(&bytes.Buffer{}, m, nil))
}
