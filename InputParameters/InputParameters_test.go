package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofoam/geometry3D/geofile"
	"github.com/notargets/gofoam/morphology"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Test Foam
Filename: Foam
WallThickness: 0.05
BoxMethod: none # gmsh and occ need a CAD kernel
Mesh:
  PointSize: 0.01
  CellSize: 0.04
`)
	input := NewFoamParameters()
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "Test Foam", input.Title)
	assert.Equal(t, 0.05, input.WallThickness)
	assert.Equal(t, geofile.Sizing{Point: 0.01, Edge: 0.025, Cell: 0.04}, input.Sizing())
	// defaults survive when not given
	assert.Equal(t, 1e-10, input.Tolerance)
	assert.Equal(t, 0.1, input.Mesh.CharacteristicLength)
	input.Print()

	opts, err := input.MorphologyOptions()
	require.NoError(t, err)
	assert.Equal(t, 0.05, opts.WallThickness)
	assert.Equal(t, morphology.BoxNone, opts.BoxMethod)
	assert.Equal(t, geofile.UnitBox, opts.Domain)
}

func TestMorphologyOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"thickness", "WallThickness: 1.2"},
		{"zero thickness", "WallThickness: 0"},
		{"tolerance", "Tolerance: -1"},
		{"box method", "BoxMethod: cgal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := NewFoamParameters()
			require.NoError(t, fp.Parse([]byte(tt.yaml)))
			_, err := fp.MorphologyOptions()
			assert.Error(t, err)
		})
	}
	// kernel methods parse here and fail in the pipeline
	fp := NewFoamParameters()
	fp.BoxMethod = "gmsh"
	opts, err := fp.MorphologyOptions()
	require.NoError(t, err)
	assert.Equal(t, morphology.BoxGmsh, opts.BoxMethod)
}

func TestParseInvalid(t *testing.T) {
	fp := NewFoamParameters()
	assert.Error(t, fp.Parse([]byte("WallThickness: [1, 2]")))
}
