package geofile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gofoam/geometry3D/brep"
)

// one square face closing a (flat) volume, touching every statement kind
const squareGeo = `SetFactory("OpenCASCADE");
// tessellation output
Point (1) = {0,0,0};
Point (2) = {1, 0, 0, psize};
Point (3) = {1,1,3e-9};
Point(4) = {0,1,0,0.025};
Line (1) = {1,2};
Line (2) = {2,3};
Line (3) = {3,4};
Line (4) = {4,1};
Line Loop (1) = {1,2,-3,4};
Plane Surface (1) = {1};
Surface Loop (1) = {-1};
Volume (1) = {1};
Periodic Surface {1} = {1} Translate{-1,0,0};
Physical Surface (4) = {1};
Physical Volume ("cells") = {1};
Block(5) = {0,0,0,1,1,1};
`

func TestParse(t *testing.T) {
	r := NewReader()
	s, err := r.Parse([]byte(squareGeo))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len(brep.PointKind))
	assert.Equal(t, 4, s.Len(brep.EdgeKind))
	assert.Equal(t, brep.Loop{1, 2, 3, 4}, s.WireLoops[1])
	assert.Equal(t, brep.Face{1}, s.Faces[1])
	assert.Equal(t, brep.Loop{1}, s.ShellLoops[1])
	assert.Equal(t, brep.Volume{1}, s.Volumes[1])
	require.Len(t, s.Periodic, 1)
	assert.Equal(t, r3.Vec{X: -1}, s.Periodic[0].Translation)
	assert.Equal(t, []int{1}, s.PhysicalSurfaces[4].Members)
	assert.Equal(t, brep.PhysicalGroup{Name: "cells", Members: []int{1}}, s.PhysicalVolumes[1])

	// near zero snaps, sizing is kept verbatim
	assert.Equal(t, 0., s.Points[3].X.Z)
	assert.Equal(t, "psize", s.Points[2].Sizing)
	assert.Equal(t, "0.025", s.Points[4].Sizing)
	assert.Equal(t, "", s.Points[1].Sizing)

	assert.Equal(t, map[string]int{"SetFactory": 1, "Block": 1}, r.Unknown)
	require.NoError(t, s.Validate())
}

func TestParsePreserveOrientation(t *testing.T) {
	r := NewReader()
	r.PreserveOrientation = true
	s, err := r.Parse([]byte(squareGeo))
	require.NoError(t, err)
	assert.Equal(t, brep.Loop{1, 2, -3, 4}, s.WireLoops[1])
	assert.Equal(t, brep.Loop{-1}, s.ShellLoops[1])
}

func TestParseNamedGroups(t *testing.T) {
	text := `Physical Volume ("walls") = {2};
Physical Volume (7) = {1};
Physical Volume ("foam") = {1,2};
Physical Volume ("CELLS") = {1};`
	s, err := NewReader().Parse([]byte(text))
	require.NoError(t, err)
	assert.Equal(t, "walls", s.PhysicalVolumes[2].Name)
	assert.Equal(t, "CELLS", s.PhysicalVolumes[1].Name)
	assert.Equal(t, []int{1}, s.PhysicalVolumes[7].Members)
	assert.Equal(t, "foam", s.PhysicalVolumes[8].Name)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind brep.Kind
	}{
		{"point arity", "Point (1) = {0,0};", brep.PointKind},
		{"point too many", "Point (1) = {0,0,0,1,2};", brep.PointKind},
		{"point not a number", "Point (1) = {0,x,0};", brep.PointKind},
		{"zero id", "Point (0) = {0,0,0};", brep.PointKind},
		{"duplicate id", "Line (1) = {1,2};\nLine (1) = {2,3};", brep.EdgeKind},
		{"edge arity", "Line (1) = {1,2,3};", brep.EdgeKind},
		{"empty loop", "Line Loop (1) = {};", brep.WireLoopKind},
		{"expression reference", "Volume (1) = {v1()};", brep.VolumeKind},
		{"named face", `Plane Surface ("a") = {1};`, brep.FaceKind},
		{"periodic translation", "Periodic Surface {1} = {2} Translate{1,0};", brep.PeriodicKind},
		{"reserved name reused", "Physical Volume (1) = {1};\nPhysical Volume (\"cells\") = {1};", brep.PhysicalVolumeKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader().Parse([]byte(tt.text))
			require.Error(t, err)
			assert.True(t, errors.Is(err, brep.ErrMalformedRecord))
			var ee *brep.EntityError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.kind, ee.Kind)
		})
	}
}

func TestParseLineNumbers(t *testing.T) {
	text := "Point (1) = {0,0,0};\n/* two\nlines */\nPoint (2) = {0,0};\n"
	_, err := NewReader().Parse([]byte(text))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestRoundTrip(t *testing.T) {
	s, err := NewReader().Parse([]byte(squareGeo))
	require.NoError(t, err)

	w := &Writer{Header: true}
	path := filepath.Join(t.TempDir(), "square.geo")
	require.NoError(t, w.WriteFile(path, s))

	r := NewReader()
	back, err := r.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Counts(), back.Counts())
	for id, p := range s.Points {
		assert.InDelta(t, 0, r3.Norm(r3.Sub(p.X, back.Points[id].X)), 1e-12)
		assert.Equal(t, p.Sizing, back.Points[id].Sizing)
	}
	assert.Equal(t, s.PhysicalVolumes, back.PhysicalVolumes)
	assert.Equal(t, map[string]int{"SetFactory": 1}, r.Unknown)
}

func TestWriteOrder(t *testing.T) {
	s := brep.NewStore()
	s.Points[2] = brep.Point{X: r3.Vec{X: 0.5}}
	s.Points[1] = brep.Point{X: r3.Vec{X: -0.25, Y: 1e20}, Sizing: "psize"}
	s.Edges[1] = brep.Edge{1, 2}
	s.WireLoops[1] = brep.Loop{1, -1}
	s.Faces[1] = brep.Face{1}
	s.ShellLoops[1] = brep.Loop{-1}
	s.Volumes[1] = brep.Volume{1}
	s.Periodic = []brep.PeriodicPair{{Dst: 1, Src: 1, Translation: r3.Vec{Y: -1}}}
	s.PhysicalVolumes[1] = brep.PhysicalGroup{Members: []int{1}}

	want := `SetFactory("OpenCASCADE");
Point (1) = {-0.25,1e+20,0,psize};
Point (2) = {0.5,0,0};
Line (1) = {1,2};
Line Loop (1) = {1,1};
Plane Surface (1) = {1};
Surface Loop (1) = {1};
Volume (1) = {1};
Periodic Surface {1} = {1} Translate{0,-1,0};
Physical Volume (1) = {1};
`
	assert.Equal(t, want, string(NewWriter().Format(s)))

	signed := (&Writer{}).Format(s)
	assert.True(t, strings.HasPrefix(string(signed), "Point (1)"))
	assert.Contains(t, string(signed), "Line Loop (1) = {1,-1};")
	assert.Contains(t, string(signed), "Surface Loop (1) = {-1};")
}

func TestKeywords(t *testing.T) {
	for _, k := range brep.Kinds() {
		name := Keyword(k)
		require.NotEmpty(t, name, k.String())
		got, ok := KindOf(name)
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	k, ok := KindOf("Line   Loop")
	assert.True(t, ok)
	assert.Equal(t, brep.WireLoopKind, k)
	k, ok = KindOf("Surface")
	assert.True(t, ok)
	assert.Equal(t, brep.FaceKind, k)
	_, ok = KindOf("Curve Loop")
	assert.False(t, ok)
}

func TestScripts(t *testing.T) {
	cfg := string(MeshConfig("FoamMorphology.geo", UnitBox, Sizing{Point: 0.1, Edge: 0.1, Cell: 0.2}, 0.1))
	assert.True(t, strings.HasPrefix(cfg, `Merge "FoamMorphology.geo";`))
	assert.Contains(t, cfg, "csize = 0.2;")
	assert.Contains(t, cfg, "Line In BoundingBox {-1e-06, -1e-06, -1e-06, 1.00000")
	assert.Contains(t, cfg, "Background Field = 5;")

	ml := string(MergeAndLabel([]string{"FoamCellsBox.brep", "FoamWallsBox.brep"}, UnitBox))
	assert.Contains(t, ml, "v2() -= v1();")
	assert.Contains(t, ml, "Physical Volume(2) = {v2()};")
	assert.Contains(t, ml, "Periodic Surface {s2()} = {s1()} Translate{1,0,0};")
	assert.Contains(t, ml, "Periodic Surface {s4()} = {s3()} Translate{0,1,0};")

	gb := string(Geo2Brep("in.geo", "out.brep"))
	assert.Equal(t, "SetFactory(\"OpenCASCADE\");\nMerge \"in.geo\";\nSave \"out.brep\";\n", gb)

	// the entity reader ignores everything a script declares
	r := NewReader()
	s, err := r.Parse([]byte(cfg))
	require.NoError(t, err)
	assert.Zero(t, s.Len(brep.PointKind))
	assert.NotEmpty(t, r.Unknown)
}
