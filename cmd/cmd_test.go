package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gofoam/InputParameters"
	"github.com/notargets/gofoam/artifacts"
	"github.com/notargets/gofoam/catalog"
	"github.com/notargets/gofoam/geometry3D/brep"
	"github.com/notargets/gofoam/geometry3D/geofile"
	"github.com/notargets/gofoam/gmsh"
	"github.com/notargets/gofoam/metrics"
)

// addCell appends an axis aligned box with its own points, lines and surfaces.
func addCell(s *brep.Store, lo, size r3.Vec) {
	base := len(s.Points)
	for c := 0; c < 8; c++ {
		s.Points[base+c+1] = brep.Point{X: r3.Vec{
			X: lo.X + float64(c&1)*size.X,
			Y: lo.Y + float64(c>>1&1)*size.Y,
			Z: lo.Z + float64(c>>2&1)*size.Z,
		}}
	}
	edges := make(map[[2]int]int)
	for c := 0; c < 8; c++ {
		for _, b := range []int{1, 2, 4} {
			if c&b == 0 {
				id := len(s.Edges) + 1
				s.Edges[id] = brep.Edge{base + c + 1, base + (c | b) + 1}
				edges[[2]int{c, c | b}] = id
			}
		}
	}
	var shell brep.Loop
	for _, f := range [][4]int{
		{0, 2, 6, 4}, {1, 3, 7, 5}, {0, 1, 5, 4}, {2, 3, 7, 6}, {0, 1, 3, 2}, {4, 5, 7, 6},
	} {
		var loop brep.Loop
		for k := range f {
			a, b := f[k], f[(k+1)%4]
			if a < b {
				loop = append(loop, edges[[2]int{a, b}])
			} else {
				loop = append(loop, -edges[[2]int{b, a}])
			}
		}
		id := len(s.WireLoops) + 1
		s.WireLoops[id] = loop
		s.Faces[id] = brep.Face{id}
		shell = append(shell, id)
	}
	id := len(s.ShellLoops) + 1
	s.ShellLoops[id] = shell
	s.Volumes[id] = brep.Volume{id}
}

// twoCellFoam fills the unit box with two cells split at x = 0.5.
func twoCellFoam() []byte {
	s := brep.NewStore()
	addCell(s, r3.Vec{}, r3.Vec{X: 0.5, Y: 1, Z: 1})
	addCell(s, r3.Vec{X: 0.5}, r3.Vec{X: 0.5, Y: 1, Z: 1})
	return (&geofile.Writer{}).Format(s)
}

func testSession(t *testing.T) *session {
	sess := &session{
		store:   artifacts.NewMemory(),
		metrics: metrics.NewRecorder(),
		params:  InputParameters.NewFoamParameters(),
	}
	_, err := sess.store.Put(context.Background(), "FoamTessellation.geo", twoCellFoam())
	require.NoError(t, err)
	return sess
}

func withCatalog(t *testing.T, sess *session) {
	c, err := catalog.Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	sess.catalog = c
}

func TestRunWalls(t *testing.T) {
	ctx := context.Background()
	sess := testSession(t)
	withCatalog(t, sess)
	sess.params.WallThickness = 0.1
	require.NoError(t, runWalls(ctx, sess, "FoamTessellation.geo", "Foam"))

	cells, err := sess.readGeo(ctx, "FoamCells.geo")
	require.NoError(t, err)
	walls, err := sess.readGeo(ctx, "FoamWalls.geo")
	require.NoError(t, err)
	assert.Equal(t, 2, walls.Len(brep.VolumeKind))
	assert.Equal(t, 16, walls.Len(brep.PointKind))
	for _, vol := range cells.Volumes {
		assert.Len(t, vol, 2)
	}
	require.NoError(t, cells.Validate())

	runs, err := sess.catalog.List(ctx, "walls")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"FoamCells.geo", "FoamWalls.geo"}, runs[0].Outputs)
	assert.Equal(t, 2, runs[0].Counts["Volume"])

	sess.params.WallThickness = 2
	assert.Error(t, runWalls(ctx, sess, "FoamTessellation.geo", "Foam"))
	assert.Error(t, runWalls(ctx, testSession(t), "missing.geo", "Foam"))
}

func TestRunFinalize(t *testing.T) {
	ctx := context.Background()
	sess := testSession(t)
	withCatalog(t, sess)
	require.NoError(t, runFinalize(ctx, sess, "FoamTessellation.geo", "FoamMorphology.geo"))

	s, err := sess.readGeo(ctx, "FoamMorphology.geo")
	require.NoError(t, err)
	assert.Equal(t, 11, s.Len(brep.FaceKind))
	// one pair across x, one per cell across y
	assert.Len(t, s.Periodic, 3)
	assert.Equal(t, []int{1, 2}, s.PhysicalVolumes[1].Members)
	require.NoError(t, s.Validate())

	runs, err := sess.catalog.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	data, err := sess.store.Get(ctx, "FoamMorphology.geo")
	require.NoError(t, err)
	assert.Equal(t, artifacts.Fingerprint(data), runs[0].Fingerprint)

	var out bytes.Buffer
	require.NoError(t, runRuns(ctx, sess, "finalize", &out))
	assert.Contains(t, out.String(), "FoamTessellation.geo")

	t.Run("kernel box method", func(t *testing.T) {
		sess := testSession(t)
		sess.params.BoxMethod = "occ"
		err := runFinalize(ctx, sess, "FoamTessellation.geo", "FoamMorphology.geo")
		assert.ErrorIs(t, err, brep.ErrUnsupportedKernelMethod)
	})
}

func TestRunStats(t *testing.T) {
	ctx := context.Background()
	sess := testSession(t)
	var out bytes.Buffer
	require.NoError(t, runStats(ctx, sess, "FoamTessellation.geo", &out))
	assert.Contains(t, out.String(), "Volume")
	assert.Contains(t, out.String(), "integrity: ok")

	_, err := sess.store.Put(ctx, "bad.geo", []byte("Line (1) = {1,2};"))
	require.NoError(t, err)
	out.Reset()
	assert.ErrorIs(t, runStats(ctx, sess, "bad.geo", &out), brep.ErrDanglingReference)
	assert.Contains(t, out.String(), "integrity:")

	assert.Error(t, runRuns(ctx, sess, "", &out))
}

// fakeGmsh writes an executable that stands in for gmsh.
func fakeGmsh(t *testing.T, body string) *gmsh.Runner {
	path := filepath.Join(t.TempDir(), "gmsh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	var out bytes.Buffer
	return &gmsh.Runner{Binary: path, Stdout: &out, Stderr: &out}
}

const tinyMsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
4
1 0 0 0
2 1 0 0
3 0 1 0
4 0 0 1
$EndNodes
$Elements
1
1 4 2 1 1 1 2 3 4
$EndElements
`

func testJob(t *testing.T, runner *gmsh.Runner) *gmshJob {
	dir := t.TempDir()
	runner.Dir = dir
	return &gmshJob{sess: testSession(t), runner: runner, dir: dir}
}

func TestRunMesh(t *testing.T) {
	ctx := context.Background()
	t.Run("dry run", func(t *testing.T) {
		job := testJob(t, fakeGmsh(t, "exit 1\n"))
		job.dryRun = true
		require.NoError(t, runMesh(ctx, job, "FoamTessellation.geo", "Foam"))
		cfg, err := job.sess.store.Get(ctx, "FoamUMesh.geo")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(cfg), `Merge "FoamTessellation.geo";`))
		assert.FileExists(t, filepath.Join(job.dir, "FoamTessellation.geo"))
	})
	t.Run("meshed", func(t *testing.T) {
		script := "for a; do last=$a; done\ncat > \"${last%.geo}.msh\" <<'EOF'\n" + tinyMsh + "EOF\n"
		job := testJob(t, fakeGmsh(t, script))
		withCatalog(t, job.sess)
		require.NoError(t, runMesh(ctx, job, "FoamTessellation.geo", "Foam"))
		msh, err := job.sess.store.Get(ctx, "FoamUMesh.msh")
		require.NoError(t, err)
		assert.Equal(t, tinyMsh, string(msh))
		runs, err := job.sess.catalog.List(ctx, "mesh")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, 1, runs[0].Counts["Tetrahedron"])
		assert.Equal(t, 4, runs[0].Counts["Node"])
	})
	t.Run("gmsh fails", func(t *testing.T) {
		job := testJob(t, fakeGmsh(t, "exit 2\n"))
		err := runMesh(ctx, job, "FoamTessellation.geo", "Foam")
		var ee *gmsh.ExitError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, 2, ee.Code)
	})
}

func TestRunBrepAndMerge(t *testing.T) {
	ctx := context.Background()
	job := testJob(t, fakeGmsh(t, "echo solid > FoamCells.brep\n"))
	require.NoError(t, runBrep(ctx, job, "FoamTessellation.geo", "FoamCells.brep"))
	brepData, err := job.sess.store.Get(ctx, "FoamCells.brep")
	require.NoError(t, err)
	assert.Equal(t, "solid\n", string(brepData))
	script, err := job.sess.store.Get(ctx, "geo2brep.geo")
	require.NoError(t, err)
	assert.Contains(t, string(script), `Save "FoamCells.brep";`)

	job = testJob(t, fakeGmsh(t, "cp \"$1\" \"$1_unrolled\"\n"))
	_, err = job.sess.store.Put(ctx, "FoamWalls.brep", []byte("walls"))
	require.NoError(t, err)
	_, err = job.sess.store.Put(ctx, "FoamCells.brep", []byte("cells"))
	require.NoError(t, err)
	require.NoError(t, runMerge(ctx, job, []string{"FoamCells.brep", "FoamWalls.brep"}, "FoamBox.geo"))
	merged, err := job.sess.store.Get(ctx, "FoamBox.geo")
	require.NoError(t, err)
	assert.Contains(t, string(merged), `Merge "FoamWalls.brep";`)
	assert.Contains(t, string(merged), "Physical Volume(2) = {v2()};")
}
