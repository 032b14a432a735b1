/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/notargets/gofoam/catalog"
	"github.com/notargets/gofoam/geometry3D/geofile"
	"github.com/notargets/gofoam/gmsh"
)

// gmsh reads and writes local files, artifacts are staged through a work directory
type gmshJob struct {
	sess   *session
	runner *gmsh.Runner
	dir    string
	dryRun bool
}

func newGmshJob(cmd *cobra.Command, sess *session) (job *gmshJob, cleanup func(), err error) {
	job = &gmshJob{sess: sess, runner: gmsh.NewRunner()}
	job.runner.Binary, _ = cmd.Flags().GetString("gmsh")
	job.dryRun, _ = cmd.Flags().GetBool("dry-run")
	job.dir, _ = cmd.Flags().GetString("workdir")
	cleanup = func() {}
	if job.dir == "" {
		if job.dir, err = ioutil.TempDir("", "gofoam"); err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = os.RemoveAll(job.dir) }
	} else if err = os.MkdirAll(job.dir, 0o755); err != nil {
		return nil, nil, err
	}
	if job.dir, err = filepath.Abs(job.dir); err != nil {
		cleanup()
		return nil, nil, err
	}
	job.runner.Dir = job.dir
	return
}

func addGmshFlags(cmd *cobra.Command) {
	cmd.Flags().String("gmsh", "gmsh", "gmsh executable")
	cmd.Flags().String("workdir", "", "directory for the files gmsh reads and writes (default a temporary one)")
	cmd.Flags().Bool("dry-run", false, "write the gmsh scripts without running gmsh")
}

// stage copies artifacts into the work directory and returns their local names.
func (job *gmshJob) stage(ctx context.Context, keys ...string) ([]string, error) {
	names := make([]string, len(keys))
	for i, key := range keys {
		data, err := job.sess.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		names[i] = path.Base(key)
		if err = ioutil.WriteFile(filepath.Join(job.dir, names[i]), data, 0o644); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// script writes a gmsh script into the work directory and stores it as key.
func (job *gmshJob) script(ctx context.Context, key string, text []byte) (string, error) {
	local := filepath.Join(job.dir, path.Base(key))
	if err := ioutil.WriteFile(local, text, 0o644); err != nil {
		return "", err
	}
	_, err := job.sess.store.Put(ctx, key, text)
	return local, err
}

// collect stores a file gmsh produced.
func (job *gmshJob) collect(ctx context.Context, local, key string) (string, error) {
	data, err := ioutil.ReadFile(local)
	if err != nil {
		return "", err
	}
	info, err := job.sess.store.Put(ctx, key, data)
	return info.Fingerprint, err
}

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Mesh a finalized foam with gmsh",
	Long: `Writes <base>UMesh.geo, a sizing script over the finalized geometry, and
meshes it into tetrahedra with gmsh, storing <base>UMesh.msh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("output")
		return withSession(func(ctx context.Context, sess *session) error {
			job, cleanup, err := newGmshJob(cmd, sess)
			if err != nil {
				return err
			}
			defer cleanup()
			if in == "" {
				in = sess.params.Filename + "Morphology.geo"
			}
			if out == "" {
				out = sess.params.Filename
			}
			return runMesh(ctx, job, in, out)
		})
	},
}

func runMesh(ctx context.Context, job *gmshJob, in, base string) error {
	start := time.Now()
	names, err := job.stage(ctx, in)
	if err != nil {
		return err
	}
	p := job.sess.params
	cfg := geofile.MeshConfig(names[0], geofile.UnitBox, p.Sizing(), p.Mesh.CharacteristicLength)
	scriptKey, mshKey := base+"UMesh.geo", base+"UMesh.msh"
	local, err := job.script(ctx, scriptKey, cfg)
	if err != nil {
		return err
	}
	if job.dryRun {
		return nil
	}
	if err = job.runner.Mesh3D(ctx, local); err != nil {
		return err
	}
	localMsh := strings.TrimSuffix(local, ".geo") + ".msh"
	sum, err := gmsh.ReadSummaryFile(localMsh)
	if err != nil {
		return err
	}
	if job.sess.verbose {
		sum.Print()
	}
	fp, err := job.collect(ctx, localMsh, mshKey)
	if err != nil {
		return err
	}
	return job.sess.record(ctx, catalog.Run{
		Step:    "mesh",
		Input:   in,
		Outputs: []string{scriptKey, mshKey},
		Counts: map[string]int{
			"Node":        sum.Nodes,
			"Element":     sum.Elements,
			"Tetrahedron": sum.ElementTypes[gmsh.TypeTetrahedron],
		},
		Fingerprint: fp,
	}, start)
}

// BrepCmd represents the brep command
var BrepCmd = &cobra.Command{
	Use:   "brep",
	Short: "Convert a geometry script to a BREP file with gmsh",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("output")
		return withSession(func(ctx context.Context, sess *session) error {
			job, cleanup, err := newGmshJob(cmd, sess)
			if err != nil {
				return err
			}
			defer cleanup()
			if out == "" {
				out = strings.TrimSuffix(in, ".geo") + ".brep"
			}
			return runBrep(ctx, job, in, out)
		})
	},
}

func runBrep(ctx context.Context, job *gmshJob, in, out string) error {
	start := time.Now()
	names, err := job.stage(ctx, in)
	if err != nil {
		return err
	}
	local, err := job.script(ctx, "geo2brep.geo", geofile.Geo2Brep(names[0], path.Base(out)))
	if err != nil || job.dryRun {
		return err
	}
	if err = job.runner.ParseAndExit(ctx, local); err != nil {
		return err
	}
	fp, err := job.collect(ctx, filepath.Join(job.dir, path.Base(out)), out)
	if err != nil {
		return err
	}
	return job.sess.record(ctx, catalog.Run{Step: "brep", Input: in, Outputs: []string{out}, Fingerprint: fp}, start)
}

// MergeCmd represents the merge command
var MergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge boxed cell and wall solids into one labelled geometry",
	Long: `Merges the BREP solids given with -i in order; the volumes of the i-th
input not claimed by an earlier one become physical volume i. gmsh unrolls the
result into a plain geometry script.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetStringSlice("inputs")
		out, _ := cmd.Flags().GetString("output")
		return withSession(func(ctx context.Context, sess *session) error {
			job, cleanup, err := newGmshJob(cmd, sess)
			if err != nil {
				return err
			}
			defer cleanup()
			if len(in) == 0 {
				f := sess.params.Filename
				in = []string{f + "CellsBox.brep", f + "WallsBox.brep"}
			}
			if out == "" {
				out = sess.params.Filename + "Box.geo"
			}
			return runMerge(ctx, job, in, out)
		})
	},
}

func runMerge(ctx context.Context, job *gmshJob, in []string, out string) error {
	start := time.Now()
	names, err := job.stage(ctx, in...)
	if err != nil {
		return err
	}
	local, err := job.script(ctx, "merge.geo", geofile.MergeAndLabel(names, geofile.UnitBox))
	if err != nil || job.dryRun {
		return err
	}
	unrolled, err := job.runner.Unroll(ctx, local)
	if err != nil {
		return err
	}
	fp, err := job.collect(ctx, unrolled, out)
	if err != nil {
		return err
	}
	return job.sess.record(ctx, catalog.Run{Step: "merge", Input: strings.Join(in, ","), Outputs: []string{out}, Fingerprint: fp}, start)
}

func init() {
	rootCmd.AddCommand(MeshCmd, BrepCmd, MergeCmd)
	MeshCmd.Flags().StringP("input", "i", "", "finalized geometry (default <Filename>Morphology.geo)")
	MeshCmd.Flags().StringP("output", "o", "", "base name of the outputs (default <Filename>)")
	BrepCmd.Flags().StringP("input", "i", "", "geometry script")
	BrepCmd.Flags().StringP("output", "o", "", "BREP file (default the input with a .brep extension)")
	_ = BrepCmd.MarkFlagRequired("input")
	MergeCmd.Flags().StringSliceP("inputs", "i", nil, "BREP solids, cells first (default <Filename>CellsBox.brep,<Filename>WallsBox.brep)")
	MergeCmd.Flags().StringP("output", "o", "", "merged geometry (default <Filename>Box.geo)")
	for _, c := range []*cobra.Command{MeshCmd, BrepCmd, MergeCmd} {
		addGmshFlags(c)
	}
}
