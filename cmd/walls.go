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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/notargets/gofoam/catalog"
	"github.com/notargets/gofoam/morphology"
)

// WallsCmd represents the walls command
var WallsCmd = &cobra.Command{
	Use:   "walls",
	Short: "Shrink tessellated cells into cells and walls",
	Long: `Reads a tessellated foam, strips loop orientation and shrinks every cell
towards its centroid, writing <base>Cells.geo and <base>Walls.geo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("output")
		return withSession(func(ctx context.Context, sess *session) error {
			if cmd.Flags().Changed("wallThickness") {
				sess.params.WallThickness, _ = cmd.Flags().GetFloat64("wallThickness")
			}
			if in == "" {
				in = sess.params.Filename + "Tessellation.geo"
			}
			if out == "" {
				out = sess.params.Filename
			}
			return runWalls(ctx, sess, in, out)
		})
	},
}

func init() {
	rootCmd.AddCommand(WallsCmd)
	WallsCmd.Flags().StringP("input", "i", "", "tessellated foam (default <Filename>Tessellation.geo)")
	WallsCmd.Flags().StringP("output", "o", "", "base name of the outputs (default <Filename>)")
	WallsCmd.Flags().Float64P("wallThickness", "w", 0.02, "shrink factor of the cells, in (0,1)")
}

func runWalls(ctx context.Context, sess *session, in, base string) error {
	start := time.Now()
	opts, err := sess.options()
	if err != nil {
		return err
	}
	s, err := sess.readGeo(ctx, in)
	if err != nil {
		return err
	}
	cells, walls, err := morphology.AddWalls(s, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	cellsKey, wallsKey := base+"Cells.geo", base+"Walls.geo"
	info, err := sess.writeGeo(ctx, cellsKey, cells)
	if err != nil {
		return err
	}
	if _, err = sess.writeGeo(ctx, wallsKey, walls); err != nil {
		return err
	}
	if sess.verbose {
		cells.PrintStatistics()
	}
	return sess.record(ctx, catalog.Run{
		Step:        "walls",
		Input:       in,
		Outputs:     []string{cellsKey, wallsKey},
		Counts:      catalog.CountsOf(cells),
		Fingerprint: info.Fingerprint,
	}, start)
}
