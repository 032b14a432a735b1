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

// FinalizeCmd represents the finalize command
var FinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Repair a boxed foam and mark its periodic faces",
	Long: `Merges duplicate points, lines and line loops, splits holes out of loops,
pairs the faces on opposite sides of the unit box and labels every volume as
physical volume 1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("output")
		return withSession(func(ctx context.Context, sess *session) error {
			if in == "" {
				in = sess.params.Filename + "Box.geo"
			}
			if out == "" {
				out = sess.params.Filename + "Morphology.geo"
			}
			return runFinalize(ctx, sess, in, out)
		})
	},
}

func init() {
	rootCmd.AddCommand(FinalizeCmd)
	FinalizeCmd.Flags().StringP("input", "i", "", "boxed foam (default <Filename>Box.geo)")
	FinalizeCmd.Flags().StringP("output", "o", "", "finalized geometry (default <Filename>Morphology.geo)")
}

func runFinalize(ctx context.Context, sess *session, in, out string) error {
	start := time.Now()
	opts, err := sess.options()
	if err != nil {
		return err
	}
	s, err := sess.readGeo(ctx, in)
	if err != nil {
		return err
	}
	if _, err = morphology.Finalize(s, opts); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	info, err := sess.writeGeo(ctx, out, s)
	if err != nil {
		return err
	}
	return sess.record(ctx, catalog.Run{
		Step:        "finalize",
		Input:       in,
		Outputs:     []string{out},
		Counts:      catalog.CountsOf(s),
		Fingerprint: info.Fingerprint,
	}, start)
}
