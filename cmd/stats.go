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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gofoam/geometry3D/brep"
)

// StatsCmd represents the stats command
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entity statistics of a geometry",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("input")
		return withSession(func(ctx context.Context, sess *session) error {
			return runStats(ctx, sess, in, os.Stdout)
		})
	},
}

// RunsCmd represents the runs command
var RunsCmd = &cobra.Command{
	Use:   "runs [step]",
	Short: "List the runs recorded in the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var step string
		if len(args) == 1 {
			step = args[0]
		}
		return withSession(func(ctx context.Context, sess *session) error {
			return runRuns(ctx, sess, step, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(StatsCmd, RunsCmd)
	StatsCmd.Flags().StringP("input", "i", "", "geometry to inspect")
	_ = StatsCmd.MarkFlagRequired("input")
}

// runStats prints the entity counts and whether every reference resolves.
func runStats(ctx context.Context, sess *session, in string, w io.Writer) error {
	s, err := sess.readGeo(ctx, in)
	if err != nil {
		return err
	}
	if sess.verbose {
		s.PrintStatistics()
	}
	fmt.Fprintf(w, "%s\n", in)
	counts := s.Counts()
	for _, kind := range brep.Kinds() {
		fmt.Fprintf(w, "%-16s %8d\n", kind.String(), counts[kind])
	}
	if err = s.Validate(); err != nil {
		fmt.Fprintf(w, "integrity: %v\n", err)
		return err
	}
	fmt.Fprintln(w, "integrity: ok")
	return nil
}

func runRuns(ctx context.Context, sess *session, step string, w io.Writer) error {
	if sess.catalog == nil {
		return fmt.Errorf("no catalog configured, see --catalog")
	}
	runs, err := sess.catalog.List(ctx, step)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fp := r.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Fprintf(w, "%4d %-9s %-28s -> %v %s %v\n", r.ID, r.Step, r.Input, r.Outputs, fp, r.Duration)
	}
	return nil
}
