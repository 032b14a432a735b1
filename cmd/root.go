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
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofoam/InputParameters"
	"github.com/notargets/gofoam/artifacts"
	"github.com/notargets/gofoam/catalog"
	"github.com/notargets/gofoam/geometry3D/brep"
	"github.com/notargets/gofoam/geometry3D/geofile"
	"github.com/notargets/gofoam/metrics"
	"github.com/notargets/gofoam/morphology"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gofoam",
	Short: "Prepare tessellated foam geometry for meshing",
	Long: `gofoam repairs the B-Rep geometry of a tessellated foam and gets it ready
for an unstructured mesher: walls are synthesized by shrinking every cell,
duplicate entities are merged, holes are split out of loops and the faces on
the unit box are paired periodically.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gofoam.yaml)")
	pf.String("store", ".", "artifact store: a directory, mem:// or s3://bucket/prefix")
	pf.String("catalog", "", "run catalog: a SQLite file or a postgres:// DSN")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile at exit")
	pf.String("profile", "", "write a CPU profile into this directory")
	pf.BoolP("verbose", "v", false, "log every pipeline step")
	pf.StringP("inputParametersFile", "I", "", "YAML file for run parameters like:\n\t- WallThickness\n\t- Mesh sizes")
	for _, key := range []string{"store", "catalog", "metrics-file", "profile", "verbose", "inputParametersFile"} {
		if err := viper.BindPFlag(key, pf.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".gofoam" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gofoam")
	}

	viper.SetEnvPrefix("GOFOAM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// session holds what every command touches besides its geometry.
type session struct {
	store   artifacts.Store
	catalog *catalog.Catalog // nil when no catalog is configured
	metrics *metrics.Recorder
	params  *InputParameters.FoamParameters
	verbose bool

	metricsFile string
	profile     interface{ Stop() }
}

func openSession(ctx context.Context) (sess *session, err error) {
	sess = &session{
		metrics:     metrics.NewRecorder(),
		params:      InputParameters.NewFoamParameters(),
		verbose:     viper.GetBool("verbose"),
		metricsFile: viper.GetString("metrics-file"),
	}
	if file := viper.GetString("inputParametersFile"); file != "" {
		var data []byte
		if data, err = ioutil.ReadFile(file); err != nil {
			return nil, err
		}
		if err = sess.params.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if sess.verbose {
			sess.params.Print()
		}
	}
	if sess.store, err = artifacts.Open(ctx, viper.GetString("store")); err != nil {
		return nil, err
	}
	if dsn := viper.GetString("catalog"); dsn != "" {
		if sess.catalog, err = catalog.Open(ctx, dsn); err != nil {
			return nil, err
		}
	}
	if dir := viper.GetString("profile"); dir != "" {
		sess.profile = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	}
	return sess, nil
}

func (sess *session) close() (err error) {
	if sess.profile != nil {
		sess.profile.Stop()
	}
	if sess.catalog != nil {
		err = sess.catalog.Close()
	}
	if sess.metricsFile != "" {
		if werr := sess.metrics.WriteTextfile(sess.metricsFile); werr != nil && err == nil {
			err = werr
		}
	}
	return
}

// withSession runs fn inside a session opened from the current configuration.
func withSession(fn func(ctx context.Context, sess *session) error) error {
	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	err = fn(ctx, sess)
	if cerr := sess.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (sess *session) options() (morphology.Options, error) {
	opts, err := sess.params.MorphologyOptions()
	if err != nil {
		return opts, err
	}
	opts.Verbose = sess.verbose
	opts.Metrics = sess.metrics
	return opts, nil
}

func (sess *session) readGeo(ctx context.Context, key string) (*brep.Store, error) {
	data, err := sess.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	r := geofile.NewReader()
	s, err := r.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if sess.verbose {
		for kw, n := range r.Unknown {
			log.Printf("%s: skipped %d %q statements", key, n, kw)
		}
	}
	return s, nil
}

func (sess *session) writeGeo(ctx context.Context, key string, s *brep.Store) (artifacts.Info, error) {
	info, err := sess.store.Put(ctx, key, geofile.NewWriter().Format(s))
	if err == nil && sess.verbose {
		log.Printf("wrote %s (%d bytes, %s)", key, info.Size, info.Fingerprint[:12])
	}
	return info, err
}

// record adds a run to the catalog, when there is one.
func (sess *session) record(ctx context.Context, run catalog.Run, start time.Time) error {
	if sess.catalog == nil {
		return nil
	}
	run.Duration = time.Since(start)
	_, err := sess.catalog.Record(ctx, run)
	return err
}
