// Package cli implements the osm2rdf command-line interface: a root
// command carrying the flags shared by both subcommands, a "parse"
// subcommand driving the bulk file-export pipeline over a PBF extract,
// and an "update" subcommand driving the minutely-replication loop
// against a SPARQL 1.1 Update endpoint.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"osm2rdf.sophox.org/internal/obslog"
	"osm2rdf.sophox.org/internal/osmsource"
	"osm2rdf.sophox.org/version"
)

// cfgFile holds the path to the configuration file given via --config.
// When empty, initConfig searches $HOME and the working directory for
// .osm2rdf.yaml.
var cfgFile string

// RootCmd is the osm2rdf entry point. It carries no Run of its own;
// invoking it without a subcommand prints help.
var RootCmd = &cobra.Command{
	Use:     "osm2rdf",
	Short:   "convert OpenStreetMap data to RDF",
	Version: version.ModuleVersion(),
	Long: `osm2rdf converts OpenStreetMap entities to RDF triples.

It supports two modes of operation:
  parse   bulk-convert a .osm.pbf extract into gzip-compressed Turtle files
  update  apply the OSM minutely-replication feed to a SPARQL 1.1 Update endpoint`,
}

// Execute runs the command tree and returns any error from the selected
// subcommand.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.osm2rdf.yaml)")
	RootCmd.PersistentFlags().Bool("skip-way-geo", false, "do not emit way centroid/representative-point geometry")
	RootCmd.PersistentFlags().StringP("nodes-file", "c", "", "path to an on-disk node coordinate cache")
	RootCmd.PersistentFlags().StringP("cache-strategy", "s", string(osmsource.CacheDense), "way-node location cache strategy: sparse or dense")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	RootCmd.PersistentFlags().String("log-format", "text", "log output format: text or json")

	viper.BindPFlag("skip_way_geo", RootCmd.PersistentFlags().Lookup("skip-way-geo"))
	viper.BindPFlag("nodes_file", RootCmd.PersistentFlags().Lookup("nodes-file"))
	viper.BindPFlag("cache_strategy", RootCmd.PersistentFlags().Lookup("cache-strategy"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_format", RootCmd.PersistentFlags().Lookup("log-format"))

	RootCmd.AddCommand(parseCmd)
	RootCmd.AddCommand(updateCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".osm2rdf")
	}

	viper.SetEnvPrefix("OSM2RDF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

// rootLogger builds the logger configured from the resolved
// --verbose/--log-format flags, shared by both subcommands.
func rootLogger() *logrus.Logger {
	level := obslog.LevelInfo
	if viper.GetBool("verbose") {
		level = obslog.LevelDebug
	}
	cfg := obslog.DefaultConfig()
	cfg.Level = level
	cfg.Format = viper.GetString("log_format")
	return obslog.New(cfg)
}
