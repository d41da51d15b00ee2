// Package main implements the geoextract command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/config"
	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
	"github.com/fyrsmithlabs/geoextract/internal/pipeline"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree. The --config flag is shared by
// every subcommand.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "geoextract",
		Short: "Extract known places and street addresses from documents",
		Long: `geoextract finds locations in free text. It matches the names of
locations from a location file and recognizes street addresses.

Configuration is read from an optional YAML file and GEOEXTRACT_*
environment variables.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newExtractCmd(load),
		newServeCmd(load),
		newMCPCmd(load),
		newSplitCmd(load),
		newNormalizeCmd(load),
		newVersionCmd(),
	)
	return root
}

// configLoader loads the configuration selected by the root flags.
type configLoader func() (*config.Config, error)

// newLogger builds the application logger. Commands that own stdout log to
// stderr.
func newLogger(cfg *config.Config, stderr bool) (*logging.Logger, error) {
	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logCfg.Output.Stderr = stderr
	return logging.NewLogger(logCfg, nil)
}

// pipelineBuilder returns the function that turns a location list into a
// pipeline configured by cfg.
func pipelineBuilder(cfg *config.Config, logger *zap.Logger) func([]location.Location) (*pipeline.Pipeline, error) {
	return func(locs []location.Location) (*pipeline.Pipeline, error) {
		opts, err := cfg.Pipeline.Options(logger)
		if err != nil {
			return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
		}
		return pipeline.New(locs, opts)
	}
}

// buildPipeline loads the configured location file, if any, and builds a
// pipeline. Without a location file only address patterns can match.
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	var locs []location.Location
	if cfg.Locations.Path != "" {
		var err error
		locs, err = location.LoadFile(cfg.Locations.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded locations",
			zap.String("path", cfg.Locations.Path),
			zap.Int("count", len(locs)))
	}
	return pipelineBuilder(cfg, logger)(locs)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "geoextract by Fyrsmith Labs")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
