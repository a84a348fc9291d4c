package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-etl/internal/config"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootOptions struct {
	logLevel  string
	logFormat string
	envFile   string
}

// scenarioFlags are shared by process and simulate.
type scenarioFlags struct {
	soil  string
	area  float64
	hours int
	seed  uint64
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.soil, "soil", "medium", "soil permeability class: high, medium or low")
	cmd.Flags().Float64Var(&f.area, "area", hydrology.DefaultCatchmentAreaKm2, "catchment area in km2")
	cmd.Flags().IntVar(&f.hours, "hours", hydrology.DefaultDurationHours, "progression window in hours")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "noise seed; 0 draws fresh entropy")
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "floodctl",
		Short: "Flood risk assessment from district rainfall normals",
		Long: `floodctl turns district rainfall normals into flood-risk assessments.

  floodctl process    Assess every district in a CSV or XLSX dataset
  floodctl simulate   Assess a single rainfall scenario or a YAML scenario file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv(opts.envFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file")

	root.AddCommand(
		newProcessCmd(opts),
		newSimulateCmd(opts),
	)
	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return observability.NewCLILogger(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
}
