package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/dataset"
	"github.com/couchcryptid/flood-risk-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
)

type processOptions struct {
	scenarioFlags
	input   string
	sheet   string
	outDir  string
	basis   string
	xlsx    bool
	quiet   bool
	geocode bool
	workers int
}

func newProcessCmd(root *rootOptions) *cobra.Command {
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Assess every district in a rainfall dataset",
		Long: `Reads a district rainfall normals table, assesses each district and writes
complete_rainfall_data.json and summary_report.json to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd, root, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.input, "input", "i", "data/mock/district_rainfall_sample.csv", "dataset file (.csv or .xlsx)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.basis, "basis", string(domain.BasisMonsoon), "rainfall total to assess: monsoon or annual")
	cmd.Flags().BoolVar(&opts.xlsx, "xlsx", false, "also write summary_report.xlsx")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "skip the console summary")
	cmd.Flags().BoolVar(&opts.geocode, "geocode", false, "geocode districts with Mapbox (needs MAPBOX_TOKEN)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "concurrent assessments (default: GOMAXPROCS)")
	return cmd
}

func runProcess(cmd *cobra.Command, root *rootOptions, opts *processOptions) error {
	logger := root.logger(cmd)

	basis, err := domain.ParseRainfallBasis(opts.basis)
	if err != nil {
		return err
	}
	params := domain.FloodParams{
		Basis:            basis,
		SoilClass:        hydrology.ParseSoilClass(opts.soil),
		CatchmentAreaKm2: opts.area,
		DurationHours:    opts.hours,
	}

	records, err := dataset.NewStore(opts.input, opts.sheet, logger).Records()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	geocoder, err := cliGeocoder(opts.geocode, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	transformer := pipeline.NewTransformer(params, pipeline.SeededNoise(opts.seed), geocoder, logger)
	reports, err := pipeline.AssessAll(cmd.Context(), transformer, records, opts.workers)
	if err != nil {
		return err
	}
	logger.Info("districts assessed", "count", len(reports), "duration", time.Since(start))

	summary := report.Summarize(reports, time.Now())
	paths, err := report.WriteRun(opts.outDir, reports, summary, opts.xlsx)
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Info("wrote output", "path", p)
	}

	if !opts.quiet {
		report.PrintSummary(cmd.OutOrStdout(), summary)
	}
	return nil
}

func cliGeocoder(enabled bool, logger *slog.Logger) (domain.Geocoder, error) {
	if !enabled {
		return nil, nil
	}
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		return nil, errors.New("--geocode requires MAPBOX_TOKEN")
	}
	metrics := observability.NewMetrics()
	client := mapbox.NewClient(token, 5*time.Second, metrics, logger)
	return mapbox.NewCachedGeocoder(client, 1000, metrics), nil
}
