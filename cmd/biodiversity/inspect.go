package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"biodiversity/internal/db"
	"biodiversity/internal/logging"
)

type inspectReport struct {
	Database string          `json:"database"`
	Counts   *db.TableCounts `json:"counts"`
	Samples  []string        `json:"samples,omitempty"`
}

// newInspectReport never carries a database password to stdout.
func newInspectReport(databaseURL string, counts *db.TableCounts) inspectReport {
	return inspectReport{Database: db.RedactURL(databaseURL), Counts: counts}
}

func newInspectCommand(v *viper.Viper, opts *cliOptions) *cobra.Command {
	var listSamples bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print table sizes of the configured dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, opts)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			store, err := db.Open(ctx, cfg.StoreOptions(), logger)
			if err != nil {
				return fmt.Errorf("unable to open dataset: %w", err)
			}
			defer store.Close()

			counts, err := store.Counts(ctx)
			if err != nil {
				return fmt.Errorf("failed to count rows: %w", err)
			}
			report := newInspectReport(cfg.Database.URL, counts)
			if listSamples {
				if report.Samples, err = store.SampleNames(ctx); err != nil {
					return fmt.Errorf("failed to list samples: %w", err)
				}
			}
			logger.Debug("Inspected dataset", zap.Int64("otus", counts.OTUs))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().BoolVar(&listSamples, "samples", false, "also list every sample name")
	return cmd
}
