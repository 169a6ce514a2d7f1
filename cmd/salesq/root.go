package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

// cliOptions holds the persistent flags shared by every query command.
type cliOptions struct {
	csvFile  string
	cacheDir string
	logLevel string

	categories []string
	cities     []string
	states     []string
	start      string
	end        string
}

func (o *cliOptions) criteria() models.FilterCriteria {
	return models.FilterCriteria{
		Categories: o.categories,
		Cities:     o.cities,
		States:     o.states,
		StartDate:  o.start,
		EndDate:    o.end,
	}
}

// analytics builds a query engine from the flags, falling back to the
// environment for anything not given on the command line.
func (o *cliOptions) analytics(cmd *cobra.Command) (*services.Analytics, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	csvFile, cacheDir := cfg.Dataset.CSVFile, cfg.Dataset.CacheDir
	if cmd.Flags().Changed("csv") {
		csvFile = o.csvFile
	}
	if cmd.Flags().Changed("cache-dir") {
		cacheDir = o.cacheDir
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), config.LoggerConfig{Level: o.logLevel, Format: "text"})
	source := services.NewCSVSource(csvFile, cacheDir, logger)
	return services.NewAnalytics(services.NewDataset(source, logger), logger), nil
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "salesq",
		Short:         "Query the sales dataset from the command line",
		Long:          `salesq runs the dashboard's analytics queries against a sales CSV and prints the results as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.csvFile, "csv", "", "path to the sales CSV (default from CSV_FILE)")
	f.StringVar(&opts.cacheDir, "cache-dir", "", "directory for parsed dataset snapshots (default from DATASET_CACHE_DIR)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	f.StringSliceVar(&opts.categories, "category", nil, "only include these categories (repeatable)")
	f.StringSliceVar(&opts.cities, "city", nil, "only include these ship cities (repeatable)")
	f.StringSliceVar(&opts.states, "state", nil, "only include these ship states (repeatable)")
	f.StringVar(&opts.start, "start", "", "inclusive start date, YYYY-MM-DD")
	f.StringVar(&opts.end, "end", "", "inclusive end date, YYYY-MM-DD")

	root.AddCommand(
		newFiltersCmd(opts),
		newKPIsCmd(opts),
		newTimeSeriesCmd(opts),
		newCategoriesCmd(opts),
		newRegionsCmd(opts),
		newForecastCmd(opts),
	)
	return root
}

// query wraps a single analytics call as a command that prints JSON.
func query[T any](opts *cliOptions, fn func(ctx context.Context, a *services.Analytics) (T, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.analytics(cmd)
		if err != nil {
			return err
		}

		result, err := fn(cmd.Context(), a)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}
}
