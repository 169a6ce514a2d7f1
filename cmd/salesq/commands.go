package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const maxHorizon = 120

func newFiltersCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List categories, cities, states and the date range",
		Args:  cobra.NoArgs,
		RunE: query(opts, func(ctx context.Context, a *services.Analytics) (models.FilterOptions, error) {
			return a.Filters(ctx)
		}),
	}
}

func newKPIsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kpis",
		Short: "Revenue, orders, average order value and month-over-month change",
		Args:  cobra.NoArgs,
		RunE: query(opts, func(ctx context.Context, a *services.Analytics) (models.KPIs, error) {
			return a.KPIs(ctx, opts.criteria())
		}),
	}
}

func newTimeSeriesCmd(opts *cliOptions) *cobra.Command {
	var granularity string
	cmd := &cobra.Command{
		Use:   "timeseries",
		Short: "Revenue per day or month",
		Args:  cobra.NoArgs,
		RunE: query(opts, func(ctx context.Context, a *services.Analytics) (models.TimeSeries, error) {
			return a.TimeSeries(ctx, opts.criteria(), models.ParseGranularity(granularity))
		}),
	}
	cmd.Flags().StringVar(&granularity, "granularity", "month", "day or month")
	return cmd
}

func newCategoriesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Revenue per category, highest first",
		Args:  cobra.NoArgs,
		RunE: query(opts, func(ctx context.Context, a *services.Analytics) (models.CategoryRanking, error) {
			return a.Categories(ctx, opts.criteria())
		}),
	}
}

func newRegionsCmd(opts *cliOptions) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Revenue per ship state or city, highest first",
		Args:  cobra.NoArgs,
		RunE: query(opts, func(ctx context.Context, a *services.Analytics) (models.RegionRanking, error) {
			return a.Regions(ctx, opts.criteria(), models.ParseRegionLevel(level))
		}),
	}
	cmd.Flags().StringVar(&level, "level", "state", "state or city")
	return cmd
}

func newForecastCmd(opts *cliOptions) *cobra.Command {
	var horizon int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Monthly revenue history with a linear trend forecast",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if horizon < 0 || horizon > maxHorizon {
				return fmt.Errorf("%w: --horizon must be between 0 and %d, got %d",
					services.ErrInvalidParameter, maxHorizon, horizon)
			}
			return nil
		},
		RunE: query(opts, func(ctx context.Context, a *services.Analytics) (models.ForecastResult, error) {
			return a.Forecast(ctx, opts.criteria(), horizon)
		}),
	}
	cmd.Flags().IntVarP(&horizon, "horizon", "H", models.DefaultHorizon, "months to forecast")
	return cmd
}
