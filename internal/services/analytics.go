package services

import (
	"context"
	"log/slog"

	"sales-dashboard/internal/models"
)

// Analytics answers the dashboard queries. Every call reads the cached table,
// filters it and hands the view to exactly one aggregator.
type Analytics struct {
	dataset *Dataset
	logger  *slog.Logger
}

func NewAnalytics(dataset *Dataset, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		dataset: dataset,
		logger:  logger,
	}
}

// Warm forces the one-time dataset load.
func (a *Analytics) Warm(ctx context.Context) error {
	_, err := a.dataset.Get(ctx)
	return err
}

func (a *Analytics) view(ctx context.Context, c models.FilterCriteria) ([]models.Record, error) {
	table, err := a.dataset.Get(ctx)
	if err != nil {
		return nil, err
	}
	// Aggregators only read rows, so the unfiltered view can share the table.
	if c.IsEmpty() {
		return table.records, nil
	}
	rows := ApplyFilter(table, c)
	a.logger.DebugContext(ctx, "filtered view", "rows", len(rows), "total", table.Len())
	return rows, nil
}

func (a *Analytics) KPIs(ctx context.Context, c models.FilterCriteria) (models.KPIs, error) {
	rows, err := a.view(ctx, c)
	if err != nil {
		return models.KPIs{}, err
	}
	return ComputeKPIs(rows), nil
}

func (a *Analytics) TimeSeries(ctx context.Context, c models.FilterCriteria, g models.Granularity) (models.TimeSeries, error) {
	rows, err := a.view(ctx, c)
	if err != nil {
		return models.TimeSeries{}, err
	}
	return TimeSeries(rows, g), nil
}

func (a *Analytics) Categories(ctx context.Context, c models.FilterCriteria) (models.CategoryRanking, error) {
	rows, err := a.view(ctx, c)
	if err != nil {
		return models.CategoryRanking{}, err
	}
	return RankCategories(rows), nil
}

func (a *Analytics) Regions(ctx context.Context, c models.FilterCriteria, level models.RegionLevel) (models.RegionRanking, error) {
	rows, err := a.view(ctx, c)
	if err != nil {
		return models.RegionRanking{}, err
	}
	return RankRegions(rows, level), nil
}

// Forecast only implements the linear model.
func (a *Analytics) Forecast(ctx context.Context, c models.FilterCriteria, horizon int) (models.ForecastResult, error) {
	rows, err := a.view(ctx, c)
	if err != nil {
		return models.ForecastResult{}, err
	}
	return Forecast(rows, horizon)
}

func (a *Analytics) Filters(ctx context.Context) (models.FilterOptions, error) {
	table, err := a.dataset.Get(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return FilterOptions(table), nil
}

// Stats is used by the admin endpoint.
func (a *Analytics) Stats(ctx context.Context) (map[string]any, error) {
	table, err := a.dataset.Get(ctx)
	if err != nil {
		return nil, err
	}

	opts := FilterOptions(table)
	return map[string]any{
		"record_count": table.Len(),
		"loaded_at":    table.LoadedAt(),
		"categories":   len(opts.Categories),
		"cities":       len(opts.Cities),
		"states":       len(opts.States),
		"months":       len(monthlySeries(table.records)),
		"date_min":     opts.DateMin,
		"date_max":     opts.DateMax,
	}, nil
}
