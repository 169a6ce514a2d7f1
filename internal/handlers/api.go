package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// respond runs one analytics query inside a span and writes the envelope.
func respond[T any](h *APIHandlers, w http.ResponseWriter, r *http.Request, op string, query func(ctx context.Context) (T, error)) {
	ctx, span := observability.StartSpan(r.Context(), op)
	defer span.End(h.logger)

	data, err := query(ctx)
	if err != nil {
		span.SetError(err)
		errors.WriteError(w, h.logger, err, observability.GetRequestID(ctx))
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "analytics.filters", h.analytics.Filters)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	criteria := parseCriteria(r.URL.Query())
	respond(h, w, r, "analytics.kpis", func(ctx context.Context) (models.KPIs, error) {
		return h.analytics.KPIs(ctx, criteria)
	})
}

func (h *APIHandlers) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := parseCriteria(q)
	granularity := models.ParseGranularity(q.Get("granularity"))

	respond(h, w, r, "analytics.timeseries", func(ctx context.Context) (models.TimeSeries, error) {
		return h.analytics.TimeSeries(ctx, criteria, granularity)
	})
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	criteria := parseCriteria(r.URL.Query())
	respond(h, w, r, "analytics.categories", func(ctx context.Context) (models.CategoryRanking, error) {
		return h.analytics.Categories(ctx, criteria)
	})
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := parseCriteria(q)
	level := models.ParseRegionLevel(q.Get("level"))

	respond(h, w, r, "analytics.regions", func(ctx context.Context) (models.RegionRanking, error) {
		return h.analytics.Regions(ctx, criteria, level)
	})
}

func (h *APIHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := parseCriteria(q)

	params, known, err := parseForecast(q)
	if !known {
		observability.LoggerFrom(r.Context(), h.logger).Debug("unsupported forecast model, using linear",
			"model", q.Get("model"))
	}

	respond(h, w, r, "analytics.forecast", func(ctx context.Context) (models.ForecastResult, error) {
		if err != nil {
			return models.ForecastResult{}, err
		}
		result, err := h.analytics.Forecast(ctx, criteria, params.Horizon)
		if span := observability.GetSpan(ctx); span != nil {
			span.SetTag("horizon", strconv.Itoa(params.Horizon))
		}
		return result, err
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "analytics.stats", h.analytics.Stats)
}
