package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const maxTableRows = 50

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%+.1f%%", *v)
	},
}

var kpiTemplate = template.Must(template.New("kpis").Funcs(funcs).Parse(`
<div id="kpi-content" class="kpi-grid">
<div class="kpi"><span>Total revenue</span><strong>{{money .TotalRevenue}}</strong></div>
<div class="kpi"><span>Orders</span><strong>{{.TotalOrders}}</strong></div>
<div class="kpi"><span>Avg order value</span><strong>{{money .AvgOrderValue}}</strong></div>
<div class="kpi"><span>Units</span><strong>{{.TotalQuantity}}</strong></div>
<div class="kpi"><span>Last month</span><strong>{{money .LastMonthRevenue}}</strong></div>
<div class="kpi"><span>MoM</span><strong{{if lt .MoMDelta 0.0}} class="negative"{{end}}>{{money .MoMDelta}} ({{pct .MoMDeltaPct}})</strong></div>
</div>`))

var seriesTableTemplate = template.Must(template.New("series").Funcs(funcs).Parse(`
<div id="{{.ID}}">
<table class="modern-table">
<thead><tr><th>{{.Label}}</th><th>Revenue</th></tr></thead>
<tbody>
{{range $i, $row := .Rows}}{{if lt $i $.MaxRows}}<tr><td>{{$row.Name}}</td><td>{{money $row.Value}}</td></tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var forecastTemplate = template.Must(template.New("forecast").Funcs(funcs).Parse(`
<div id="forecast-content">
<table class="modern-table">
<thead><tr><th>Month</th><th>Revenue</th><th></th></tr></thead>
<tbody>
{{range .History}}<tr><td>{{.Date}}</td><td>{{money .Value}}</td><td>actual</td></tr>{{end}}
{{range .Forecast}}<tr><td>{{.Date}}</td><td{{if lt .Value 0.0}} class="negative"{{end}}>{{money .Value}}</td><td>forecast</td></tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// dashboardSignals mirrors the filter controls bound on the dashboard page.
type dashboardSignals struct {
	Categories  []string `json:"categories"`
	Cities      []string `json:"cities"`
	States      []string `json:"states"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Granularity string   `json:"granularity"`
	Level       string   `json:"level"`
	Horizon     *int     `json:"horizon"`
}

func (s dashboardSignals) criteria() models.FilterCriteria {
	return models.FilterCriteria{
		Categories: s.Categories,
		Cities:     s.Cities,
		States:     s.States,
		StartDate:  strings.TrimSpace(s.StartDate),
		EndDate:    strings.TrimSpace(s.EndDate),
	}
}

func (s dashboardSignals) horizon() (int, error) {
	params := forecastParams{Horizon: models.DefaultHorizon, Model: models.ModelLinear}
	if s.Horizon != nil {
		params.Horizon = *s.Horizon
	}
	return params.Horizon, checkForecast(params)
}

// readSignals falls back to the defaults when the request carries no usable
// signals.
func (h *SSEHandlers) readSignals(r *http.Request) dashboardSignals {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("read signals", "error", err)
		return dashboardSignals{}
	}
	return signals
}

type tableRow struct {
	Name  string
	Value float64
}

type tableData struct {
	ID      string
	Label   string
	Rows    []tableRow
	MaxRows int
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

func renderTable(id, label string, rows []tableRow) (string, error) {
	return render(seriesTableTemplate, tableData{ID: id, Label: label, Rows: rows, MaxRows: maxTableRows})
}

func pointRows(points []models.Point) []tableRow {
	rows := make([]tableRow, len(points))
	for i, p := range points {
		rows[i] = tableRow{Name: p.Date, Value: p.Value}
	}
	return rows
}

// fragment is one rendered widget: an element patch plus the chart signals
// that go with it.
type fragment struct {
	html    string
	signals map[string]any
}

func (h *SSEHandlers) kpis(ctx context.Context, s dashboardSignals) (fragment, error) {
	kpis, err := h.analytics.KPIs(ctx, s.criteria())
	if err != nil {
		return fragment{}, err
	}
	html, err := render(kpiTemplate, kpis)
	return fragment{html: html, signals: map[string]any{"kpisData": kpis}}, err
}

func (h *SSEHandlers) timeSeries(ctx context.Context, s dashboardSignals) (fragment, error) {
	series, err := h.analytics.TimeSeries(ctx, s.criteria(), models.ParseGranularity(s.Granularity))
	if err != nil {
		return fragment{}, err
	}
	html, err := renderTable("timeseries-content", "Date", pointRows(series.Points))
	return fragment{html: html, signals: map[string]any{"timeseriesData": series.Points}}, err
}

func (h *SSEHandlers) categories(ctx context.Context, s dashboardSignals) (fragment, error) {
	ranking, err := h.analytics.Categories(ctx, s.criteria())
	if err != nil {
		return fragment{}, err
	}
	rows := make([]tableRow, len(ranking.Items))
	for i, item := range ranking.Items {
		rows[i] = tableRow{Name: item.Category, Value: item.Value}
	}
	html, err := renderTable("categories-content", "Category", rows)
	return fragment{html: html, signals: map[string]any{"categoriesData": ranking.Items}}, err
}

func (h *SSEHandlers) regions(ctx context.Context, s dashboardSignals) (fragment, error) {
	level := models.ParseRegionLevel(s.Level)
	ranking, err := h.analytics.Regions(ctx, s.criteria(), level)
	if err != nil {
		return fragment{}, err
	}
	rows := make([]tableRow, len(ranking.Items))
	for i, item := range ranking.Items {
		rows[i] = tableRow{Name: item.Name, Value: item.Value}
	}
	label := "State"
	if level == models.RegionCity {
		label = "City"
	}
	html, err := renderTable("regions-content", label, rows)
	return fragment{html: html, signals: map[string]any{"regionsData": ranking.Items}}, err
}

func (h *SSEHandlers) forecast(ctx context.Context, s dashboardSignals) (fragment, error) {
	horizon, err := s.horizon()
	if err != nil {
		return fragment{}, err
	}
	result, err := h.analytics.Forecast(ctx, s.criteria(), horizon)
	if err != nil {
		return fragment{}, err
	}
	html, err := render(forecastTemplate, result)
	return fragment{html: html, signals: map[string]any{"forecastData": result}}, err
}

// send writes the fragments' signals in one patch followed by their elements.
func (h *SSEHandlers) send(w http.ResponseWriter, sse *datastar.ServerSentEventGenerator, frags ...fragment) {
	signals := make(map[string]any)
	for _, f := range frags {
		for k, v := range f.signals {
			signals[k] = v
		}
	}

	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Debug("patch signals", "error", err)
		return
	}
	for _, f := range frags {
		if err := sse.PatchElements(f.html); err != nil {
			h.logger.Debug("patch elements", "error", err)
			return
		}
	}
	h.sendError(sse, "")

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

var errorTemplate = template.Must(template.New("error").Parse(
	`<div id="dashboard-error">{{if .}}<p class="negative">{{.}}</p>{{end}}</div>`))

// sendError replaces the error banner; an empty message clears it.
func (h *SSEHandlers) sendError(sse *datastar.ServerSentEventGenerator, msg string) {
	html, err := render(errorTemplate, msg)
	if err != nil {
		h.logger.Error("render error banner", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Debug("patch error banner", "error", err)
	}
}

func (h *SSEHandlers) fail(w http.ResponseWriter, r *http.Request, sse *datastar.ServerSentEventGenerator, op string, err error) {
	observability.LoggerFrom(r.Context(), h.logger).Error("sse update failed", "op", op, "error", err)

	msg := "Data is temporarily unavailable."
	if errors.Is(err, services.ErrInvalidParameter) {
		msg = err.Error()
	}
	h.sendError(sse, msg)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

type widget func(context.Context, dashboardSignals) (fragment, error)

func (h *SSEHandlers) serve(w http.ResponseWriter, r *http.Request, op string, widgets ...widget) {
	signals := h.readSignals(r)
	sse := datastar.NewSSE(w, r)

	ctx, span := observability.StartSpan(r.Context(), op)
	defer span.End(h.logger)

	frags := make([]fragment, len(widgets))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range widgets {
		g.Go(func() error {
			f, err := fn(gctx, signals)
			frags[i] = f
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.SetError(err)
		h.fail(w, r, sse, op, err)
		return
	}

	h.send(w, sse, frags...)
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sse.kpis", h.kpis)
}

func (h *SSEHandlers) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sse.timeseries", h.timeSeries)
}

func (h *SSEHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sse.categories", h.categories)
}

func (h *SSEHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sse.regions", h.regions)
}

func (h *SSEHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sse.forecast", h.forecast)
}

// HandleRefreshAll recomputes every widget concurrently and sends them in a
// single stream.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "sse.refresh_all", h.kpis, h.timeSeries, h.categories, h.regions, h.forecast)
}
