package templates

//go:generate templ generate

import (
	"encoding/json"

	"sales-dashboard/internal/models"
)

// initialSignals seeds the datastar store with the default filter state: no
// set filters, the full date range, monthly series, state ranking and a
// three month forecast.
func initialSignals(opts models.FilterOptions) string {
	signals := map[string]any{
		"categories":  []string{},
		"cities":      []string{},
		"states":      []string{},
		"startDate":   opts.DateMin,
		"endDate":     opts.DateMax,
		"granularity": string(models.GranularityMonth),
		"level":       string(models.RegionState),
		"horizon":     models.DefaultHorizon,
	}
	b, err := json.Marshal(signals)
	if err != nil {
		return "{}"
	}
	return string(b)
}
