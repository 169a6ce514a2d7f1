package models

import "strings"

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// ParseGranularity falls back to month for anything it does not recognise.
func ParseGranularity(s string) Granularity {
	if strings.EqualFold(strings.TrimSpace(s), string(GranularityDay)) {
		return GranularityDay
	}
	return GranularityMonth
}

type RegionLevel string

const (
	RegionState RegionLevel = "state"
	RegionCity  RegionLevel = "city"
)

// ParseRegionLevel falls back to state for anything it does not recognise.
func ParseRegionLevel(s string) RegionLevel {
	if strings.EqualFold(strings.TrimSpace(s), string(RegionCity)) {
		return RegionCity
	}
	return RegionState
}

type ForecastModel string

const ModelLinear ForecastModel = "linear"

// DefaultHorizon is the number of months forecast when the caller gives none.
const DefaultHorizon = 3

// ParseForecastModel always resolves to the linear model; the bool reports
// whether the input named it explicitly (or was empty).
func ParseForecastModel(s string) (ForecastModel, bool) {
	s = strings.TrimSpace(s)
	return ModelLinear, s == "" || strings.EqualFold(s, string(ModelLinear))
}
