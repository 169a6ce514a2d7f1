package models

import "testing"

func TestParseGranularity(t *testing.T) {
	tests := map[string]Granularity{
		"":      GranularityMonth,
		"day":   GranularityDay,
		" DAY ": GranularityDay,
		"month": GranularityMonth,
		"week":  GranularityMonth,
	}
	for in, want := range tests {
		if got := ParseGranularity(in); got != want {
			t.Errorf("ParseGranularity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRegionLevel(t *testing.T) {
	tests := map[string]RegionLevel{
		"":        RegionState,
		"city":    RegionCity,
		"City":    RegionCity,
		"state":   RegionState,
		"country": RegionState,
	}
	for in, want := range tests {
		if got := ParseRegionLevel(in); got != want {
			t.Errorf("ParseRegionLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseForecastModel(t *testing.T) {
	tests := []struct {
		in    string
		known bool
	}{
		{"", true},
		{"linear", true},
		{"LINEAR", true},
		{"prophet", false},
	}
	for _, tt := range tests {
		model, known := ParseForecastModel(tt.in)
		if model != ModelLinear || known != tt.known {
			t.Errorf("ParseForecastModel(%q) = %q, %v; want linear, %v", tt.in, model, known, tt.known)
		}
	}
}

func TestFilterCriteria_IsEmpty(t *testing.T) {
	if !(FilterCriteria{}).IsEmpty() {
		t.Error("zero criteria should be empty")
	}
	if (FilterCriteria{States: []string{"CA"}}).IsEmpty() {
		t.Error("criteria with a state should not be empty")
	}
}
