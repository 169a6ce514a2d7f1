package models

import "time"

// UnknownLabel replaces missing category, city and state values.
const UnknownLabel = "Unknown"

// DateLayout is the wire format for every date in query results.
const DateLayout = "2006-01-02"

// Record is one normalized order row. Records are never mutated after load.
type Record struct {
	Date        time.Time
	MonthBucket time.Time
	TotalAmount float64
	HasAmount   bool
	Quantity    int
	Category    string
	ShipCity    string
	ShipState   string
}

// MonthStart returns the first calendar day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DayStart truncates t to its calendar day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FilterCriteria is the optional set of restrictions applied before every view.
// Date bounds are kept as raw strings; unparseable bounds are ignored.
type FilterCriteria struct {
	Categories []string `json:"categories,omitempty"`
	Cities     []string `json:"cities,omitempty"`
	States     []string `json:"states,omitempty"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (c FilterCriteria) IsEmpty() bool {
	return len(c.Categories) == 0 && len(c.Cities) == 0 && len(c.States) == 0 &&
		c.StartDate == "" && c.EndDate == ""
}
