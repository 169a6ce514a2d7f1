package services

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the processed sales export uses MM-DD-YY.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01-02-06",
	"01-02-2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseDate parses s with the first matching layout and returns it in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
