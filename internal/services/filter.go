package services

import (
	"golang.org/x/text/unicode/norm"

	"sales-dashboard/internal/models"
)

// Predicate reports whether a record belongs to a filtered view.
type Predicate func(models.Record) bool

func matchAll(models.Record) bool { return true }

// BuildPredicate folds the criteria into a single AND-combined predicate.
// Set filters match the exact, case-sensitive label. Date bounds are inclusive;
// a bound that does not parse is ignored rather than rejected.
func BuildPredicate(c models.FilterCriteria) Predicate {
	var preds []Predicate

	if set := toSet(c.Categories); set != nil {
		preds = append(preds, func(r models.Record) bool { return set[r.Category] })
	}
	if set := toSet(c.Cities); set != nil {
		preds = append(preds, func(r models.Record) bool { return set[r.ShipCity] })
	}
	if set := toSet(c.States); set != nil {
		preds = append(preds, func(r models.Record) bool { return set[r.ShipState] })
	}
	if start, ok := ParseDate(c.StartDate); ok {
		preds = append(preds, func(r models.Record) bool { return !r.Date.Before(start) })
	}
	if end, ok := ParseDate(c.EndDate); ok {
		preds = append(preds, func(r models.Record) bool { return !r.Date.After(end) })
	}

	switch len(preds) {
	case 0:
		return matchAll
	case 1:
		return preds[0]
	}
	return func(r models.Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// ApplyFilter returns a fresh slice holding the matching records in table order.
func ApplyFilter(t *Table, c models.FilterCriteria) []models.Record {
	pred := BuildPredicate(c)
	out := make([]models.Record, 0, len(t.records))
	for _, r := range t.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// toSet folds values to NFC, matching how labels are stored.
func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[norm.NFC.String(item)] = true
	}
	return set
}
