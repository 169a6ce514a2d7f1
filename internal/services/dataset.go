package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"sales-dashboard/internal/models"
)

// Source produces the raw rows of the dataset. It is called at most once per Dataset.
type Source interface {
	Load(ctx context.Context) ([]models.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]models.Record, error)

func (f SourceFunc) Load(ctx context.Context) ([]models.Record, error) {
	return f(ctx)
}

// Table is the normalized, immutable dataset shared by every query.
type Table struct {
	records  []models.Record
	loadedAt time.Time
	dateMin  time.Time
	dateMax  time.Time
}

func newTable(records []models.Record) *Table {
	t := &Table{records: records, loadedAt: time.Now()}
	for i, r := range records {
		if i == 0 || r.Date.Before(t.dateMin) {
			t.dateMin = r.Date
		}
		if i == 0 || r.Date.After(t.dateMax) {
			t.dateMax = r.Date
		}
	}
	return t
}

func (t *Table) Len() int {
	return len(t.records)
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// DateRange returns the earliest and latest record dates; ok is false for an empty table.
func (t *Table) DateRange() (minDate, maxDate time.Time, ok bool) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.dateMin, t.dateMax, true
}

// Dataset loads its source once and hands out the same *Table afterwards.
// Concurrent first callers block on the single load; later calls take no lock.
type Dataset struct {
	source Source
	logger *slog.Logger

	once  sync.Once
	table *Table
	err   error
}

func NewDataset(source Source, logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dataset{source: source, logger: logger}
}

// NewStaticDataset wraps records that are already in memory. They are normalized
// on first use exactly like rows coming from a file.
func NewStaticDataset(records []models.Record) *Dataset {
	rows := make([]models.Record, len(records))
	copy(rows, records)
	return NewDataset(SourceFunc(func(context.Context) ([]models.Record, error) {
		return rows, nil
	}), nil)
}

// Get returns the cached table, loading it on the first call. A load failure is
// cached as well and returned to every caller.
func (d *Dataset) Get(ctx context.Context) (*Table, error) {
	d.once.Do(func() {
		d.table, d.err = d.load(ctx)
	})
	return d.table, d.err
}

func (d *Dataset) load(ctx context.Context) (*Table, error) {
	start := time.Now()

	raw, err := d.source.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrDataSource) {
			err = &DataSourceError{Source: "dataset", Op: "load", Err: err}
		}
		return nil, err
	}

	records := make([]models.Record, 0, len(raw))
	for _, r := range raw {
		if nr, ok := normalizeRecord(r); ok {
			records = append(records, nr)
		}
	}

	table := newTable(records)
	duration := time.Since(start)
	d.logger.Info("dataset loaded",
		"records", len(records),
		"dropped", len(raw)-len(records),
		"duration", duration,
	)
	return table, nil
}

// normalizeRecord enforces the record invariants: a valid calendar date, a month
// bucket, quantity >= 1, labels never empty and no negative amounts.
func normalizeRecord(r models.Record) (models.Record, bool) {
	if r.Date.IsZero() {
		return models.Record{}, false
	}
	r.Date = models.DayStart(r.Date)
	r.MonthBucket = models.MonthStart(r.Date)
	if r.Quantity < 1 {
		r.Quantity = 1
	}
	if r.HasAmount && (r.TotalAmount < 0 || math.IsInf(r.TotalAmount, 0) || math.IsNaN(r.TotalAmount)) {
		r.HasAmount, r.TotalAmount = false, 0
	}
	if !r.HasAmount {
		r.TotalAmount = 0
	}
	r.Category = labelOrUnknown(r.Category)
	r.ShipCity = labelOrUnknown(r.ShipCity)
	r.ShipState = labelOrUnknown(r.ShipState)
	return r, true
}

// labelOrUnknown also folds labels to NFC so composed and decomposed spellings
// of the same city group together.
func labelOrUnknown(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" || strings.EqualFold(s, "nan") {
		return models.UnknownLabel
	}
	return s
}
