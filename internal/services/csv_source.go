package services

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize       = 10000
	maxWorkers      = 10
	snapshotVersion = "v1"
	maxQuantity     = math.MaxInt32
)

// Column names of the processed sales export.
const (
	colDate     = "Date"
	colAmount   = "Total_Amount"
	colQuantity = "Qty"
	colCategory = "Category"
	colCity     = "ship-city"
	colState    = "ship-state"
)

// CSVSource reads the processed sales CSV. When CacheDir is set, the parsed rows
// are stored as a gob snapshot and reused while the CSV is older than it.
type CSVSource struct {
	Path     string
	CacheDir string
	Logger   *slog.Logger
}

func NewCSVSource(path, cacheDir string, logger *slog.Logger) *CSVSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{Path: path, CacheDir: cacheDir, Logger: logger}
}

func (s *CSVSource) Load(ctx context.Context) ([]models.Record, error) {
	if cached, err := s.loadSnapshot(); err == nil {
		s.Logger.Info("loaded dataset snapshot", "records", len(cached), "path", s.Path)
		return cached, nil
	}

	start := time.Now()
	s.Logger.Info("processing CSV file", "filename", s.Path)

	records, err := s.parse(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.saveSnapshot(records); err != nil {
		s.Logger.Warn("failed to save dataset snapshot", "error", err)
	}

	duration := time.Since(start)
	s.Logger.Info("csv processing complete",
		"records", len(records),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()))

	return records, nil
}

// columns maps the columns the dataset needs to their position; -1 when absent.
type columns struct {
	date, amount, quantity, category, city, state int
}

func resolveColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}

	cols := columns{
		date:     lookup(colDate),
		amount:   lookup(colAmount),
		quantity: lookup(colQuantity),
		category: lookup(colCategory),
		city:     lookup(colCity),
		state:    lookup(colState),
	}
	if cols.date < 0 {
		return cols, ErrMissingDateColumn
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// record converts one CSV row; ok is false when the date does not parse.
func (c columns) record(row []string) (models.Record, bool) {
	date, ok := ParseDate(field(row, c.date))
	if !ok {
		return models.Record{}, false
	}

	rec := models.Record{
		Date:      date,
		Quantity:  1,
		Category:  field(row, c.category),
		ShipCity:  field(row, c.city),
		ShipState: field(row, c.state),
	}
	if v, ok := parseFinite(field(row, c.amount)); ok && v >= 0 {
		rec.TotalAmount, rec.HasAmount = v, true
	}
	if q, ok := parseFinite(field(row, c.quantity)); ok && q >= 1 && q <= maxQuantity {
		rec.Quantity = int(q)
	}
	return rec, true
}

// parseFinite rejects the inf and nan spellings strconv accepts.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (s *CSVSource) parse(ctx context.Context) ([]models.Record, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, &DataSourceError{Source: s.Path, Op: "open", Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return nil, &DataSourceError{Source: s.Path, Op: "read header", Err: err}
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, &DataSourceError{Source: s.Path, Op: "resolve columns", Err: err}
	}

	records := make([]models.Record, 0, batchSize)
	batch := make([][]string, 0, batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DataSourceError{Source: s.Path, Op: "parse", Err: err}
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if records, err = parseBatch(ctx, cols, batch, records); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if records, err = parseBatch(ctx, cols, batch, records); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// parseBatch converts rows concurrently and appends the valid ones to dst in
// file order.
func parseBatch(ctx context.Context, cols columns, batch [][]string, dst []models.Record) ([]models.Record, error) {
	parsed := make([]models.Record, len(batch))
	valid := make([]bool, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	chunk := (len(batch) + maxWorkers - 1) / maxWorkers
	for lo := 0; lo < len(batch); lo += chunk {
		hi := min(lo+chunk, len(batch))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				parsed[i], valid[i] = cols.record(batch[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, ok := range valid {
		if ok {
			dst = append(dst, parsed[i])
		}
	}
	return dst, nil
}

type snapshot struct {
	Version string
	Source  string
	SavedAt time.Time
	Records []models.Record
}

func (s *CSVSource) snapshotFilename() string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(s.Path)
	return filepath.Join(s.CacheDir, fmt.Sprintf("%s_%s.gob", name, snapshotVersion))
}

func (s *CSVSource) saveSnapshot(records []models.Record) error {
	if s.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.CacheDir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.CacheDir, "snapshot-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	snap := snapshot{
		Version: snapshotVersion,
		Source:  s.Path,
		SavedAt: time.Now(),
		Records: records,
	}
	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.snapshotFilename())
}

func (s *CSVSource) loadSnapshot() ([]models.Record, error) {
	if s.CacheDir == "" {
		return nil, errors.New("snapshots disabled")
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(s.snapshotFilename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != snapshotVersion || snap.Source != s.Path {
		return nil, errors.New("snapshot mismatch")
	}
	if !info.ModTime().Before(snap.SavedAt) {
		return nil, errors.New("snapshot is stale")
	}
	return snap.Records, nil
}
