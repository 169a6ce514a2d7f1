package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-dashboard/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func order(date time.Time, amount float64, category, city, state string) models.Record {
	return models.Record{
		Date:        date,
		TotalAmount: amount,
		HasAmount:   true,
		Quantity:    1,
		Category:    category,
		ShipCity:    city,
		ShipState:   state,
	}
}

// sampleOrders has monthly revenue 100, 200, 300 for Jan-Mar 2023.
func sampleOrders() []models.Record {
	return []models.Record{
		order(day(2023, 1, 5), 60, "Kurta", "Los Angeles", "CA"),
		order(day(2023, 1, 20), 40, "Set", "Austin", "TX"),
		order(day(2023, 2, 1), 150, "Kurta", "Austin", "TX"),
		order(day(2023, 2, 14), 50, "Set", "San Diego", "CA"),
		order(day(2023, 3, 31), 300, "Western Dress", "Dallas", "TX"),
	}
}

func loadTable(t *testing.T, records []models.Record) *Table {
	t.Helper()
	table, err := NewStaticDataset(records).Get(t.Context())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return table
}

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
