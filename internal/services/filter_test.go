package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sales-dashboard/internal/models"
)

func TestApplyFilter(t *testing.T) {
	table := loadTable(t, sampleOrders())

	tests := []struct {
		name     string
		criteria models.FilterCriteria
		want     []float64 // amounts of matching rows, in table order
	}{
		{"identity", models.FilterCriteria{}, []float64{60, 40, 150, 50, 300}},
		{"states", models.FilterCriteria{States: []string{"CA"}}, []float64{60, 50}},
		{"categories", models.FilterCriteria{Categories: []string{"Kurta", "Set"}}, []float64{60, 40, 150, 50}},
		{"cities", models.FilterCriteria{Cities: []string{"Austin"}}, []float64{40, 150}},
		{"case sensitive", models.FilterCriteria{States: []string{"ca"}}, []float64{}},
		{"and composition", models.FilterCriteria{States: []string{"TX"}, Categories: []string{"Kurta"}}, []float64{150}},
		{"inclusive bounds", models.FilterCriteria{StartDate: "2023-01-20", EndDate: "2023-02-14"}, []float64{40, 150, 50}},
		{"start only", models.FilterCriteria{StartDate: "2023-02-01"}, []float64{150, 50, 300}},
		{"end only", models.FilterCriteria{EndDate: "2023-01-05"}, []float64{60}},
		{"unparseable start ignored", models.FilterCriteria{StartDate: "last tuesday"}, []float64{60, 40, 150, 50, 300}},
		{"unparseable end ignored", models.FilterCriteria{EndDate: "soon", States: []string{"TX"}}, []float64{40, 150, 300}},
		{"empty sets ignored", models.FilterCriteria{States: []string{}, Cities: nil}, []float64{60, 40, 150, 50, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ApplyFilter(table, tt.criteria)
			got := make([]float64, len(rows))
			for i, r := range rows {
				got[i] = r.TotalAmount
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ApplyFilter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyFilter_UnparseableDateMatchesOmitted(t *testing.T) {
	table := loadTable(t, sampleOrders())

	withBad := ApplyFilter(table, models.FilterCriteria{StartDate: "2023-13-45", Categories: []string{"Kurta"}})
	without := ApplyFilter(table, models.FilterCriteria{Categories: []string{"Kurta"}})

	if diff := cmp.Diff(without, withBad); diff != "" {
		t.Errorf("unparseable start_date changed the view (-want +got):\n%s", diff)
	}
}

func TestApplyFilter_DoesNotMutateTable(t *testing.T) {
	table := loadTable(t, sampleOrders())
	before := append([]models.Record(nil), table.records...)

	rows := ApplyFilter(table, models.FilterCriteria{})
	rows[0].Category = "mutated"
	_ = ApplyFilter(table, models.FilterCriteria{States: []string{"CA"}})

	if diff := cmp.Diff(before, table.records); diff != "" {
		t.Errorf("table mutated (-want +got):\n%s", diff)
	}
	if table.Len() != len(ApplyFilter(table, models.FilterCriteria{})) {
		t.Error("identity filter should return every row")
	}
}

func TestBuildPredicate_Identity(t *testing.T) {
	pred := BuildPredicate(models.FilterCriteria{})
	if !pred(models.Record{}) {
		t.Error("empty criteria should match every record")
	}
}

func TestApplyFilter_NormalizesFilterValues(t *testing.T) {
	table := loadTable(t, []models.Record{
		{Date: day(2023, 1, 1), TotalAmount: 10, HasAmount: true, ShipCity: "Z\u00fcrich", Category: "Cafe\u0301"},
		{Date: day(2023, 1, 2), TotalAmount: 20, HasAmount: true, ShipCity: "Bern", Category: "Set"},
	})

	tests := []struct {
		name     string
		criteria models.FilterCriteria
		want     []float64
	}{
		{"decomposed city", models.FilterCriteria{Cities: []string{"Zu\u0308rich"}}, []float64{10}},
		{"composed city", models.FilterCriteria{Cities: []string{"Z\u00fcrich"}}, []float64{10}},
		{"composed category", models.FilterCriteria{Categories: []string{"Caf\u00e9"}}, []float64{10}},
		{"decomposed category", models.FilterCriteria{Categories: []string{"Cafe\u0301"}}, []float64{10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ApplyFilter(table, tt.criteria)
			got := make([]float64, len(rows))
			for i, r := range rows {
				got[i] = r.TotalAmount
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ApplyFilter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
