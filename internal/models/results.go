package models

type KPIs struct {
	TotalRevenue     float64  `json:"total_revenue"`
	TotalOrders      int      `json:"total_orders"`
	AvgOrderValue    float64  `json:"avg_order_value"`
	TotalQuantity    int      `json:"total_quantity"`
	LastMonthRevenue float64  `json:"last_month_revenue"`
	MoMDelta         float64  `json:"mom_delta"`
	MoMDeltaPct      *float64 `json:"mom_delta_pct"` // nil when the previous month had no revenue
}

type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type TimeSeries struct {
	Points []Point `json:"points"`
}

type CategoryValue struct {
	Category string  `json:"Category"`
	Value    float64 `json:"value"`
}

type CategoryRanking struct {
	Items []CategoryValue `json:"items"`
}

type RegionValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type RegionRanking struct {
	Items []RegionValue `json:"items"`
}

type ForecastResult struct {
	History  []Point `json:"history"`
	Forecast []Point `json:"forecast"`
}

type FilterOptions struct {
	Categories    []string            `json:"categories"`
	Cities        []string            `json:"cities"`
	States        []string            `json:"states"`
	CitiesByState map[string][]string `json:"cities_by_state"`
	DateMin       string              `json:"date_min"`
	DateMax       string              `json:"date_max"`
}
