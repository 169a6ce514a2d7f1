package services

import (
	"cmp"
	"slices"

	"sales-dashboard/internal/models"
)

// bucket is one group produced by groupSum.
type bucket struct {
	Key string
	Sum float64
}

// groupSum groups rows by key and sums their amounts. Buckets come back in the
// order their key was first seen; absent amounts add nothing.
func groupSum(rows []models.Record, key func(models.Record) string) []bucket {
	index := make(map[string]int)
	buckets := make([]bucket, 0)
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, bucket{Key: k})
		}
		if r.HasAmount {
			buckets[i].Sum += r.TotalAmount
		}
	}
	return buckets
}

func byMonth(r models.Record) string {
	return r.MonthBucket.Format(models.DateLayout)
}

func byDay(r models.Record) string {
	return r.Date.Format(models.DateLayout)
}

func byCategory(r models.Record) string {
	return r.Category
}

// sortByKey orders date-keyed buckets chronologically; the layout sorts lexically.
func sortByKey(b []bucket) []bucket {
	slices.SortFunc(b, func(x, y bucket) int { return cmp.Compare(x.Key, y.Key) })
	return b
}

// sortByValueDesc keeps first-seen order among equal sums.
func sortByValueDesc(b []bucket) []bucket {
	slices.SortStableFunc(b, func(x, y bucket) int { return cmp.Compare(y.Sum, x.Sum) })
	return b
}

func monthlySeries(rows []models.Record) []bucket {
	return sortByKey(groupSum(rows, byMonth))
}

func toPoints(b []bucket) []models.Point {
	points := make([]models.Point, len(b))
	for i, g := range b {
		points[i] = models.Point{Date: g.Key, Value: g.Sum}
	}
	return points
}

// ComputeKPIs summarizes a filtered view. The average only counts rows that carry
// an amount; the month-over-month percentage is nil when the previous month is 0.
func ComputeKPIs(rows []models.Record) models.KPIs {
	kpis := models.KPIs{TotalOrders: len(rows)}

	var withAmount int
	for _, r := range rows {
		if r.HasAmount {
			kpis.TotalRevenue += r.TotalAmount
			withAmount++
		}
		kpis.TotalQuantity += r.Quantity
	}
	if withAmount > 0 {
		kpis.AvgOrderValue = kpis.TotalRevenue / float64(withAmount)
	}

	monthly := monthlySeries(rows)
	var last, prev float64
	if n := len(monthly); n >= 1 {
		last = monthly[n-1].Sum
		if n >= 2 {
			prev = monthly[n-2].Sum
		}
	}
	kpis.LastMonthRevenue = last
	kpis.MoMDelta = last - prev
	if prev != 0 {
		pct := kpis.MoMDelta / prev * 100
		kpis.MoMDeltaPct = &pct
	}
	return kpis
}

// TimeSeries sums revenue per day or per month, ascending by date.
func TimeSeries(rows []models.Record, g models.Granularity) models.TimeSeries {
	key := byMonth
	if g == models.GranularityDay {
		key = byDay
	}
	return models.TimeSeries{Points: toPoints(sortByKey(groupSum(rows, key)))}
}

func RankCategories(rows []models.Record) models.CategoryRanking {
	ranked := sortByValueDesc(groupSum(rows, byCategory))
	items := make([]models.CategoryValue, len(ranked))
	for i, b := range ranked {
		items[i] = models.CategoryValue{Category: b.Key, Value: b.Sum}
	}
	return models.CategoryRanking{Items: items}
}

func RankRegions(rows []models.Record, level models.RegionLevel) models.RegionRanking {
	key := func(r models.Record) string { return r.ShipState }
	if level == models.RegionCity {
		key = func(r models.Record) string { return r.ShipCity }
	}

	ranked := sortByValueDesc(groupSum(rows, key))
	items := make([]models.RegionValue, len(ranked))
	for i, b := range ranked {
		items[i] = models.RegionValue{Name: b.Key, Value: b.Sum}
	}
	return models.RegionRanking{Items: items}
}

// FilterOptions lists every distinct label in the table for populating filter
// controls. It ignores any filter.
func FilterOptions(t *Table) models.FilterOptions {
	categories := make(map[string]struct{})
	cities := make(map[string]struct{})
	states := make(map[string]struct{})
	byState := make(map[string]map[string]struct{})

	for _, r := range t.records {
		categories[r.Category] = struct{}{}
		cities[r.ShipCity] = struct{}{}
		states[r.ShipState] = struct{}{}
		if byState[r.ShipState] == nil {
			byState[r.ShipState] = make(map[string]struct{})
		}
		byState[r.ShipState][r.ShipCity] = struct{}{}
	}

	opts := models.FilterOptions{
		Categories:    sortedKeys(categories),
		Cities:        sortedKeys(cities),
		States:        sortedKeys(states),
		CitiesByState: make(map[string][]string, len(byState)),
	}
	for state, set := range byState {
		opts.CitiesByState[state] = sortedKeys(set)
	}
	if lo, hi, ok := t.DateRange(); ok {
		opts.DateMin = lo.Format(models.DateLayout)
		opts.DateMax = hi.Format(models.DateLayout)
	}
	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
