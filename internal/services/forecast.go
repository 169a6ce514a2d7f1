package services

import (
	"time"

	"sales-dashboard/internal/models"
)

// linearFit is y = Slope*x + Intercept.
type linearFit struct {
	Slope     float64
	Intercept float64
}

func (f linearFit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// fitLinear runs ordinary least squares over y at x = 0..n-1. A single point
// gives a flat line through it.
func fitLinear(ys []float64) linearFit {
	n := len(ys)
	switch n {
	case 0:
		return linearFit{}
	case 1:
		return linearFit{Intercept: ys[0]}
	}

	meanX := float64(n-1) / 2
	var meanY float64
	for _, y := range ys {
		meanY += y
	}
	meanY /= float64(n)

	var sxy, sxx float64
	for i, y := range ys {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}

	slope := sxy / sxx
	return linearFit{Slope: slope, Intercept: meanY - slope*meanX}
}

// Forecast fits a line to monthly revenue and extends it horizon months past the
// last observed month. Predictions are not clamped at zero.
func Forecast(rows []models.Record, horizon int) (models.ForecastResult, error) {
	if horizon < 0 {
		return models.ForecastResult{}, invalidParam("horizon must be >= 0, got %d", horizon)
	}

	result := models.ForecastResult{
		History:  []models.Point{},
		Forecast: []models.Point{},
	}

	monthly := monthlySeries(rows)
	if len(monthly) == 0 {
		return result, nil
	}

	ys := make([]float64, len(monthly))
	for i, b := range monthly {
		ys[i] = b.Sum
	}
	fit := fitLinear(ys)

	last, err := time.Parse(models.DateLayout, monthly[len(monthly)-1].Key)
	if err != nil {
		return result, err
	}

	result.History = toPoints(monthly)
	result.Forecast = make([]models.Point, horizon)
	n := len(monthly)
	for step := range horizon {
		result.Forecast[step] = models.Point{
			Date:  last.AddDate(0, step+1, 0).Format(models.DateLayout),
			Value: fit.At(float64(n + step)),
		}
	}
	return result, nil
}
