// ABOUTME: Naive revenue forecaster extrapolating the trailing mean growth rate
// ABOUTME: Drops empty periods, projects N future periods labelled with the following months
package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// Supported forecast horizons, in periods.
const (
	HorizonQuarter  = 3
	HorizonHalfYear = 6
	HorizonYear     = 12
)

// trailingWindow is how many actual points feed the growth rate.
const trailingWindow = 3

// ForecastPoint is either a historical point or a projected one.
type ForecastPoint struct {
	Period     string `json:"period"`
	Amount     int64  `json:"amount"`
	IsForecast bool   `json:"is_forecast"`
}

// ParseHorizon accepts "3", "6", "12" and the "3months" style used by the dashboard selector.
func ParseHorizon(value string) (int, error) {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "months")
	n, err := strconv.Atoi(v)
	if err != nil || !ValidHorizon(n) {
		return 0, fmt.Errorf("invalid horizon: %s (valid: 3, 6, 12)", value)
	}
	return n, nil
}

// ValidHorizon reports whether n is one of the supported horizons.
func ValidHorizon(n int) bool {
	return n == HorizonQuarter || n == HorizonHalfYear || n == HorizonYear
}

// Forecast projects horizon periods past the last non-empty point of series.
// With fewer than two non-empty points the series is returned as-is.
func Forecast(series []models.RevenuePoint, horizon int) []ForecastPoint {
	var actual []models.RevenuePoint
	lastRealPos := -1
	for i, p := range series {
		if p.Amount > 0 {
			actual = append(actual, p)
			lastRealPos = i
		}
	}

	if len(actual) < 2 {
		out := make([]ForecastPoint, 0, len(series))
		for _, p := range series {
			out = append(out, ForecastPoint{Period: p.Period, Amount: p.Amount})
		}
		return out
	}

	out := make([]ForecastPoint, 0, len(actual)+max(horizon, 0))
	for _, p := range actual {
		out = append(out, ForecastPoint{Period: p.Period, Amount: p.Amount})
	}

	rate := GrowthRate(actual)
	last := actual[len(actual)-1]
	month := models.MonthIndex(last.Period)
	if month < 0 {
		month = lastRealPos % len(models.Months)
	}

	next := float64(last.Amount)
	for i := 0; i < horizon; i++ {
		next *= rate
		month = (month + 1) % len(models.Months)
		out = append(out, ForecastPoint{
			Period:     models.Months[month],
			Amount:     roundAmount(next),
			IsForecast: true,
		})
	}

	return out
}

// GrowthRate is the mean of pairwise ratios over the last three non-empty points.
// It returns 1 when there are fewer than two points.
func GrowthRate(actual []models.RevenuePoint) float64 {
	window := actual
	if len(window) > trailingWindow {
		window = window[len(window)-trailingWindow:]
	}
	if len(window) < 2 {
		return 1
	}

	var sum float64
	for i := 1; i < len(window); i++ {
		sum += float64(window[i].Amount) / float64(window[i-1].Amount)
	}
	return sum / float64(len(window)-1)
}

func roundAmount(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(math.Round(v))
	}
}
