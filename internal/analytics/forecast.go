package analytics

import (
	"math"
	"time"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// PlatformSeries is the platform-wide historical input to the network
// forecaster: one entry per day with recorded activity over the trailing
// window, plus the current user counts.
type PlatformSeries struct {
	DailyNewUsers []int64
	DailyEarnings []float64
	TotalUsers    int64
	ActiveUsers   int64
}

// BuildNetworkForecast produces one forecast row per day from +1 to
// +daysAhead. New-user and earnings averages are plain means over the
// available historical days. The active-user estimate applies a flat 5%
// uplift that deliberately ignores the horizon, and the earnings band is
// a fixed ±20% at 0.80 confidence.
func BuildNetworkForecast(series PlatformSeries, forecastType string, daysAhead int, now time.Time) []domain.NetworkForecast {
	var avgNewUsers float64
	if len(series.DailyNewUsers) > 0 {
		var sum int64
		for _, n := range series.DailyNewUsers {
			sum += n
		}
		avgNewUsers = float64(sum) / float64(len(series.DailyNewUsers))
	}

	var avgDailyEarnings float64
	if len(series.DailyEarnings) > 0 {
		var sum float64
		for _, e := range series.DailyEarnings {
			sum += e
		}
		avgDailyEarnings = sum / float64(len(series.DailyEarnings))
	}

	predictedNewUsers := int(math.Round(avgNewUsers))
	predictedActiveUsers := int64(math.Round(float64(series.ActiveUsers) * activeUserUplift))

	today := now.UTC().Truncate(24 * time.Hour)

	forecasts := make([]domain.NetworkForecast, 0, daysAhead)
	for day := 1; day <= daysAhead; day++ {
		predictedEarnings := avgDailyEarnings * float64(day)

		forecasts = append(forecasts, domain.NetworkForecast{
			ForecastType:           forecastType,
			ForecastDate:           today.AddDate(0, 0, day),
			PredictedNewUsers:      predictedNewUsers,
			PredictedTotalUsers:    series.TotalUsers + int64(predictedNewUsers)*int64(day),
			PredictedTotalEarnings: predictedEarnings,
			PredictedActiveUsers:   predictedActiveUsers,
			ConfidenceLevel:        forecastConfidenceLevel,
			LowerBound:             predictedEarnings * forecastBandLower,
			UpperBound:             predictedEarnings * forecastBandUpper,
		})
	}

	return forecasts
}
