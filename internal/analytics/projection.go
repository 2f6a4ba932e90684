package analytics

import (
	"math"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// Project extrapolates the bundle's daily averages forward using the
// growth-adjusted linear model. The 90-day horizon compounds the growth
// factor across its three 30-day sub-periods while the recruit
// projection applies its factor once; both asymmetries are intentional.
// Earnings projections are not floored at zero, so a strongly negative
// growth rate produces a negative estimate.
func Project(b domain.MetricBundle) domain.Projection {
	growthFactor := 1 + b.EarningsGrowthRate/100
	recruitFactor := 1 + b.NetworkGrowthRate/100

	return domain.Projection{
		Predicted30dEarnings: b.AvgDailyEarnings * 30 * growthFactor,
		Predicted90dEarnings: b.AvgDailyEarnings * 90 * math.Pow(growthFactor, 3),
		Predicted30dRecruits: int(math.Round(b.AvgDailyRecruits * 30 * recruitFactor)),
	}
}
