package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

func TestProject_GrowthAdjusted(t *testing.T) {
	bundle := domain.MetricBundle{
		AvgDailyEarnings:   10,
		EarningsGrowthRate: 10,
	}

	p := Project(bundle)

	// 10 * 30 * 1.1 and 10 * 90 * 1.1^3: the 90-day horizon compounds
	// across its three 30-day sub-periods.
	assert.InDelta(t, 330.0, p.Predicted30dEarnings, 1e-9)
	assert.InDelta(t, 1197.9, p.Predicted90dEarnings, 1e-9)
}

func TestProject_NegativeGrowthNotFloored(t *testing.T) {
	bundle := domain.MetricBundle{
		AvgDailyEarnings:   10,
		EarningsGrowthRate: -150,
	}

	p := Project(bundle)

	assert.InDelta(t, -150.0, p.Predicted30dEarnings, 1e-9)
	// (-0.5)^3 = -0.125
	assert.InDelta(t, -112.5, p.Predicted90dEarnings, 1e-9)
}

func TestProject_RecruitsDoNotCompound(t *testing.T) {
	bundle := domain.MetricBundle{
		AvgDailyRecruits:  0.5,
		NetworkGrowthRate: 100,
	}

	p := Project(bundle)

	// round(0.5 * 30 * 2) — the factor applies once even at 100% growth.
	assert.Equal(t, 30, p.Predicted30dRecruits)
}

func TestProject_ZeroBundle(t *testing.T) {
	p := Project(domain.MetricBundle{})

	assert.Zero(t, p.Predicted30dEarnings)
	assert.Zero(t, p.Predicted90dEarnings)
	assert.Zero(t, p.Predicted30dRecruits)
}
