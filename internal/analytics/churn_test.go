package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

func TestAssessChurnRisk_FullyDisengagedUser(t *testing.T) {
	// 40 days inactive (+0.40), earnings down 60% (+0.30), zero recruits
	// this month despite lifetime recruits (+0.20).
	bundle := domain.MetricBundle{
		DaysInactive:       40,
		EarningsGrowthRate: -60,
		TotalRecruits:      5,
		Last30dRecruits:    0,
		Prior30dRecruits:   2,
		TotalEarnings:      1500,
		DaysActive:         120,
	}

	assessment := AssessChurnRisk(bundle)

	assert.InDelta(t, 0.90, assessment.ChurnRiskScore, 1e-9)
	assert.Equal(t, domain.ChurnRiskCritical, assessment.ChurnRiskLevel)
}

func TestAssessChurnRisk_NewEmptyAccount(t *testing.T) {
	// Nothing at all, but the account is under a week old: every factor
	// stays at zero.
	bundle := domain.MetricBundle{
		DaysActive:   5,
		DaysInactive: 5,
	}

	assessment := AssessChurnRisk(bundle)

	assert.Zero(t, assessment.ChurnRiskScore)
	assert.Equal(t, domain.ChurnRiskLow, assessment.ChurnRiskLevel)
}

func TestAssessChurnRisk_StaleEmptyAccount(t *testing.T) {
	// Ten days with zero engagement: mild inactivity (+0.10) plus the
	// zero-engagement factor (+0.10). Still below the medium threshold.
	bundle := domain.MetricBundle{
		DaysActive:   10,
		DaysInactive: 10,
	}

	assessment := AssessChurnRisk(bundle)

	assert.InDelta(t, 0.20, assessment.ChurnRiskScore, 1e-9)
	assert.Equal(t, domain.ChurnRiskLow, assessment.ChurnRiskLevel)
}

func TestAssessChurnRisk_InactivityBands(t *testing.T) {
	cases := []struct {
		daysInactive int
		want         float64
	}{
		{7, 0},
		{8, 0.10},
		{14, 0.10},
		{15, 0.25},
		{30, 0.25},
		{31, 0.40},
	}

	for _, c := range cases {
		bundle := domain.MetricBundle{
			DaysInactive:  c.daysInactive,
			TotalEarnings: 100,
			TotalRecruits: 1,
			// A recruit inside the last window keeps factor 3 quiet.
			Last30dRecruits: 1,
			DaysActive:      60,
		}
		got := AssessChurnRisk(bundle).ChurnRiskScore
		assert.InDelta(t, c.want, got, 1e-9, "daysInactive=%d", c.daysInactive)
	}
}

func TestAssessChurnRisk_EarningsDeclineBands(t *testing.T) {
	cases := []struct {
		growthRate float64
		want       float64
	}{
		{10, 0},
		{0, 0},
		{-10, 0.10},
		{-20, 0.10},
		{-30, 0.20},
		{-50, 0.20},
		{-60, 0.30},
	}

	for _, c := range cases {
		bundle := domain.MetricBundle{
			EarningsGrowthRate: c.growthRate,
			TotalEarnings:      100,
			TotalRecruits:      1,
			Last30dRecruits:    1,
			DaysActive:         60,
		}
		got := AssessChurnRisk(bundle).ChurnRiskScore
		assert.InDelta(t, c.want, got, 1e-9, "growthRate=%f", c.growthRate)
	}
}

func TestAssessChurnRisk_RecruitmentSlowdown(t *testing.T) {
	// Recruiting at under half the prior window's pace: +0.10, not +0.20.
	bundle := domain.MetricBundle{
		TotalRecruits:    10,
		Last30dRecruits:  1,
		Prior30dRecruits: 4,
		TotalEarnings:    100,
		DaysActive:       90,
	}

	assessment := AssessChurnRisk(bundle)
	assert.InDelta(t, 0.10, assessment.ChurnRiskScore, 1e-9)
}

func TestChurnLevel_Thresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.ChurnRiskLevel
	}{
		{0, domain.ChurnRiskLow},
		{0.24, domain.ChurnRiskLow},
		{0.25, domain.ChurnRiskMedium},
		{0.49, domain.ChurnRiskMedium},
		{0.50, domain.ChurnRiskHigh},
		{0.74, domain.ChurnRiskHigh},
		{0.75, domain.ChurnRiskCritical},
		{1.0, domain.ChurnRiskCritical},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, churnLevel(c.score), "score=%f", c.score)
	}
}
