package analytics

import "github.com/BarkinBalci/referral-analytics-service/internal/domain"

// AssessChurnRisk combines four weighted factors into a 0..1 risk score
// and maps it to a tier. The weights and thresholds are exact business
// rules carried over from production scoring; the maximum possible score
// is 1.0 by construction.
func AssessChurnRisk(b domain.MetricBundle) domain.ChurnAssessment {
	var score float64

	// Factor 1: inactivity (max 0.40)
	switch {
	case b.DaysInactive > 30:
		score += weightInactivitySevere
	case b.DaysInactive > 14:
		score += weightInactivityModerate
	case b.DaysInactive > 7:
		score += weightInactivityMild
	}

	// Factor 2: declining earnings (max 0.30)
	switch {
	case b.EarningsGrowthRate < -50:
		score += weightEarningsCollapse
	case b.EarningsGrowthRate < -20:
		score += weightEarningsDecline
	case b.EarningsGrowthRate < 0:
		score += weightEarningsDip
	}

	// Factor 3: recruitment stagnation (max 0.20)
	if b.Last30dRecruits == 0 && b.TotalRecruits > 0 {
		score += weightRecruitingStalled
	} else if float64(b.Last30dRecruits) < float64(b.Prior30dRecruits)*0.5 {
		score += weightRecruitingSlowed
	}

	// Factor 4: zero lifetime engagement (max 0.10)
	if b.TotalRecruits == 0 && b.TotalEarnings == 0 && b.DaysActive > 7 {
		score += weightZeroEngagement
	}

	return domain.ChurnAssessment{
		ChurnRiskScore: score,
		ChurnRiskLevel: churnLevel(score),
	}
}

func churnLevel(score float64) domain.ChurnRiskLevel {
	switch {
	case score >= churnCriticalThreshold:
		return domain.ChurnRiskCritical
	case score >= churnHighThreshold:
		return domain.ChurnRiskHigh
	case score >= churnMediumThreshold:
		return domain.ChurnRiskMedium
	default:
		return domain.ChurnRiskLow
	}
}
