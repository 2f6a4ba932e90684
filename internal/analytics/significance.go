package analytics

import (
	"math"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// TestSignificance runs a 2x2 chi-square comparison of two variants'
// conversion rates. Expected counts come from the pooled conversion
// rate; the statistic is then mapped through the df=1 critical-value
// table rather than a continuous p-value. A variant with zero users
// short-circuits to the neutral "not significant" result.
func TestSignificance(conversionsA, usersA, conversionsB, usersB int64) domain.SignificanceResult {
	if usersA == 0 || usersB == 0 {
		return domain.SignificanceResult{
			PValue:          1,
			IsSignificant:   false,
			ConfidenceLevel: 0,
		}
	}

	nonConversionsA := float64(usersA - conversionsA)
	nonConversionsB := float64(usersB - conversionsB)

	totalConversions := float64(conversionsA + conversionsB)
	totalNonConversions := nonConversionsA + nonConversionsB
	totalUsers := float64(usersA + usersB)

	expConvA := float64(usersA) * totalConversions / totalUsers
	expNonConvA := float64(usersA) * totalNonConversions / totalUsers
	expConvB := float64(usersB) * totalConversions / totalUsers
	expNonConvB := float64(usersB) * totalNonConversions / totalUsers

	chiSquare := math.Pow(float64(conversionsA)-expConvA, 2)/expConvA +
		math.Pow(nonConversionsA-expNonConvA, 2)/expNonConvA +
		math.Pow(float64(conversionsB)-expConvB, 2)/expConvB +
		math.Pow(nonConversionsB-expNonConvB, 2)/expNonConvB

	result := domain.SignificanceResult{ChiSquare: chiSquare}

	switch {
	case chiSquare >= chiSquareCritical999:
		result.PValue = 0.001
		result.ConfidenceLevel = 99.9
		result.IsSignificant = true
	case chiSquare >= chiSquareCritical99:
		result.PValue = 0.01
		result.ConfidenceLevel = 99
		result.IsSignificant = true
	case chiSquare >= chiSquareCritical95:
		result.PValue = 0.05
		result.ConfidenceLevel = 95
		result.IsSignificant = true
	default:
		result.PValue = 0.1
		result.ConfidenceLevel = 0
		result.IsSignificant = false
	}

	return result
}
