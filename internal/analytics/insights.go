package analytics

import (
	"fmt"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// BuildInsights maps a cached snapshot to an ordered list of
// recommendations. Rules are applied in a fixed order and every matching
// rule contributes; there is no early exit and no side effects, so the
// function is safe to call repeatedly on the same snapshot.
func BuildInsights(s *domain.AnalyticsSnapshot) []domain.Insight {
	insights := []domain.Insight{}

	if s.ChurnRiskLevel == domain.ChurnRiskCritical {
		insights = append(insights, domain.Insight{
			Type:     "warning",
			Category: "engagement",
			Title:    "Critical: High Churn Risk",
			Message:  fmt.Sprintf("You haven't been active in %d days. Consider reaching out to your network!", s.DaysInactive),
			Action:   "View Network",
			Priority: "high",
		})
	} else if s.ChurnRiskLevel == domain.ChurnRiskHigh {
		insights = append(insights, domain.Insight{
			Type:     "warning",
			Category: "engagement",
			Title:    "Stay Active",
			Message:  "Your activity has decreased recently. Stay engaged to grow your earnings!",
			Action:   "View Dashboard",
			Priority: "medium",
		})
	}

	if s.EarningsGrowthRate > 20 {
		insights = append(insights, domain.Insight{
			Type:     "success",
			Category: "earnings",
			Title:    "Excellent Growth!",
			Message:  fmt.Sprintf("Your earnings are up %.1f%% this month!", s.EarningsGrowthRate),
			Priority: "low",
		})
	} else if s.EarningsGrowthRate < -20 {
		insights = append(insights, domain.Insight{
			Type:     "info",
			Category: "earnings",
			Title:    "Earnings Declining",
			Message:  "Your earnings have decreased. Focus on recruiting and supporting your network.",
			Action:   "View Strategies",
			Priority: "medium",
		})
	}

	if s.BestRecruitmentDay != nil && s.BestRecruitmentHour != nil {
		insights = append(insights, domain.Insight{
			Type:     "info",
			Category: "optimization",
			Title:    "Optimal Recruitment Time",
			Message:  fmt.Sprintf("Your best results are on %ss around %d:00.", *s.BestRecruitmentDay, *s.BestRecruitmentHour),
			Priority: "low",
		})
	}

	if s.Predicted30dEarnings > 0 {
		insights = append(insights, domain.Insight{
			Type:     "info",
			Category: "prediction",
			Title:    "30-Day Earnings Forecast",
			Message:  fmt.Sprintf("Based on your current performance, you're projected to earn $%.2f in the next 30 days.", s.Predicted30dEarnings),
			Priority: "low",
		})
	}

	return insights
}
