package analytics

import (
	"time"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// Aggregate reduces a user's chronological transaction and recruitment
// history into a MetricBundle. The transactions slice is expected in
// ascending time order, matching how the ledger returns it; empty
// histories resolve to zero metrics rather than errors.
func Aggregate(transactions []domain.Transaction, recruits []domain.Recruit, accountCreatedAt, now time.Time) domain.MetricBundle {
	accountAgeDays := int(now.Sub(accountCreatedAt).Hours() / 24)
	daysActive := accountAgeDays
	if daysActive < 1 {
		daysActive = 1
	}

	var totalEarnings float64
	for _, t := range transactions {
		totalEarnings += t.Amount
	}
	avgDailyEarnings := totalEarnings / float64(daysActive)

	windowStart := now.Add(-growthWindow)
	priorStart := now.Add(-2 * growthWindow)

	var last30d, prior30d float64
	for _, t := range transactions {
		switch {
		case !t.OccurredAt.Before(windowStart):
			last30d += t.Amount
		case !t.OccurredAt.Before(priorStart):
			prior30d += t.Amount
		}
	}
	earningsGrowth := growthRate(last30d, prior30d)

	totalRecruits := len(recruits)
	avgDailyRecruits := float64(totalRecruits) / float64(daysActive)

	var last30dRecruits, prior30dRecruits int
	for _, r := range recruits {
		switch {
		case !r.OccurredAt.Before(windowStart):
			last30dRecruits++
		case !r.OccurredAt.Before(priorStart):
			prior30dRecruits++
		}
	}
	networkGrowth := growthRate(float64(last30dRecruits), float64(prior30dRecruits))

	lastActivity := accountCreatedAt
	if len(transactions) > 0 {
		lastActivity = transactions[len(transactions)-1].OccurredAt
	}
	daysInactive := int(now.Sub(lastActivity).Hours() / 24)

	return domain.MetricBundle{
		TotalEarnings:      totalEarnings,
		AvgDailyEarnings:   avgDailyEarnings,
		AvgWeeklyEarnings:  avgDailyEarnings * 7,
		AvgMonthlyEarnings: avgDailyEarnings * 30,
		EarningsGrowthRate: earningsGrowth,
		TotalRecruits:      totalRecruits,
		AvgDailyRecruits:   avgDailyRecruits,
		AvgWeeklyRecruits:  avgDailyRecruits * 7,
		NetworkGrowthRate:  networkGrowth,
		DaysActive:         daysActive,
		DaysInactive:       daysInactive,
		LastActivityAt:     lastActivity,
		ActivityScore:      activityScore(daysInactive),
		Last30dEarnings:    last30d,
		Prior30dEarnings:   prior30d,
		Last30dRecruits:    last30dRecruits,
		Prior30dRecruits:   prior30dRecruits,
	}
}

// growthRate returns the percentage change between two windows. A zero
// prior window resolves to 100 when the current window is positive and 0
// otherwise, so the division never degenerates.
func growthRate(current, prior float64) float64 {
	if prior > 0 {
		return ((current - prior) / prior) * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

// activityScore is a coarse step function of inactivity, not a
// continuous decay. The breakpoints are load-bearing for churn tiers.
func activityScore(daysInactive int) float64 {
	switch {
	case daysInactive > 30:
		return activityStale30
	case daysInactive > 14:
		return activityStale14
	case daysInactive > 7:
		return activityStale7
	case daysInactive > 3:
		return activityStale3
	default:
		return activityFresh
	}
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// BestRecruitmentWindow finds the weekday and hour (UTC) with the most
// recruit signups. Returns nils when the user has no recruits. Ties
// resolve to the lowest numeric weekday and hour.
func BestRecruitmentWindow(recruits []domain.Recruit) (*string, *int) {
	if len(recruits) == 0 {
		return nil, nil
	}

	var dayCounts [7]int
	var hourCounts [24]int
	for _, r := range recruits {
		ts := r.OccurredAt.UTC()
		dayCounts[int(ts.Weekday())]++
		hourCounts[ts.Hour()]++
	}

	bestDay := 0
	for d := 1; d < len(dayCounts); d++ {
		if dayCounts[d] > dayCounts[bestDay] {
			bestDay = d
		}
	}
	bestHour := 0
	for h := 1; h < len(hourCounts); h++ {
		if hourCounts[h] > hourCounts[bestHour] {
			bestHour = h
		}
	}

	day := dayNames[bestDay]
	return &day, &bestHour
}
