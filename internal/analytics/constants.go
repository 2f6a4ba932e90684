// Package analytics implements the pure computation engine: metric
// aggregation, churn risk scoring, earnings projection, network
// forecasting, insight generation and A/B significance testing. Nothing
// in this package performs I/O; every function is deterministic given
// its inputs.
package analytics

import "time"

// SnapshotFreshness is how long a cached analytics snapshot stays fresh
// before a read triggers a recompute.
const SnapshotFreshness = 24 * time.Hour

// Growth windows compare the last 30 days against the 30 days before
// that, measured from the wall clock rather than account age.
const growthWindow = 30 * 24 * time.Hour

// Activity score breakpoints, keyed by days since the last transaction.
// The step values are exact business rules; do not retune them.
const (
	activityStale30 = 0.1
	activityStale14 = 0.3
	activityStale7  = 0.6
	activityStale3  = 0.8
	activityFresh   = 1.0
)

// Churn factor weights. They pre-allocate the 0..1 range, so the additive
// score never needs clamping: 0.40+0.30+0.20+0.10 = 1.0.
const (
	weightInactivitySevere   = 0.40 // no activity for more than 30 days
	weightInactivityModerate = 0.25 // more than 14 days
	weightInactivityMild     = 0.10 // more than 7 days

	weightEarningsCollapse = 0.30 // growth rate below -50%
	weightEarningsDecline  = 0.20 // below -20%
	weightEarningsDip      = 0.10 // below 0%

	weightRecruitingStalled = 0.20 // zero recruits in 30d despite history
	weightRecruitingSlowed  = 0.10 // under half the prior window

	weightZeroEngagement = 0.10 // nothing at all after the first week
)

// Churn tier thresholds.
const (
	churnCriticalThreshold = 0.75
	churnHighThreshold     = 0.50
	churnMediumThreshold   = 0.25
)

// Network forecast assumptions: a flat 5% active-user uplift regardless
// of horizon, and a naive symmetric ±20% band at a fixed 0.80 confidence.
const (
	activeUserUplift        = 1.05
	forecastBandLower       = 0.8
	forecastBandUpper       = 1.2
	forecastConfidenceLevel = 0.80
)

// Chi-square critical values for one degree of freedom. The significance
// test maps the statistic through this table instead of computing a
// continuous p-value.
const (
	chiSquareCritical999 = 10.83 // p = 0.001
	chiSquareCritical99  = 6.63  // p = 0.01
	chiSquareCritical95  = 3.84  // p = 0.05
)
