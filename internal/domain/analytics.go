package domain

import "time"

// ChurnRiskLevel is the discrete tier derived from the churn risk score.
type ChurnRiskLevel string

const (
	ChurnRiskLow      ChurnRiskLevel = "low"
	ChurnRiskMedium   ChurnRiskLevel = "medium"
	ChurnRiskHigh     ChurnRiskLevel = "high"
	ChurnRiskCritical ChurnRiskLevel = "critical"
)

// MetricBundle holds the summary statistics derived from a user's raw
// transaction and recruitment history. The window fields (Last30d/Prior30d)
// are carried alongside the averages because the churn scorer needs them.
type MetricBundle struct {
	TotalEarnings      float64   `json:"total_earnings"`
	AvgDailyEarnings   float64   `json:"avg_daily_earnings"`
	AvgWeeklyEarnings  float64   `json:"avg_weekly_earnings"`
	AvgMonthlyEarnings float64   `json:"avg_monthly_earnings"`
	EarningsGrowthRate float64   `json:"earnings_growth_rate"`
	TotalRecruits      int       `json:"total_recruits"`
	AvgDailyRecruits   float64   `json:"avg_daily_recruits"`
	AvgWeeklyRecruits  float64   `json:"avg_weekly_recruits"`
	NetworkGrowthRate  float64   `json:"network_growth_rate"`
	DaysActive         int       `json:"days_active"`
	DaysInactive       int       `json:"days_inactive"`
	LastActivityAt     time.Time `json:"last_activity_at"`
	ActivityScore      float64   `json:"activity_score"`
	Last30dEarnings    float64   `json:"-"`
	Prior30dEarnings   float64   `json:"-"`
	Last30dRecruits    int       `json:"-"`
	Prior30dRecruits   int       `json:"-"`
}

// ChurnAssessment is the weighted risk score and its tier.
type ChurnAssessment struct {
	ChurnRiskScore float64        `json:"churn_risk_score"`
	ChurnRiskLevel ChurnRiskLevel `json:"churn_risk_level"`
}

// Projection holds the growth-adjusted forward estimates.
type Projection struct {
	Predicted30dEarnings float64 `json:"predicted_30d_earnings"`
	Predicted90dEarnings float64 `json:"predicted_90d_earnings"`
	Predicted30dRecruits int     `json:"predicted_30d_recruits"`
}

// AnalyticsSnapshot is the cached analytics row for one user: metrics,
// churn assessment, projections and the best recruitment window, plus the
// cache bookkeeping timestamps. ComputedAt is set once when the row is
// first created; only UpdatedAt moves on refresh.
type AnalyticsSnapshot struct {
	UserID string `json:"user_id"`
	MetricBundle
	ChurnAssessment
	Projection
	BestRecruitmentDay  *string   `json:"best_recruitment_day"`
	BestRecruitmentHour *int      `json:"best_recruitment_hour"`
	ComputedAt          time.Time `json:"computed_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NetworkForecast is a single forecast row, keyed by (type, date).
type NetworkForecast struct {
	ForecastType           string    `json:"forecast_type"`
	ForecastDate           time.Time `json:"forecast_date"`
	PredictedNewUsers      int       `json:"predicted_new_users"`
	PredictedTotalUsers    int64     `json:"predicted_total_users"`
	PredictedTotalEarnings float64   `json:"predicted_total_earnings"`
	PredictedActiveUsers   int64     `json:"predicted_active_users"`
	ConfidenceLevel        float64   `json:"confidence_level"`
	LowerBound             float64   `json:"lower_bound"`
	UpperBound             float64   `json:"upper_bound"`
}

// Insight is a single human-readable recommendation derived from a
// cached snapshot.
type Insight struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`
	Priority string `json:"priority"`
}

// SignificanceResult is the outcome of the two-variant chi-square test.
type SignificanceResult struct {
	ChiSquare       float64 `json:"chi_square"`
	PValue          float64 `json:"p_value"`
	IsSignificant   bool    `json:"is_significant"`
	ConfidenceLevel float64 `json:"confidence_level"`
}
