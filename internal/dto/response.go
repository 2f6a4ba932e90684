package dto

import "github.com/BarkinBalci/referral-analytics-service/internal/domain"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"user_id is required"`
}

// PublishEventResponse represents a successful event ingestion response
type PublishEventResponse struct {
	EventID string `json:"event_id" example:"evt_1a2b3c4d5e6f"`
	Status  string `json:"status" example:"accepted"`
}

// AnalyticsResponse wraps a user's analytics snapshot
type AnalyticsResponse struct {
	Analytics *domain.AnalyticsSnapshot `json:"analytics"`
}

// InsightsResponse wraps a user's insight list
type InsightsResponse struct {
	Insights []domain.Insight `json:"insights"`
}

// SnapshotListResponse wraps a list of analytics snapshots
type SnapshotListResponse struct {
	Users []domain.AnalyticsSnapshot `json:"users"`
	Count int                        `json:"count"`
}

// ForecastsResponse wraps a list of network forecasts
type ForecastsResponse struct {
	Forecasts []domain.NetworkForecast `json:"forecasts"`
	Count     int                      `json:"count"`
}

// SignificanceResponse wraps a significance test result
type SignificanceResponse struct {
	Result domain.SignificanceResult `json:"result"`
}
