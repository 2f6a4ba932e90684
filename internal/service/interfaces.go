package service

import (
	"context"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
	"github.com/BarkinBalci/referral-analytics-service/internal/dto"
)

// AnalyticsServicer defines the interface for analytics service operations
type AnalyticsServicer interface {
	ComputeUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error)
	GetUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error)
	GetUserInsights(ctx context.Context, userID string) ([]domain.Insight, error)
	ListChurnRiskUsers(ctx context.Context, level string, limit int) ([]domain.AnalyticsSnapshot, error)
	ListTopPerformers(ctx context.Context, metric string, limit int) ([]domain.AnalyticsSnapshot, error)
	ComputeNetworkForecast(ctx context.Context, forecastType string, daysAhead int) ([]domain.NetworkForecast, error)
	GetNetworkForecast(ctx context.Context, forecastType string, limit int) ([]domain.NetworkForecast, error)
	TestSignificance(conversionsA, usersA, conversionsB, usersB int64) domain.SignificanceResult
	PublishRawEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error)
}
