package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/referral-analytics-service/internal/analytics"
	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
	"github.com/BarkinBalci/referral-analytics-service/internal/dto"
	"github.com/BarkinBalci/referral-analytics-service/internal/queue"
	"github.com/BarkinBalci/referral-analytics-service/internal/repository"
)

const (
	defaultListLimit    = 50
	defaultForecastType = "daily"
)

var validForecastTypes = map[string]bool{"daily": true, "weekly": true, "monthly": true}

var validRiskLevels = map[string]bool{
	"all":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
}

// AnalyticsService orchestrates the analytics engine over the raw event
// ledger and the derived analytics store. It owns the staleness
// discipline: cached snapshots older than the freshness window are
// recomputed synchronously on read.
type AnalyticsService struct {
	events              repository.EventRepository
	store               repository.AnalyticsRepository
	publisher           queue.QueuePublisher
	freshness           time.Duration
	forecastHistoryDays int
	now                 func() time.Time
	log                 *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(events repository.EventRepository, store repository.AnalyticsRepository, publisher queue.QueuePublisher, freshness time.Duration, forecastHistoryDays int, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		events:              events,
		store:               store,
		publisher:           publisher,
		freshness:           freshness,
		forecastHistoryDays: forecastHistoryDays,
		now:                 time.Now,
		log:                 log,
	}
}

// ComputeUserAnalytics recomputes the full analytics bundle for a user
// from raw history and upserts it into the cache. The whole bundle is
// derived from a single read of the ledger, so churn tier and
// projections always agree with the metrics they were computed from.
func (s *AnalyticsService) ComputeUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error) {
	createdAt, err := s.events.AccountCreatedAt(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve account creation: %w", err)
	}

	transactions, err := s.events.UserTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	recruits, err := s.events.UserRecruits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recruits: %w", err)
	}

	now := s.now()
	bundle := analytics.Aggregate(transactions, recruits, createdAt, now)
	assessment := analytics.AssessChurnRisk(bundle)
	projection := analytics.Project(bundle)
	bestDay, bestHour := analytics.BestRecruitmentWindow(recruits)

	snapshot := &domain.AnalyticsSnapshot{
		UserID:              userID,
		MetricBundle:        bundle,
		ChurnAssessment:     assessment,
		Projection:          projection,
		BestRecruitmentDay:  bestDay,
		BestRecruitmentHour: bestHour,
	}

	stored, err := s.store.UpsertSnapshot(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	s.log.Info("User analytics computed",
		zap.String("user_id", userID),
		zap.Float64("churn_risk_score", assessment.ChurnRiskScore),
		zap.String("churn_risk_level", string(assessment.ChurnRiskLevel)))

	return stored, nil
}

// GetUserAnalytics returns the cached snapshot for a user, recomputing
// it first when absent or stale. An entry transitions absent→fresh on
// first request and stale→fresh when older than the freshness window;
// a fresh entry is returned unchanged.
func (s *AnalyticsService) GetUserAnalytics(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error) {
	snapshot, err := s.store.GetSnapshot(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return s.ComputeUserAnalytics(ctx, userID)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if s.now().Sub(snapshot.UpdatedAt) > s.freshness {
		s.log.Info("Cached analytics stale, recomputing",
			zap.String("user_id", userID),
			zap.Time("updated_at", snapshot.UpdatedAt))
		return s.ComputeUserAnalytics(ctx, userID)
	}

	return snapshot, nil
}

// GetUserInsights derives the prioritized recommendation list from the
// user's (fresh) cached snapshot
func (s *AnalyticsService) GetUserInsights(ctx context.Context, userID string) ([]domain.Insight, error) {
	snapshot, err := s.GetUserAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}

	return analytics.BuildInsights(snapshot), nil
}

// ListChurnRiskUsers returns cached snapshots at the given risk level,
// highest score first
func (s *AnalyticsService) ListChurnRiskUsers(ctx context.Context, level string, limit int) ([]domain.AnalyticsSnapshot, error) {
	if level == "" {
		level = "all"
	}
	if !validRiskLevels[level] {
		return nil, fmt.Errorf("%w: risk level %q", domain.ErrInvalidInput, level)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	snapshots, err := s.store.ListChurnRisk(ctx, domain.ChurnRiskLevel(level), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list churn risk users: %w", err)
	}

	return snapshots, nil
}

// ListTopPerformers returns cached snapshots ordered by the given
// metric; unknown metrics fall back to earnings
func (s *AnalyticsService) ListTopPerformers(ctx context.Context, metric string, limit int) ([]domain.AnalyticsSnapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	snapshots, err := s.store.ListTopPerformers(ctx, metric, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top performers: %w", err)
	}

	return snapshots, nil
}

// ComputeNetworkForecast builds one forecast row per day ahead from the
// platform-wide historical series and upserts them by (type, date), so
// re-running a forecast overwrites the previous run for the same days.
func (s *AnalyticsService) ComputeNetworkForecast(ctx context.Context, forecastType string, daysAhead int) ([]domain.NetworkForecast, error) {
	if forecastType == "" {
		forecastType = defaultForecastType
	}
	if !validForecastTypes[forecastType] {
		return nil, fmt.Errorf("%w: forecast type %q", domain.ErrInvalidInput, forecastType)
	}
	if daysAhead <= 0 {
		return nil, fmt.Errorf("%w: days ahead must be positive, got %d", domain.ErrInvalidInput, daysAhead)
	}

	series, err := s.events.PlatformSeries(ctx, s.forecastHistoryDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform series: %w", err)
	}

	forecasts := analytics.BuildNetworkForecast(*series, forecastType, daysAhead, s.now())

	if err := s.store.UpsertForecasts(ctx, forecasts); err != nil {
		return nil, fmt.Errorf("failed to persist forecasts: %w", err)
	}

	s.log.Info("Network forecast computed",
		zap.String("forecast_type", forecastType),
		zap.Int("days_ahead", daysAhead))

	return forecasts, nil
}

// GetNetworkForecast returns stored forecasts of the given type from
// today onward
func (s *AnalyticsService) GetNetworkForecast(ctx context.Context, forecastType string, limit int) ([]domain.NetworkForecast, error) {
	if forecastType == "" {
		forecastType = defaultForecastType
	}
	if !validForecastTypes[forecastType] {
		return nil, fmt.Errorf("%w: forecast type %q", domain.ErrInvalidInput, forecastType)
	}
	if limit <= 0 {
		limit = 30
	}

	forecasts, err := s.store.ListForecasts(ctx, forecastType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}

	return forecasts, nil
}

// TestSignificance compares two experiment variants' conversion rates
func (s *AnalyticsService) TestSignificance(conversionsA, usersA, conversionsB, usersB int64) domain.SignificanceResult {
	return analytics.TestSignificance(conversionsA, usersA, conversionsB, usersB)
}

// computeEventID generates a deterministic event ID based on event content.
// Uses SHA-256 hash of: kind|user_id|referrer_id|timestamp|amount
func computeEventID(event *dto.PublishEventRequest) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%f",
		event.Kind,
		event.UserID,
		event.ReferrerID,
		event.Timestamp,
		event.Amount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// PublishRawEvent validates a raw platform event and publishes it to the
// ingestion queue. The deterministic event ID makes replays deduplicate
// in the ledger.
func (s *AnalyticsService) PublishRawEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	if event.Kind != domain.EventKindSignup && event.Kind != domain.EventKindEarning {
		return "", fmt.Errorf("%w: unknown event kind %q", domain.ErrInvalidInput, event.Kind)
	}

	currentTime := s.now().Unix()
	if event.Timestamp > currentTime+1 {
		s.log.Warn("Timestamp validation failed: future timestamp",
			zap.Int64("event_timestamp", event.Timestamp),
			zap.Int64("current_time", currentTime),
			zap.String("kind", event.Kind))
		return "", fmt.Errorf("%w: timestamp cannot be in the future: %d > %d", domain.ErrInvalidInput, event.Timestamp, currentTime)
	}

	eventID := computeEventID(event)

	if err := s.publisher.PublishEvent(ctx, event, eventID); err != nil {
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	return eventID, nil
}

var _ AnalyticsServicer = (*AnalyticsService)(nil)
