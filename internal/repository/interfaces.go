package repository

import (
	"context"
	"time"

	"github.com/BarkinBalci/referral-analytics-service/internal/analytics"
	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
)

// EventRepository defines read and write access to the raw event ledger.
// Reads return chronological sequences; the engine never mutates raw
// history.
type EventRepository interface {
	// InsertBatch inserts a batch of raw events into the ledger
	InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error)

	// AccountCreatedAt returns the user's signup time, or
	// domain.ErrUserNotFound when the ledger has no signup event for them
	AccountCreatedAt(ctx context.Context, userID string) (time.Time, error)

	// UserTransactions returns the user's earning transactions in
	// ascending time order
	UserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)

	// UserRecruits returns signups referred by the user in ascending
	// time order
	UserRecruits(ctx context.Context, userID string) ([]domain.Recruit, error)

	// PlatformSeries returns platform-wide daily new-user counts and
	// daily earnings totals over the trailing historyDays, plus current
	// total and active user counts
	PlatformSeries(ctx context.Context, historyDays int) (*analytics.PlatformSeries, error)

	// InitSchema initializes the ledger schema
	InitSchema(ctx context.Context) error

	// Ping checks if the ledger connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

// AnalyticsRepository defines storage for derived analytics: the
// per-user snapshot cache and the network forecast rows. Both are
// addressed by natural unique keys and upserts overwrite in place.
type AnalyticsRepository interface {
	// GetSnapshot returns the cached snapshot for a user, or
	// domain.ErrSnapshotNotFound when none exists yet
	GetSnapshot(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error)

	// UpsertSnapshot writes a freshly computed snapshot, keyed by
	// user_id. On conflict every derived column is overwritten and
	// updated_at moves, but computed_at keeps its original value. The
	// returned snapshot reflects the stored row.
	UpsertSnapshot(ctx context.Context, snapshot *domain.AnalyticsSnapshot) (*domain.AnalyticsSnapshot, error)

	// ListChurnRisk returns snapshots at the given risk level ordered by
	// descending score; level "all" covers medium and above
	ListChurnRisk(ctx context.Context, level domain.ChurnRiskLevel, limit int) ([]domain.AnalyticsSnapshot, error)

	// ListTopPerformers returns snapshots ordered by the given metric
	ListTopPerformers(ctx context.Context, metric string, limit int) ([]domain.AnalyticsSnapshot, error)

	// UpsertForecasts writes forecast rows keyed by (type, date)
	UpsertForecasts(ctx context.Context, forecasts []domain.NetworkForecast) error

	// ListForecasts returns forecasts of the given type from today
	// onward in ascending date order
	ListForecasts(ctx context.Context, forecastType string, limit int) ([]domain.NetworkForecast, error)

	// InitSchema initializes the analytics tables
	InitSchema(ctx context.Context) error

	// Ping checks if the store connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}
