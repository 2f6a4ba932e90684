package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/referral-analytics-service/internal/analytics"
	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
	"github.com/BarkinBalci/referral-analytics-service/internal/repository"
)

// Repository implements EventRepository on top of the ClickHouse raw
// event ledger. Signup events double as both account-creation markers
// (user_id) and recruitment records (referrer_id).
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse ledger repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema initializes the raw_events table with a ReplacingMergeTree
// engine so replayed events deduplicate by event_id
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS raw_events (
		event_id String,
		kind LowCardinality(String),
		user_id String,
		referrer_id String,
		amount Float64,
		timestamp Int64,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id, timestamp)
	PARTITION BY toYYYYMM(toDateTime(timestamp))
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create raw_events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of raw events into the ledger
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO raw_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}

		err := batch.Append(
			event.EventID,
			event.Kind,
			event.UserID,
			event.ReferrerID,
			event.Amount,
			event.Timestamp,
			event.ProcessedAt,
			event.Version,
		)

		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// AccountCreatedAt returns the signup time for a user. A user with no
// signup event in the ledger is unknown to the platform.
func (r *Repository) AccountCreatedAt(ctx context.Context, userID string) (time.Time, error) {
	query := `
		SELECT min(timestamp), count()
		FROM raw_events FINAL
		WHERE kind = ? AND user_id = ?
	`

	var minTS int64
	var count uint64
	row := r.client.Conn().QueryRow(ctx, query, domain.EventKindSignup, userID)
	if err := row.Scan(&minTS, &count); err != nil {
		return time.Time{}, fmt.Errorf("failed to query account creation: %w", err)
	}

	if count == 0 {
		return time.Time{}, domain.ErrUserNotFound
	}

	return time.Unix(minTS, 0).UTC(), nil
}

// UserTransactions returns a user's earning transactions in ascending
// time order
func (r *Repository) UserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT amount, timestamp
		FROM raw_events FINAL
		WHERE kind = ? AND user_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := r.client.Conn().Query(ctx, query, domain.EventKindEarning, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer r.closeRows(rows)

	var transactions []domain.Transaction
	for rows.Next() {
		var amount float64
		var ts int64
		if err := rows.Scan(&amount, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, domain.Transaction{
			Amount:     amount,
			OccurredAt: time.Unix(ts, 0).UTC(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// UserRecruits returns signups referred by the user in ascending time
// order
func (r *Repository) UserRecruits(ctx context.Context, userID string) ([]domain.Recruit, error) {
	query := `
		SELECT timestamp
		FROM raw_events FINAL
		WHERE kind = ? AND referrer_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := r.client.Conn().Query(ctx, query, domain.EventKindSignup, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recruits: %w", err)
	}
	defer r.closeRows(rows)

	var recruits []domain.Recruit
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan recruit row: %w", err)
		}
		recruits = append(recruits, domain.Recruit{
			OccurredAt: time.Unix(ts, 0).UTC(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recruit rows: %w", err)
	}

	return recruits, nil
}

// PlatformSeries returns the platform-wide inputs for the network
// forecaster: per-day signup counts and earnings totals over the
// trailing window, the total user count, and users with earnings in the
// last 7 days.
func (r *Repository) PlatformSeries(ctx context.Context, historyDays int) (*analytics.PlatformSeries, error) {
	series := &analytics.PlatformSeries{}
	cutoff := time.Now().AddDate(0, 0, -historyDays).Unix()

	signupQuery := `
		SELECT toStartOfDay(toDateTime(timestamp)) as day, count() as new_users
		FROM raw_events FINAL
		WHERE kind = ? AND timestamp >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.client.Conn().Query(ctx, signupQuery, domain.EventKindSignup, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query signup series: %w", err)
	}
	for rows.Next() {
		var day time.Time
		var newUsers uint64
		if err := rows.Scan(&day, &newUsers); err != nil {
			r.closeRows(rows)
			return nil, fmt.Errorf("failed to scan signup series row: %w", err)
		}
		series.DailyNewUsers = append(series.DailyNewUsers, int64(newUsers))
	}
	r.closeRows(rows)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signup series rows: %w", err)
	}

	earningsQuery := `
		SELECT toStartOfDay(toDateTime(timestamp)) as day, sum(amount) as total_earnings
		FROM raw_events FINAL
		WHERE kind = ? AND timestamp >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err = r.client.Conn().Query(ctx, earningsQuery, domain.EventKindEarning, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings series: %w", err)
	}
	for rows.Next() {
		var day time.Time
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			r.closeRows(rows)
			return nil, fmt.Errorf("failed to scan earnings series row: %w", err)
		}
		series.DailyEarnings = append(series.DailyEarnings, total)
	}
	r.closeRows(rows)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earnings series rows: %w", err)
	}

	countsQuery := `
		SELECT
			countIf(kind = ?) as total_users,
			uniqIf(user_id, kind = ? AND timestamp >= ?) as active_users
		FROM raw_events FINAL
	`
	activeCutoff := time.Now().AddDate(0, 0, -7).Unix()
	row := r.client.Conn().QueryRow(ctx, countsQuery, domain.EventKindSignup, domain.EventKindEarning, activeCutoff)

	var totalUsers, activeUsers uint64
	if err := row.Scan(&totalUsers, &activeUsers); err != nil {
		return nil, fmt.Errorf("failed to query user counts: %w", err)
	}
	series.TotalUsers = int64(totalUsers)
	series.ActiveUsers = int64(activeUsers)

	return series, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) closeRows(rows driver.Rows) {
	if err := rows.Close(); err != nil {
		r.log.Error("Failed to close rows", zap.Error(err))
	}
}

var _ repository.EventRepository = (*Repository)(nil)
