package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/BarkinBalci/referral-analytics-service/internal/domain"
	"github.com/BarkinBalci/referral-analytics-service/internal/repository"
)

// Repository implements AnalyticsRepository on PostgreSQL. Snapshots and
// forecasts are upserted by their natural keys so recomputation always
// overwrites in place; the snapshot upsert runs in a transaction so a
// concurrent reader sees either the old row or the new one, never a mix.
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new PostgreSQL analytics repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema creates the analytics tables if they don't exist
func (r *Repository) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_analytics_cache (
			user_id TEXT PRIMARY KEY,
			total_earnings DOUBLE PRECISION NOT NULL,
			avg_daily_earnings DOUBLE PRECISION NOT NULL,
			avg_weekly_earnings DOUBLE PRECISION NOT NULL,
			avg_monthly_earnings DOUBLE PRECISION NOT NULL,
			earnings_growth_rate DOUBLE PRECISION NOT NULL,
			total_recruits INTEGER NOT NULL,
			avg_daily_recruits DOUBLE PRECISION NOT NULL,
			avg_weekly_recruits DOUBLE PRECISION NOT NULL,
			network_growth_rate DOUBLE PRECISION NOT NULL,
			days_active INTEGER NOT NULL,
			days_inactive INTEGER NOT NULL,
			last_activity_at TIMESTAMPTZ NOT NULL,
			activity_score DOUBLE PRECISION NOT NULL,
			predicted_30d_earnings DOUBLE PRECISION NOT NULL,
			predicted_90d_earnings DOUBLE PRECISION NOT NULL,
			predicted_30d_recruits INTEGER NOT NULL,
			churn_risk_score DOUBLE PRECISION NOT NULL,
			churn_risk_level TEXT NOT NULL,
			best_recruitment_day TEXT,
			best_recruitment_hour INTEGER,
			computed_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS network_forecasts (
			forecast_type TEXT NOT NULL,
			forecast_date DATE NOT NULL,
			predicted_new_users INTEGER NOT NULL,
			predicted_total_users BIGINT NOT NULL,
			predicted_total_earnings DOUBLE PRECISION NOT NULL,
			predicted_active_users BIGINT NOT NULL,
			confidence_level DOUBLE PRECISION NOT NULL,
			lower_bound DOUBLE PRECISION NOT NULL,
			upper_bound DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (forecast_type, forecast_date)
		)`,
	}

	for _, query := range queries {
		if _, err := r.client.Pool().Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create analytics table: %w", err)
		}
	}

	r.log.Info("PostgreSQL schema initialized successfully")
	return nil
}

const snapshotColumns = `
	user_id, total_earnings, avg_daily_earnings, avg_weekly_earnings,
	avg_monthly_earnings, earnings_growth_rate, total_recruits,
	avg_daily_recruits, avg_weekly_recruits, network_growth_rate,
	days_active, days_inactive, last_activity_at, activity_score,
	predicted_30d_earnings, predicted_90d_earnings, predicted_30d_recruits,
	churn_risk_score, churn_risk_level, best_recruitment_day,
	best_recruitment_hour, computed_at, updated_at`

// GetSnapshot returns the cached analytics snapshot for a user
func (r *Repository) GetSnapshot(ctx context.Context, userID string) (*domain.AnalyticsSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_analytics_cache WHERE user_id = $1`, snapshotColumns)

	row := r.client.Pool().QueryRow(ctx, query, userID)
	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	return snapshot, nil
}

// UpsertSnapshot writes a freshly computed snapshot. The conflict branch
// overwrites every derived column and moves updated_at, but leaves
// computed_at at its original value.
func (r *Repository) UpsertSnapshot(ctx context.Context, s *domain.AnalyticsSnapshot) (*domain.AnalyticsSnapshot, error) {
	query := `
		INSERT INTO user_analytics_cache (
			user_id, total_earnings, avg_daily_earnings, avg_weekly_earnings,
			avg_monthly_earnings, earnings_growth_rate, total_recruits,
			avg_daily_recruits, avg_weekly_recruits, network_growth_rate,
			days_active, days_inactive, last_activity_at, activity_score,
			predicted_30d_earnings, predicted_90d_earnings, predicted_30d_recruits,
			churn_risk_score, churn_risk_level, best_recruitment_day,
			best_recruitment_hour, computed_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		)
		ON CONFLICT (user_id) DO UPDATE SET
			total_earnings = EXCLUDED.total_earnings,
			avg_daily_earnings = EXCLUDED.avg_daily_earnings,
			avg_weekly_earnings = EXCLUDED.avg_weekly_earnings,
			avg_monthly_earnings = EXCLUDED.avg_monthly_earnings,
			earnings_growth_rate = EXCLUDED.earnings_growth_rate,
			total_recruits = EXCLUDED.total_recruits,
			avg_daily_recruits = EXCLUDED.avg_daily_recruits,
			avg_weekly_recruits = EXCLUDED.avg_weekly_recruits,
			network_growth_rate = EXCLUDED.network_growth_rate,
			days_active = EXCLUDED.days_active,
			days_inactive = EXCLUDED.days_inactive,
			last_activity_at = EXCLUDED.last_activity_at,
			activity_score = EXCLUDED.activity_score,
			predicted_30d_earnings = EXCLUDED.predicted_30d_earnings,
			predicted_90d_earnings = EXCLUDED.predicted_90d_earnings,
			predicted_30d_recruits = EXCLUDED.predicted_30d_recruits,
			churn_risk_score = EXCLUDED.churn_risk_score,
			churn_risk_level = EXCLUDED.churn_risk_level,
			best_recruitment_day = EXCLUDED.best_recruitment_day,
			best_recruitment_hour = EXCLUDED.best_recruitment_hour,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + snapshotColumns

	tx, err := r.client.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.log.Error("Failed to roll back snapshot transaction", zap.Error(err))
		}
	}()

	row := tx.QueryRow(ctx, query,
		s.UserID,
		s.TotalEarnings,
		s.AvgDailyEarnings,
		s.AvgWeeklyEarnings,
		s.AvgMonthlyEarnings,
		s.EarningsGrowthRate,
		s.TotalRecruits,
		s.AvgDailyRecruits,
		s.AvgWeeklyRecruits,
		s.NetworkGrowthRate,
		s.DaysActive,
		s.DaysInactive,
		s.LastActivityAt,
		s.ActivityScore,
		s.Predicted30dEarnings,
		s.Predicted90dEarnings,
		s.Predicted30dRecruits,
		s.ChurnRiskScore,
		string(s.ChurnRiskLevel),
		s.BestRecruitmentDay,
		s.BestRecruitmentHour,
	)

	stored, err := scanSnapshot(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return stored, nil
}

// ListChurnRisk returns cached snapshots filtered by risk level, highest
// score first. Level "all" covers medium and above.
func (r *Repository) ListChurnRisk(ctx context.Context, level domain.ChurnRiskLevel, limit int) ([]domain.AnalyticsSnapshot, error) {
	var query string
	var args []interface{}

	if level == "all" {
		query = fmt.Sprintf(`
			SELECT %s FROM user_analytics_cache
			WHERE churn_risk_level IN ('medium', 'high', 'critical')
			ORDER BY churn_risk_score DESC
			LIMIT $1`, snapshotColumns)
		args = []interface{}{limit}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM user_analytics_cache
			WHERE churn_risk_level = $1
			ORDER BY churn_risk_score DESC
			LIMIT $2`, snapshotColumns)
		args = []interface{}{string(level), limit}
	}

	return r.querySnapshots(ctx, query, args...)
}

// Sortable columns for top-performer queries. Identifiers cannot be
// bound as parameters, so the metric goes through this whitelist.
var performerOrderColumns = map[string]string{
	"earnings": "avg_monthly_earnings",
	"growth":   "earnings_growth_rate",
	"recruits": "avg_weekly_recruits",
}

// ListTopPerformers returns cached snapshots ordered by the given metric
func (r *Repository) ListTopPerformers(ctx context.Context, metric string, limit int) ([]domain.AnalyticsSnapshot, error) {
	column, ok := performerOrderColumns[metric]
	if !ok {
		column = performerOrderColumns["earnings"]
	}

	query := fmt.Sprintf(`
		SELECT %s FROM user_analytics_cache
		ORDER BY %s DESC
		LIMIT $1`, snapshotColumns, column)

	return r.querySnapshots(ctx, query, limit)
}

// UpsertForecasts writes forecast rows keyed by (type, date) inside a
// single transaction
func (r *Repository) UpsertForecasts(ctx context.Context, forecasts []domain.NetworkForecast) error {
	if len(forecasts) == 0 {
		return nil
	}

	tx, err := r.client.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.log.Error("Failed to roll back forecast transaction", zap.Error(err))
		}
	}()

	query := `
		INSERT INTO network_forecasts (
			forecast_type, forecast_date, predicted_new_users,
			predicted_total_users, predicted_total_earnings,
			predicted_active_users, confidence_level, lower_bound, upper_bound
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (forecast_type, forecast_date) DO UPDATE SET
			predicted_new_users = EXCLUDED.predicted_new_users,
			predicted_total_users = EXCLUDED.predicted_total_users,
			predicted_total_earnings = EXCLUDED.predicted_total_earnings,
			predicted_active_users = EXCLUDED.predicted_active_users,
			confidence_level = EXCLUDED.confidence_level,
			lower_bound = EXCLUDED.lower_bound,
			upper_bound = EXCLUDED.upper_bound,
			created_at = CURRENT_TIMESTAMP
	`

	for _, f := range forecasts {
		_, err := tx.Exec(ctx, query,
			f.ForecastType,
			f.ForecastDate,
			f.PredictedNewUsers,
			f.PredictedTotalUsers,
			f.PredictedTotalEarnings,
			f.PredictedActiveUsers,
			f.ConfidenceLevel,
			f.LowerBound,
			f.UpperBound,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert forecast for %s: %w", f.ForecastDate.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit forecasts: %w", err)
	}

	return nil
}

// ListForecasts returns forecasts of the given type from today onward
func (r *Repository) ListForecasts(ctx context.Context, forecastType string, limit int) ([]domain.NetworkForecast, error) {
	query := `
		SELECT forecast_type, forecast_date, predicted_new_users,
			predicted_total_users, predicted_total_earnings,
			predicted_active_users, confidence_level, lower_bound, upper_bound
		FROM network_forecasts
		WHERE forecast_type = $1 AND forecast_date >= CURRENT_DATE
		ORDER BY forecast_date ASC
		LIMIT $2
	`

	rows, err := r.client.Pool().Query(ctx, query, forecastType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []domain.NetworkForecast
	for rows.Next() {
		var f domain.NetworkForecast
		if err := rows.Scan(
			&f.ForecastType,
			&f.ForecastDate,
			&f.PredictedNewUsers,
			&f.PredictedTotalUsers,
			&f.PredictedTotalEarnings,
			&f.PredictedActiveUsers,
			&f.ConfidenceLevel,
			&f.LowerBound,
			&f.UpperBound,
		); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		forecasts = append(forecasts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecast rows: %w", err)
	}

	return forecasts, nil
}

// Ping checks if the PostgreSQL connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Pool().Ping(ctx)
}

// Close closes the PostgreSQL connection pool
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) querySnapshots(ctx context.Context, query string, args ...interface{}) ([]domain.AnalyticsSnapshot, error) {
	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.AnalyticsSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

func scanSnapshot(row pgx.Row) (*domain.AnalyticsSnapshot, error) {
	var s domain.AnalyticsSnapshot
	var level string

	err := row.Scan(
		&s.UserID,
		&s.TotalEarnings,
		&s.AvgDailyEarnings,
		&s.AvgWeeklyEarnings,
		&s.AvgMonthlyEarnings,
		&s.EarningsGrowthRate,
		&s.TotalRecruits,
		&s.AvgDailyRecruits,
		&s.AvgWeeklyRecruits,
		&s.NetworkGrowthRate,
		&s.DaysActive,
		&s.DaysInactive,
		&s.LastActivityAt,
		&s.ActivityScore,
		&s.Predicted30dEarnings,
		&s.Predicted90dEarnings,
		&s.Predicted30dRecruits,
		&s.ChurnRiskScore,
		&level,
		&s.BestRecruitmentDay,
		&s.BestRecruitmentHour,
		&s.ComputedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ChurnRiskLevel = domain.ChurnRiskLevel(level)
	return &s, nil
}

var _ repository.AnalyticsRepository = (*Repository)(nil)
