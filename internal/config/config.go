package config

import (
	"fmt"

	"github.com/BarkinBalci/envconfig"
)

// Service holds general service settings.
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

// ClickHouse holds connection settings for the raw event ledger.
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// Postgres holds connection settings for the derived analytics store.
type Postgres struct {
	URL      string `envconfig:"POSTGRES_URL" required:"true"`
	MaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

// SQS holds the raw-event ingestion queue settings.
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

// Analytics tunes the engine's cache and forecast behavior. The
// freshness default of 24h is the staleness contract; shrink it only in
// tests.
type Analytics struct {
	FreshnessHours      int `envconfig:"ANALYTICS_FRESHNESS_HOURS" default:"24"`
	ForecastHistoryDays int `envconfig:"ANALYTICS_FORECAST_HISTORY_DAYS" default:"90"`
}

// Consumer tunes the ingestion pipeline.
type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Service    Service
	ClickHouse ClickHouse
	Postgres   Postgres
	SQS        SQS
	Analytics  Analytics
	Consumer   Consumer
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
