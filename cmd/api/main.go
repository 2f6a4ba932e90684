package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/referral-analytics-service/docs"
	"github.com/BarkinBalci/referral-analytics-service/internal/config"
	"github.com/BarkinBalci/referral-analytics-service/internal/handler"
	"github.com/BarkinBalci/referral-analytics-service/internal/logger"
	"github.com/BarkinBalci/referral-analytics-service/internal/queue/sqs"
	"github.com/BarkinBalci/referral-analytics-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/referral-analytics-service/internal/repository/postgres"
	"github.com/BarkinBalci/referral-analytics-service/internal/service"
)

// @title Referral Analytics Service API
// @version 1.0
// @description API for referral-network analytics, churn prediction and forecasting
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client (raw event ledger)
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	eventRepo := clickhouse.NewRepository(clickhouseClient, log)

	// Initialize Postgres client (derived analytics store)
	pgClient, err := postgres.NewClient(ctx, &cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer func(pgClient *postgres.Client) {
		if err := pgClient.Close(); err != nil {
			log.Error("Failed to close Postgres client", zap.Error(err))
		}
	}(pgClient)

	analyticsRepo := postgres.NewRepository(pgClient, log)

	if err := analyticsRepo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize analytics schema", zap.Error(err))
	}

	// Initialize analytics service
	freshness := time.Duration(cfg.Analytics.FreshnessHours) * time.Hour
	analyticsService := service.NewAnalyticsService(eventRepo, analyticsRepo, sqsClient, freshness, cfg.Analytics.ForecastHistoryDays, log)

	// Initialize handler
	h := handler.NewHandler(analyticsService, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
