package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deliwaste/server/internal/api"
	"deliwaste/server/internal/config"
	"deliwaste/server/internal/database"
	"deliwaste/server/internal/events"
	"deliwaste/server/internal/logging"
	"deliwaste/server/internal/services"
	"deliwaste/server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; production sets real environment variables
	envErr := godotenv.Load()

	cfg := config.Load()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr == nil {
		logger.Info("environment loaded from .env")
	}
	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := database.OpenStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store failed", zap.Error(err))
		}
	}()

	var cache services.ResultCache = services.NopCache{}
	if cfg.RedisURL != "" || len(cfg.RedisSentinelAddrs) > 0 {
		redisClient, err := database.ConnectRedis(cfg.RedisURL, cfg.RedisSentinelAddrs, cfg.RedisMasterName, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without result cache", zap.Error(err))
		} else {
			defer func() { _ = database.CloseRedis(redisClient) }()
			cache = services.NewRedisResultCache(utils.NewRedisClient(redisClient), cfg.CacheTTL, logger)
		}
	}

	hub := api.NewHub(logger)
	go hub.Run(ctx)
	onWaste := api.WasteEventHandler(hub, cache, logger)

	var publisher services.EventPublisher = events.NewDirectPublisher(onWaste)
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		dialer := events.NewDialer(events.Credentials{
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
			CACert:   cfg.KafkaCACert,
		}, logger)

		kafkaPublisher := events.NewKafkaPublisher(brokers, cfg.KafkaTopic, dialer, logger)
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = kafkaPublisher

		consumer := events.NewConsumer(brokers, cfg.KafkaTopic, consumerGroup(), dialer, onWaste, logger)
		consumer.Start(ctx)
		defer func() {
			if err := consumer.Stop(); err != nil {
				logger.Warn("stop kafka consumer failed", zap.Error(err))
			}
		}()
	} else {
		logger.Info("KAFKA_BROKERS not set, delivering waste events in process")
	}

	loc := cfg.Location()
	dashboardService := services.NewDashboardService(st, cache, loc, logger)
	planService := services.NewTomorrowPlanService(st, cache, services.PlanSettingsFromConfig(cfg), loc, logger)
	itemService := services.NewItemService(st, cache, logger)
	wasteService := services.NewWasteService(st, cache, publisher, logger)
	exportService := services.NewExportService(st, logger)

	today := func() string { return services.FormatDate(dashboardService.Today()) }

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Controllers{
		Analytics: api.NewAnalyticsController(dashboardService, planService, logger),
		Items:     api.NewItemController(itemService, logger),
		Waste:     api.NewWasteController(wasteService, exportService, today, logger),
		WS:        api.NewWSController(hub, cfg.CORSOrigins, logger),
	}, cfg.CORSOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("timezone", cfg.BusinessTimezone),
			zap.String("driver", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// consumerGroup is unique per process so every instance sees every event and
// can refresh its own websocket clients.
func consumerGroup() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return fmt.Sprintf("deliwaste-dashboard-%s-%s", host, uuid.New().String()[:8])
}
