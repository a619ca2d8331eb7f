package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bizfleet/inventory-service/config"
	"github.com/bizfleet/inventory-service/pkg/broker"
	"github.com/bizfleet/inventory-service/pkg/cache"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/bizfleet/inventory-service/pkg/postgres"
	"github.com/bizfleet/inventory-service/pkg/search"

	impH "github.com/bizfleet/inventory-service/internal/importer/handler"
	invH "github.com/bizfleet/inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/bizfleet/inventory-service/internal/inventory/listener"
	invPublisherPkg "github.com/bizfleet/inventory-service/internal/inventory/publisher"
	invRepoPkg "github.com/bizfleet/inventory-service/internal/inventory/repository"
	invUCPkg "github.com/bizfleet/inventory-service/internal/inventory/usecase"

	prodH "github.com/bizfleet/inventory-service/internal/product/handler"
	prodRepoPkg "github.com/bizfleet/inventory-service/internal/product/repository"
	prodUCPkg "github.com/bizfleet/inventory-service/internal/product/usecase"

	whH "github.com/bizfleet/inventory-service/internal/warehouse/handler"
	whRepoPkg "github.com/bizfleet/inventory-service/internal/warehouse/repository"
	whUCPkg "github.com/bizfleet/inventory-service/internal/warehouse/usecase"

	"github.com/bizfleet/inventory-service/internal/importer"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))

	alertsPublisher := broker.NewPublisher(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.AlertsTopic,
	})
	defer alertsPublisher.Close()

	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		// Search stays degraded-but-running when ES is down.
		appLogger.Warn("Could not connect to Elasticsearch", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	whRepo := whRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)

	whUC := whUCPkg.NewWarehouseUseCase(whRepo, appLogger)
	events := invPublisherPkg.NewKafkaPublisher(alertsPublisher)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, whUC, redisClient, events, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, invUC, redisClient, esClient, appLogger)
	stockImporter := importer.NewStockImporter(prodUC, invUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderListener := invListenerPkg.NewOrderListener(kafkaConsumer, invUC, appLogger)
	go orderListener.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "inventory-service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	invH.NewInventoryHandler(invUC, appLogger).Register(api)
	whH.NewWarehouseHandler(whUC, appLogger).Register(api)
	prodH.NewProductHandler(prodUC, appLogger).Register(api)
	impH.NewImportHandler(stockImporter, appLogger).Register(api)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	go func() {
		if err := app.Listen(port); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()
	appLogger.Info("Starting HTTP server", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
