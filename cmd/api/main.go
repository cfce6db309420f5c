package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"logistock/internal/config"
	"logistock/internal/database"
	"logistock/internal/events"
	"logistock/internal/logger"
	"logistock/internal/observability"
	"logistock/internal/repository"
	"logistock/internal/server"
	"logistock/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, shutdownTracing observability.ShutdownFunc, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func newPublisher(cfg config.AMQPConfig, log *zap.Logger) events.Publisher {
	if cfg.URL == "" {
		log.Info("AMQP_URL not set, stock events are not published")
		return events.NopPublisher{}
	}

	publisher, err := events.NewRabbitMQPublisher(cfg.URL, cfg.Queue, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	return publisher
}

func newRedisClient(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// the rate limiter fails open, so a missing Redis only disables limiting
		log.Warn("Redis unavailable, rate limiting will let requests through", zap.Error(err))
	}
	return client
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting logistock API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Database health check", zap.Any("health", db.Health(ctx)))

	if err := database.RunMigrations(db.DB(), log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing, log)
	if err != nil {
		log.Fatal("Failed to set up tracing", zap.Error(err))
	}

	publisher := newPublisher(cfg.AMQP, log)

	productRepo := repository.NewProductRepository(db.Pool())
	supplierRepo := repository.NewSupplierRepository(db.Pool())

	suppliers := service.NewSupplierResolver(supplierRepo, log)
	products := service.NewProductService(productRepo, suppliers, publisher, log)

	srv := server.NewServer(cfg, log, server.Dependencies{
		Database:  db,
		Products:  products,
		Publisher: publisher,
		Redis:     newRedisClient(ctx, cfg, log),
	})

	done := make(chan bool, 1)
	go gracefulShutdown(srv, shutdownTracing, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
