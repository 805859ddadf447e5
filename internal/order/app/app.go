// Package app собирает order-сервис из компонентов
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/order/config"
	orderkafka "github.com/shestoi/shopmq/internal/order/event/kafka"
	"github.com/shestoi/shopmq/internal/order/repository"
	memoryrepo "github.com/shestoi/shopmq/internal/order/repository/memory"
	postgresrepo "github.com/shestoi/shopmq/internal/order/repository/postgres"
	"github.com/shestoi/shopmq/internal/order/service"
	"github.com/shestoi/shopmq/platform/broker"
	healthhttp "github.com/shestoi/shopmq/platform/health/http"
	"github.com/shestoi/shopmq/platform/logging"
	"github.com/shestoi/shopmq/platform/observability"
	"github.com/shestoi/shopmq/platform/shutdown"
)

// Run запускает order-сервис и блокируется до сигнала остановки
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "order-service",
		Env:         cfg.AppEnv,
		Level:       cfg.LogLevel,
		AddCaller:   true,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logging.Sync(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, err := observability.Init(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	sd := shutdown.New(cfg.ShutdownTimeout, logger)
	sd.Add("observability", otelShutdown)

	// Хранилище заказов: PostgreSQL если настроен, иначе in-memory
	var orders repository.OrderRepository
	if cfg.PostgresDSN != "" {
		if err := postgresrepo.Migrate(cfg.PostgresDSN); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		sd.Add("postgres", shutdown.ClosePool(pool))

		orders = postgresrepo.NewRepository(pool)
		logger.Info("using postgres order repository")
	} else {
		orders = memoryrepo.NewRepository()
		logger.Warn("POSTGRES_DSN is not set, orders will not survive restarts")
	}

	// Kafka: publisher ответов подключается в фоне — до готовности
	// ответы не публикуются, но заявки уже сохраняются
	publisher := broker.NewPublisher(logger, cfg.Kafka.Brokers, contracts.TopicProducts)
	sd.Add("reply publisher", shutdown.CloseWithError(publisher))
	go func() {
		if err := publisher.Connect(ctx, cfg.Kafka.ConnectTimeout, cfg.Kafka.ConnectBackoff); err != nil {
			logger.Error("broker connection failed, replies will not be published", zap.Error(err))
		}
	}()

	svc := service.NewService(logger, orders, orderkafka.NewReplyPublisher(publisher))

	dlq := broker.NewDLQPublisher(logger, cfg.Kafka.Brokers, contracts.TopicOrdersDLQ)
	sd.Add("request DLQ publisher", shutdown.CloseWithError(dlq))

	requestHandler := orderkafka.NewRequestHandler(logger, svc)
	consumer := broker.NewConsumer(
		logger,
		cfg.Kafka.Brokers,
		"order-service",
		contracts.TopicOrders,
		requestHandler.Handle,
		dlq,
		cfg.Kafka.MaxAttempts,
		cfg.Kafka.RetryBackoff,
	)
	sd.Add("request consumer", func(sctx context.Context) error {
		cancel()
		return consumer.Close()
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("request consumer stopped", zap.Error(err))
		}
	}()

	// Health endpoint: сервис готов, когда publisher подключён к брокеру
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthhttp.Handler(publisher.Ready))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	sd.Add("http server", shutdown.ShutdownHTTPServer(srv))

	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	sd.Wait()
	return nil
}
