// Package app собирает product-сервис из компонентов
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	producthttp "github.com/shestoi/shopmq/internal/product/api/http"
	"github.com/shestoi/shopmq/internal/product/config"
	productkafka "github.com/shestoi/shopmq/internal/product/event/kafka"
	"github.com/shestoi/shopmq/internal/product/orderstate"
	mongorepo "github.com/shestoi/shopmq/internal/product/repository/mongo"
	"github.com/shestoi/shopmq/internal/product/service"
	"github.com/shestoi/shopmq/platform/broker"
	"github.com/shestoi/shopmq/platform/logging"
	"github.com/shestoi/shopmq/platform/observability"
	"github.com/shestoi/shopmq/platform/shutdown"
)

// Run запускает product-сервис и блокируется до сигнала остановки
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "product-service",
		Env:         cfg.AppEnv,
		Level:       cfg.LogLevel,
		AddCaller:   true,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logging.Sync(logger)

	ctx := context.Background()

	otelShutdown, err := observability.Init(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	sd := shutdown.New(cfg.ShutdownTimeout, logger)
	sd.Add("observability", otelShutdown)

	// MongoDB: каталог товаров
	mongoCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	sd.Add("mongo", shutdown.DisconnectMongo(mongoClient))

	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to mongo", zap.String("database", cfg.MongoDatabase))

	products := mongorepo.NewRepository(mongoClient.Database(cfg.MongoDatabase))

	// Хранилище статусов заказов: Redis если настроен, иначе in-memory
	var states orderstate.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		sd.Add("redis", shutdown.CloseWithError(redisClient))
		states = orderstate.NewRedisStore(redisClient, cfg.OrderStateTTL)
		logger.Info("using redis order state store", zap.String("addr", cfg.RedisAddr))
	} else {
		states = orderstate.NewMemoryStore(cfg.OrderStateTTL)
		logger.Warn("REDIS_ADDR is not set, order states will not survive restarts")
	}

	// Kafka: publisher заявок подключается в фоне, чтобы не блокировать старт —
	// до готовности заказы отклоняются с 503
	publisher := broker.NewPublisher(logger, cfg.Kafka.Brokers, contracts.TopicOrders)
	sd.Add("order request publisher", shutdown.CloseWithError(publisher))
	go func() {
		if err := publisher.Connect(ctx, cfg.Kafka.ConnectTimeout, cfg.Kafka.ConnectBackoff); err != nil {
			logger.Error("broker connection failed, orders will be rejected", zap.Error(err))
		}
	}()

	dlq := broker.NewDLQPublisher(logger, cfg.Kafka.Brokers, contracts.TopicProductsDLQ)
	sd.Add("reply DLQ publisher", shutdown.CloseWithError(dlq))

	replyHandler := productkafka.NewReplyHandler(logger, states)
	replyConsumer := broker.NewConsumer(
		logger,
		cfg.Kafka.Brokers,
		"product-service",
		contracts.TopicProducts,
		replyHandler.Handle,
		dlq,
		cfg.Kafka.MaxAttempts,
		cfg.Kafka.RetryBackoff,
	)
	sd.Add("reply consumer", shutdown.CloseWithError(replyConsumer))

	svc := service.NewService(
		logger,
		products,
		states,
		productkafka.NewRequestPublisher(publisher),
		replyConsumer,
		cfg.PollInterval,
		cfg.PollAttempts,
	)

	// Сервис готов, когда publisher подключён к брокеру:
	// Mongo и Redis проверены на старте, без них процесс не поднимается
	handler := producthttp.NewHandler(logger, svc)
	router := producthttp.NewRouter(logger, handler, cfg.JWTSecret, publisher.Ready)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
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
