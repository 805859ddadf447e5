package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/shestoi/shopmq/platform/broker"
	"github.com/shestoi/shopmq/platform/observability"
)

// Config содержит конфигурацию product-сервиса
type Config struct {
	// AppEnv определяет окружение (local, docker)
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// LogLevel — уровень логирования (debug/info/warn/error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTPAddr — адрес HTTP-сервера
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3001"`

	// MongoURI — строка подключения к MongoDB (каталог товаров)
	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	// MongoDatabase — имя базы данных
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"products"`

	// RedisAddr — адрес Redis для хранилища статусов заказов.
	// Пустое значение переключает сервис на in-memory хранилище:
	// статусы тогда не переживают рестарт процесса.
	RedisAddr string `env:"REDIS_ADDR"`

	// JWTSecret — секрет для проверки подписи JWT-токенов
	JWTSecret string `env:"JWT_SECRET,required"`

	// OrderStateTTL — сколько хранить статус заказа после создания
	OrderStateTTL time.Duration `env:"ORDER_STATE_TTL" envDefault:"24h"`

	// PollInterval — пауза между опросами статуса в рамках синхронного запроса
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	// PollAttempts — число опросов статуса до ответа 202
	PollAttempts int `env:"POLL_ATTEMPTS" envDefault:"30"`

	// ShutdownTimeout — таймаут graceful shutdown
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Kafka — конфигурация подключения к брокеру
	Kafka broker.Config

	// Observability — конфигурация трассировки
	Observability observability.Config
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Kafka:         broker.DefaultConfig(),
		Observability: observability.DefaultConfig("product-service"),
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := broker.LoadEnv(&cfg.Kafka); err != nil {
		return nil, fmt.Errorf("parse kafka env: %w", err)
	}

	if err := observability.LoadEnv(&cfg.Observability); err != nil {
		return nil, fmt.Errorf("parse observability env: %w", err)
	}

	if cfg.PollAttempts <= 0 {
		return nil, fmt.Errorf("POLL_ATTEMPTS must be positive, got %d", cfg.PollAttempts)
	}

	return cfg, nil
}
