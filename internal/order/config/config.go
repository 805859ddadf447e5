package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/shestoi/shopmq/platform/broker"
	"github.com/shestoi/shopmq/platform/observability"
)

// Config содержит конфигурацию order-сервиса
type Config struct {
	// AppEnv определяет окружение (local, docker)
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// LogLevel — уровень логирования (debug/info/warn/error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTPAddr — адрес HTTP-сервера (health endpoint)
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3002"`

	// PostgresDSN — строка подключения к PostgreSQL.
	// Пустое значение переключает сервис на in-memory хранилище заказов.
	PostgresDSN string `env:"POSTGRES_DSN"`

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
		Observability: observability.DefaultConfig("order-service"),
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

	return cfg, nil
}
