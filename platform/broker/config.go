package broker

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Brokers — список брокеров Kafka, через запятую.
	// Значение зависит от среды выполнения:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// ConnectTimeout — сколько всего ждать появления брокера при старте.
	// Брокер в docker-compose может подниматься заметно дольше сервиса.
	ConnectTimeout time.Duration `env:"KAFKA_CONNECT_TIMEOUT" envDefault:"60s"`
	// ConnectBackoff — пауза между попытками подключения
	ConnectBackoff time.Duration `env:"KAFKA_CONNECT_BACKOFF" envDefault:"2s"`
	// MaxAttempts — число попыток обработки сообщения до отправки в DLQ
	MaxAttempts int `env:"KAFKA_MAX_ATTEMPTS" envDefault:"3"`
	// RetryBackoff — базовая пауза между попытками обработки (растёт экспоненциально)
	RetryBackoff time.Duration `env:"KAFKA_RETRY_BACKOFF" envDefault:"1s"`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки
func DefaultConfig() Config {
	return Config{
		Brokers:        []string{"localhost:19092"},
		ConnectTimeout: 60 * time.Second,
		ConnectBackoff: 2 * time.Second,
		MaxAttempts:    3,
		RetryBackoff:   1 * time.Second,
	}
}

// LoadEnv загружает конфигурацию из переменных окружения
func LoadEnv(cfg *Config) error {
	return env.Parse(cfg)
}
