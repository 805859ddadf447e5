package observability

import "github.com/caarlos0/env/v10"

// Config конфигурация OpenTelemetry (traces + propagator)
type Config struct {
	// Enabled включить экспорт в OTLP collector
	Enabled bool `env:"OTEL_ENABLED" envDefault:"false"`
	// OTLPEndpoint адрес OTLP gRPC, например "127.0.0.1:4317" или "otel-collector:4317"
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"127.0.0.1:4317"`
	// SamplingRatio доля трасс для семплирования (0..1), 1.0 = все
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1.0"`
	// ServiceName имя сервиса (product, order)
	ServiceName string `env:"OTEL_SERVICE_NAME"`
	// DeploymentEnvironment окружение (local, docker)
	DeploymentEnvironment string `env:"APP_ENV" envDefault:"local"`
	// ServiceVersion опционально, например из build
	ServiceVersion string `env:"OTEL_SERVICE_VERSION"`
}

// DefaultConfig возвращает конфигурацию по умолчанию для локальной разработки
func DefaultConfig(serviceName string) Config {
	return Config{
		Enabled:               false,
		OTLPEndpoint:          "127.0.0.1:4317",
		SamplingRatio:         1.0,
		ServiceName:           serviceName,
		DeploymentEnvironment: "local",
	}
}

// LoadEnv загружает конфигурацию из переменных окружения.
// Пустой OTEL_SERVICE_NAME не затирает имя, заданное сервисом.
func LoadEnv(cfg *Config) error {
	name := cfg.ServiceName
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = name
	}
	return nil
}
