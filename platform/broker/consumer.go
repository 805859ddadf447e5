package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/platform/observability"
)

// Handler обрабатывает одно доставленное сообщение.
// Возврат nil — сообщение обработано (offset будет закоммичен).
// Ошибка, обёрнутая в ErrMalformedMessage, — poison message: в DLQ без retry.
// Любая другая ошибка считается транзиентной: retry с backoff, затем DLQ.
type Handler func(ctx context.Context, msg kafka.Message) error

// fetcher — минимальный интерфейс kafka.Reader (для подмены в тестах)
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает сообщения из топика и передаёт их handler-у.
// Семантика at-least-once: FetchMessage + CommitMessages только после
// успешной обработки либо после отправки в DLQ.
type Consumer struct {
	logger      *zap.Logger
	reader      fetcher
	brokers     []string
	topic       string
	handler     Handler
	dlq         *DLQPublisher
	maxAttempts int
	backoffBase time.Duration
}

// NewConsumer создаёт consumer для топика с указанной группой
func NewConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID, topic string,
	handler Handler,
	dlq *DLQPublisher,
	maxAttempts int,
	backoffBase time.Duration,
) *Consumer {
	// Safety defaults (на случай кривого env/config)
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = 1 * time.Second
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{
		logger:      logger,
		reader:      reader,
		brokers:     brokers,
		topic:       topic,
		handler:     handler,
		dlq:         dlq,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Start запускает цикл обработки и блокируется до отмены контекста.
// Перед первым чтением объявляет топик, чтобы порядок старта процессов не имел значения.
func (c *Consumer) Start(ctx context.Context) error {
	if err := ensureTopic(ctx, c.brokers, c.topic); err != nil {
		// Reader сам переживёт отсутствующий топик ретраями, поэтому не падаем
		c.logger.Warn("failed to declare topic before consuming",
			zap.Error(err),
			zap.String("topic", c.topic),
		)
	}

	c.logger.Info("starting consumer",
		zap.String("topic", c.topic),
		zap.Int("max_attempts", c.maxAttempts),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			continue
		}

		shouldCommit := c.processMessage(ctx, m)

		if shouldCommit {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.Error("failed to commit message offset",
					zap.Error(err),
					zap.String("topic", m.Topic),
					zap.Int("partition", m.Partition),
					zap.Int64("offset", m.Offset),
				)
				continue
			}

			c.logger.Debug("message offset committed",
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage обрабатывает одно сообщение.
// Возвращает true, если offset нужно закоммитить (успех или отправка в DLQ).
func (c *Consumer) processMessage(ctx context.Context, m kafka.Message) bool {
	// Восстанавливаем trace context из заголовков сообщения
	mctx := otel.GetTextMapPropagator().Extract(ctx, observability.KafkaHeaderCarrier{Headers: &m.Headers})

	err := c.handleWithRetry(mctx, m)
	if err == nil {
		return true
	}

	c.logger.Error("message processing failed, sending to DLQ",
		zap.Error(err),
		zap.String("topic", m.Topic),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	if dlqErr := c.dlq.Publish(mctx, m, err, extractOrderID(m.Value)); dlqErr != nil {
		// Не коммитим: сообщение вернётся при следующей доставке,
		// иначе оно потеряется молча
		c.logger.Error("failed to send message to DLQ",
			zap.Error(dlqErr),
			zap.String("topic", m.Topic),
			zap.Int64("offset", m.Offset),
		)
		return false
	}

	return true
}

// handleWithRetry вызывает handler с ограниченным числом попыток.
// Poison message (ErrMalformedMessage) не ретраится.
func (c *Consumer) handleWithRetry(ctx context.Context, m kafka.Message) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			c.logger.Info("retrying message",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.handler(ctx, m)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("message processed after retry",
					zap.String("topic", m.Topic),
					zap.Int64("offset", m.Offset),
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}

		if errors.Is(err, ErrMalformedMessage) {
			c.logger.Error("poison message, will not retry",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
			)
			return err
		}

		lastErr = err
		c.logger.Warn("failed to handle message",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	return lastErr
}

// Close закрывает Kafka reader
func (c *Consumer) Close() error {
	c.logger.Info("closing consumer", zap.String("topic", c.topic))
	return c.reader.Close()
}

// extractOrderID достаёт orderId из JSON payload для ключа DLQ, если получится
func extractOrderID(value []byte) string {
	var payload struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(value, &payload); err != nil {
		return ""
	}
	return payload.OrderID
}
