package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/platform/observability"
)

// messageWriter — минимальный интерфейс kafka.Writer (для подмены в тестах)
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher публикует JSON-сообщения в один топик Kafka.
// До завершения Connect все вызовы Publish возвращают ErrNotReady —
// сообщения не копятся и не теряются молча.
type Publisher struct {
	logger  *zap.Logger
	writer  messageWriter
	brokers []string
	topic   string
	ready   atomic.Bool
}

// NewPublisher создаёт новый publisher для указанного топика.
// Writer подключается лениво, поэтому создание не требует живого брокера.
func NewPublisher(logger *zap.Logger, brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &Publisher{
		logger:  logger,
		writer:  writer,
		brokers: brokers,
		topic:   topic,
	}
}

// Connect ждёт доступности брокера (с ретраями в пределах timeout) и объявляет топик.
// Вызывается в фоне при старте сервиса: брокер может стартовать дольше процесса.
func (p *Publisher) Connect(ctx context.Context, timeout, backoff time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		err := ensureTopic(ctx, p.brokers, p.topic)
		if err == nil {
			p.ready.Store(true)
			p.logger.Info("broker connection established",
				zap.Strings("brokers", p.brokers),
				zap.String("topic", p.topic),
			)
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("connect to broker %v: %w", p.brokers, err)
		}

		p.logger.Warn("broker not reachable yet, retrying",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Ready сообщает, установлено ли соединение с брокером
func (p *Publisher) Ready() bool {
	return p.ready.Load()
}

// Publish сериализует payload в JSON и отправляет в топик с указанным ключом.
// Trace context уезжает в заголовках сообщения.
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	if !p.ready.Load() {
		p.logger.Error("publish rejected: broker connection is not established",
			zap.String("topic", p.topic),
			zap.String("key", key),
		)
		return ErrNotReady
	}

	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal message payload",
			zap.Error(err),
			zap.String("topic", p.topic),
		)
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	otel.GetTextMapPropagator().Inject(ctx, observability.KafkaHeaderCarrier{Headers: &msg.Headers})

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish message",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("key", key),
		)
		return fmt.Errorf("write message to %s: %w", p.topic, err)
	}

	p.logger.Debug("message published",
		zap.String("topic", p.topic),
		zap.String("key", key),
	)

	return nil
}

// Close закрывает Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// ensureTopic проверяет доступность брокера и объявляет топик, если его ещё нет
func ensureTopic(ctx context.Context, brokers []string, topic string) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("lookup controller: %w", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}

	return nil
}
