package broker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DLQMessage представляет сообщение для Dead Letter Queue
type DLQMessage struct {
	OriginalTopic     string `json:"original_topic"`
	OriginalPartition int    `json:"original_partition"`
	OriginalOffset    int64  `json:"original_offset"`
	OriginalKey       string `json:"original_key"`   // base64
	OriginalValue     string `json:"original_value"` // base64
	ErrorMessage      string `json:"error_message"`
	FailedAt          string `json:"failed_at"` // RFC3339
	OrderID           string `json:"order_id"`  // если удалось извлечь из payload
}

// DLQPublisher публикует необрабатываемые сообщения в dead-letter топик.
// Благодаря DLQ осиротевший correlation ID можно диагностировать,
// а не гадать, почему вызов завершился таймаутом.
type DLQPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
}

// NewDLQPublisher создаёт новый publisher для DLQ
func NewDLQPublisher(logger *zap.Logger, brokers []string, topic string) *DLQPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &DLQPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Publish отправляет сообщение в DLQ с описанием причины
func (p *DLQPublisher) Publish(ctx context.Context, msg kafka.Message, cause error, orderID string) error {
	errorMsg := "unknown error"
	if cause != nil {
		errorMsg = cause.Error()
	}

	dlqMsg := DLQMessage{
		OriginalTopic:     msg.Topic,
		OriginalPartition: msg.Partition,
		OriginalOffset:    msg.Offset,
		OriginalKey:       base64.StdEncoding.EncodeToString(msg.Key),
		OriginalValue:     base64.StdEncoding.EncodeToString(msg.Value),
		ErrorMessage:      errorMsg,
		FailedAt:          time.Now().UTC().Format(time.RFC3339),
		OrderID:           orderID,
	}

	value, err := json.Marshal(dlqMsg)
	if err != nil {
		p.logger.Error("failed to marshal DLQ message",
			zap.Error(err),
			zap.String("original_topic", msg.Topic),
			zap.Int64("original_offset", msg.Offset),
		)
		return err
	}

	// Ключ для DLQ: order_id если есть, иначе ключ исходного сообщения
	key := msg.Key
	if orderID != "" {
		key = []byte(orderID)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		p.logger.Error("failed to publish message to DLQ",
			zap.Error(err),
			zap.String("dlq_topic", p.topic),
			zap.String("original_topic", msg.Topic),
			zap.Int64("original_offset", msg.Offset),
		)
		return err
	}

	p.logger.Info("message sent to DLQ",
		zap.String("dlq_topic", p.topic),
		zap.String("original_topic", msg.Topic),
		zap.Int64("original_offset", msg.Offset),
		zap.String("order_id", orderID),
		zap.String("error", errorMsg),
	)

	return nil
}

// Close закрывает Kafka writer
func (p *DLQPublisher) Close() error {
	return p.writer.Close()
}
