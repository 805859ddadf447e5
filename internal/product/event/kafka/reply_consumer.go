package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/product/orderstate"
	"github.com/shestoi/shopmq/platform/broker"
)

// ReplyHandler обрабатывает ответы о выполненных заказах из топика products:
// парсит сообщение один раз и завершает соответствующий заказ в хранилище.
type ReplyHandler struct {
	logger *zap.Logger
	states orderstate.Store
}

// NewReplyHandler создаёт handler для consumer-а ответов
func NewReplyHandler(logger *zap.Logger, states orderstate.Store) *ReplyHandler {
	return &ReplyHandler{
		logger: logger,
		states: states,
	}
}

// Handle реализует broker.Handler
func (h *ReplyHandler) Handle(ctx context.Context, msg kafkago.Message) error {
	var reply contracts.FulfillmentReply
	if err := json.Unmarshal(msg.Value, &reply); err != nil {
		return fmt.Errorf("%w: unmarshal fulfillment reply: %w", broker.ErrMalformedMessage, err)
	}
	if reply.OrderID == "" {
		return fmt.Errorf("%w: fulfillment reply without orderId", broker.ErrMalformedMessage)
	}

	completed, err := h.states.Complete(ctx, reply.OrderID, reply)
	if err != nil {
		return fmt.Errorf("complete order %s: %w", reply.OrderID, err)
	}

	if !completed {
		// Заказ неизвестен: TTL истёк или ответ пришёл после рестарта
		// с in-memory хранилищем. Отбрасываем, это не ошибка.
		h.logger.Warn("dropping reply for unknown order",
			zap.String("order_id", reply.OrderID),
		)
		return nil
	}

	h.logger.Info("order marked as completed",
		zap.String("order_id", reply.OrderID),
		zap.String("user", reply.User),
		zap.Float64("total_price", reply.TotalPrice),
	)

	return nil
}
