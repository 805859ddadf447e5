// Package kafka связывает order-сервис с брокером: приём заявок
// и публикация ответов о выполненных заказах.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/platform/broker"
)

// OrderService обрабатывает разобранную заявку
type OrderService interface {
	HandleOrderRequest(ctx context.Context, req contracts.OrderRequest) error
}

// RequestHandler разбирает заявки из топика orders и передаёт их сервису
type RequestHandler struct {
	logger  *zap.Logger
	service OrderService
}

// NewRequestHandler создаёт handler для consumer-а заявок
func NewRequestHandler(logger *zap.Logger, service OrderService) *RequestHandler {
	return &RequestHandler{
		logger:  logger,
		service: service,
	}
}

// Handle реализует broker.Handler
func (h *RequestHandler) Handle(ctx context.Context, msg kafkago.Message) error {
	var req contracts.OrderRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("%w: unmarshal order request: %w", broker.ErrMalformedMessage, err)
	}
	if req.OrderID == "" {
		return fmt.Errorf("%w: order request without orderId", broker.ErrMalformedMessage)
	}

	h.logger.Info("order request received",
		zap.String("order_id", req.OrderID),
		zap.String("username", req.Username),
		zap.Int("products", len(req.Products)),
	)

	return h.service.HandleOrderRequest(ctx, req)
}
