package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/order/repository"
)

// Service — бизнес-логика order-сервиса: принимает заявки из очереди,
// считает итоговую стоимость, сохраняет заказ и публикует ответ.
type Service struct {
	logger    *zap.Logger
	orders    repository.OrderRepository
	publisher ReplyPublisher
}

// NewService создаёт сервис
func NewService(logger *zap.Logger, orders repository.OrderRepository, publisher ReplyPublisher) *Service {
	return &Service{
		logger:    logger,
		orders:    orders,
		publisher: publisher,
	}
}

// HandleOrderRequest обрабатывает заявку на выполнение заказа.
// Ошибка сохранения возвращается наверх: сообщение будет доставлено повторно.
// Ошибка публикации ответа только логируется — заказ уже сохранён,
// и повторная обработка всей заявки создала бы путаницу вместо пользы.
func (s *Service) HandleOrderRequest(ctx context.Context, req contracts.OrderRequest) error {
	total := 0.0
	for _, p := range req.Products {
		total += p.Price
	}

	persisted, err := s.orders.Create(ctx, repository.PersistedOrder{
		OrderID:    req.OrderID,
		User:       req.Username,
		Products:   req.Products,
		TotalPrice: total,
	})
	if err != nil {
		return fmt.Errorf("persist order %s: %w", req.OrderID, err)
	}

	s.logger.Info("order persisted",
		zap.String("order_id", req.OrderID),
		zap.String("record_id", persisted.RecordID),
		zap.String("user", req.Username),
		zap.Float64("total_price", total),
	)

	reply := contracts.FulfillmentReply{
		OrderID:    req.OrderID,
		User:       req.Username,
		Products:   req.Products,
		TotalPrice: persisted.TotalPrice,
	}
	if err := s.publisher.PublishFulfillmentReply(ctx, reply); err != nil {
		s.logger.Error("failed to publish fulfillment reply",
			zap.Error(err),
			zap.String("order_id", req.OrderID),
		)
		return nil
	}

	s.logger.Info("fulfillment reply published", zap.String("order_id", req.OrderID))

	return nil
}
