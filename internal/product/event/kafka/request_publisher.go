// Package kafka связывает product-сервис с брокером: публикация заявок
// на выполнение заказа и приём ответов.
package kafka

import (
	"context"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/product/service"
	"github.com/shestoi/shopmq/platform/broker"
)

var _ service.RequestPublisher = (*RequestPublisher)(nil)

// RequestPublisher публикует заявки в топик orders.
// Ключом сообщения служит ID заказа.
type RequestPublisher struct {
	publisher *broker.Publisher
}

// NewRequestPublisher создаёт publisher поверх подключения к брокеру
func NewRequestPublisher(publisher *broker.Publisher) *RequestPublisher {
	return &RequestPublisher{publisher: publisher}
}

// PublishOrderRequest отправляет заявку на выполнение заказа
func (p *RequestPublisher) PublishOrderRequest(ctx context.Context, req contracts.OrderRequest) error {
	return p.publisher.Publish(ctx, req.OrderID, req)
}
