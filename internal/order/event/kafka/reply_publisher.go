package kafka

import (
	"context"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/order/service"
	"github.com/shestoi/shopmq/platform/broker"
)

var _ service.ReplyPublisher = (*ReplyPublisher)(nil)

// ReplyPublisher публикует ответы в топик products.
// Ключом сообщения служит ID заказа.
type ReplyPublisher struct {
	publisher *broker.Publisher
}

// NewReplyPublisher создаёт publisher поверх подключения к брокеру
func NewReplyPublisher(publisher *broker.Publisher) *ReplyPublisher {
	return &ReplyPublisher{publisher: publisher}
}

// PublishFulfillmentReply отправляет ответ о выполненном заказе
func (p *ReplyPublisher) PublishFulfillmentReply(ctx context.Context, reply contracts.FulfillmentReply) error {
	return p.publisher.Publish(ctx, reply.OrderID, reply)
}
