package service

import (
	"context"

	"github.com/shestoi/shopmq/internal/contracts"
)

// ReplyPublisher публикует ответы о выполненных заказах в очередь
type ReplyPublisher interface {
	PublishFulfillmentReply(ctx context.Context, reply contracts.FulfillmentReply) error
}
