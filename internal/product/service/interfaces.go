package service

import (
	"context"

	"github.com/shestoi/shopmq/internal/contracts"
)

// RequestPublisher публикует заявки на выполнение заказа в очередь
type RequestPublisher interface {
	PublishOrderRequest(ctx context.Context, req contracts.OrderRequest) error
}

// ReplyListener слушает ответы о выполненных заказах.
// Start блокируется до отмены контекста.
type ReplyListener interface {
	Start(ctx context.Context) error
}
