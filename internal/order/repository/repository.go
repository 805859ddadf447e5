package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shestoi/shopmq/internal/contracts"
)

// ErrNotFound возвращается, когда заказ не найден
var ErrNotFound = errors.New("order not found")

// PersistedOrder — выполненный заказ, сохранённый order-сервисом.
// RecordID — внутренний ключ записи; OrderID — correlation ID из заявки.
type PersistedOrder struct {
	RecordID   string
	OrderID    string
	User       string
	Products   []contracts.ProductRef
	TotalPrice float64
	CreatedAt  time.Time
}

// OrderRepository определяет интерфейс хранилища выполненных заказов.
// Create идемпотентен по OrderID: повторная доставка той же заявки
// возвращает уже сохранённую запись, а не создаёт дубликат.
type OrderRepository interface {
	Create(ctx context.Context, order PersistedOrder) (PersistedOrder, error)
	GetByOrderID(ctx context.Context, orderID string) (PersistedOrder, error)
}
