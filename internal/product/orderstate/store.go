// Package orderstate хранит статусы заказов между синхронным HTTP-запросом
// и асинхронным ответом из очереди. Ключом служит correlation ID заказа.
package orderstate

import (
	"context"
	"errors"

	"github.com/shestoi/shopmq/internal/contracts"
)

// ErrNotFound возвращается, когда заказ с таким ID не отслеживается
var ErrNotFound = errors.New("order state not found")

// Status — статус заказа
type Status string

const (
	// StatusPending — заявка отправлена, ответ ещё не получен
	StatusPending Status = "pending"
	// StatusCompleted — ответ получен, заказ выполнен
	StatusCompleted Status = "completed"
)

// State — состояние одного заказа.
// Поля User и TotalPrice заполняются только после перехода в completed.
type State struct {
	Status     Status                 `json:"status"`
	Products   []contracts.ProductRef `json:"products"`
	Username   string                 `json:"username"`
	User       string                 `json:"user,omitempty"`
	TotalPrice float64                `json:"totalPrice,omitempty"`
}

// Store определяет интерфейс хранилища статусов заказов
type Store interface {
	// Put регистрирует новый заказ в статусе pending
	Put(ctx context.Context, orderID string, st State) error
	// Get возвращает текущее состояние заказа или ErrNotFound
	Get(ctx context.Context, orderID string) (State, error)
	// Complete переводит заказ в completed, добавляя данные из ответа.
	// Возвращает false, если заказ неизвестен (ответ отбрасывается).
	// Повторный вызов для уже завершённого заказа — no-op с результатом true.
	Complete(ctx context.Context, orderID string, reply contracts.FulfillmentReply) (bool, error)
}
