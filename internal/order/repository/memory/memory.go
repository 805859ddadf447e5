// Package memory содержит in-memory реализацию хранилища заказов.
// Используется в тестах и при локальной разработке без PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shestoi/shopmq/internal/order/repository"
)

var _ repository.OrderRepository = (*Repository)(nil)

// Repository потокобезопасное in-memory хранилище заказов
type Repository struct {
	mu        sync.RWMutex
	byOrderID map[string]repository.PersistedOrder
}

// NewRepository создаёт пустое in-memory хранилище
func NewRepository() *Repository {
	return &Repository{
		byOrderID: make(map[string]repository.PersistedOrder),
	}
}

// Create сохраняет заказ. Повторный вызов с тем же OrderID
// возвращает ранее сохранённую запись.
func (r *Repository) Create(_ context.Context, order repository.PersistedOrder) (repository.PersistedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byOrderID[order.OrderID]; ok {
		return existing, nil
	}

	if order.RecordID == "" {
		order.RecordID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	r.byOrderID[order.OrderID] = order

	return order, nil
}

// GetByOrderID возвращает заказ по correlation ID
func (r *Repository) GetByOrderID(_ context.Context, orderID string) (repository.PersistedOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byOrderID[orderID]
	if !ok {
		return repository.PersistedOrder{}, repository.ErrNotFound
	}

	return order, nil
}
