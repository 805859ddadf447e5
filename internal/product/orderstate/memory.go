package orderstate

import (
	"context"
	"sync"
	"time"

	"github.com/shestoi/shopmq/internal/contracts"
)

var _ Store = (*MemoryStore)(nil)

type entry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore — in-memory хранилище статусов с TTL.
// Просроченные записи вычищаются лениво при обращениях,
// чтобы карта не росла бесконечно на каждом заказе.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore создаёт хранилище с указанным TTL записей
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put регистрирует заказ в статусе pending
func (s *MemoryStore) Put(_ context.Context, orderID string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapLocked()
	s.entries[orderID] = entry{
		state:     st,
		expiresAt: s.now().Add(s.ttl),
	}

	return nil
}

// Get возвращает состояние заказа или ErrNotFound
func (s *MemoryStore) Get(_ context.Context, orderID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[orderID]
	if !ok || s.now().After(e.expiresAt) {
		return State{}, ErrNotFound
	}

	return e.state, nil
}

// Complete переводит заказ в completed, сливая данные ответа в состояние.
// Чтение и запись происходят под одной блокировкой: конкурирующие
// дубликаты ответа не затирают друг друга.
func (s *MemoryStore) Complete(_ context.Context, orderID string, reply contracts.FulfillmentReply) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[orderID]
	if !ok || s.now().After(e.expiresAt) {
		return false, nil
	}

	if e.state.Status == StatusCompleted {
		return true, nil
	}

	e.state.Status = StatusCompleted
	e.state.User = reply.User
	e.state.TotalPrice = reply.TotalPrice
	if len(reply.Products) > 0 {
		e.state.Products = reply.Products
	}
	s.entries[orderID] = e

	return true, nil
}

// reapLocked удаляет просроченные записи. Вызывается под s.mu.
func (s *MemoryStore) reapLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
