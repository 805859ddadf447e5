// Package memory содержит in-memory реализацию репозитория каталога.
// Используется в тестах и при локальной разработке без MongoDB.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shestoi/shopmq/internal/product/repository"
)

var _ repository.ProductRepository = (*Repository)(nil)

// Repository потокобезопасное in-memory хранилище товаров
type Repository struct {
	mu       sync.RWMutex
	products map[string]repository.Product
}

// NewRepository создаёт пустое in-memory хранилище
func NewRepository() *Repository {
	return &Repository{
		products: make(map[string]repository.Product),
	}
}

// Create сохраняет товар, присваивая ему UUID, если ID пустой
func (r *Repository) Create(_ context.Context, product repository.Product) (repository.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	r.products[product.ID] = product

	return product, nil
}

// FindByIDs возвращает найденные товары, пропуская неизвестные ID
func (r *Repository) FindByIDs(_ context.Context, ids []string) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]repository.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found = append(found, p)
		}
	}

	return found, nil
}

// List возвращает все товары
func (r *Repository) List(_ context.Context) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]repository.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}

	return all, nil
}
