// Package postgres содержит PostgreSQL-реализацию хранилища заказов
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/shopmq/internal/order/repository"
)

var _ repository.OrderRepository = (*Repository)(nil)

// Repository реализует OrderRepository поверх PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт репозиторий поверх готового pool-а
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertOrder = `
INSERT INTO orders (id, order_id, username, products, total_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (order_id) DO NOTHING`

const selectOrderByOrderID = `
SELECT id, order_id, username, products, total_price, created_at
FROM orders
WHERE order_id = $1`

// Create сохраняет заказ. UNIQUE по order_id делает запись идемпотентной:
// повторная доставка заявки возвращает уже сохранённый заказ.
func (r *Repository) Create(ctx context.Context, order repository.PersistedOrder) (repository.PersistedOrder, error) {
	if order.RecordID == "" {
		order.RecordID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	products, err := json.Marshal(order.Products)
	if err != nil {
		return repository.PersistedOrder{}, fmt.Errorf("marshal products: %w", err)
	}

	tag, err := r.pool.Exec(ctx, insertOrder,
		order.RecordID,
		order.OrderID,
		order.User,
		products,
		order.TotalPrice,
		order.CreatedAt,
	)
	if err != nil {
		return repository.PersistedOrder{}, fmt.Errorf("insert order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.GetByOrderID(ctx, order.OrderID)
	}

	return order, nil
}

// GetByOrderID возвращает заказ по correlation ID
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (repository.PersistedOrder, error) {
	var (
		order    repository.PersistedOrder
		products []byte
	)

	err := r.pool.QueryRow(ctx, selectOrderByOrderID, orderID).Scan(
		&order.RecordID,
		&order.OrderID,
		&order.User,
		&products,
		&order.TotalPrice,
		&order.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.PersistedOrder{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.PersistedOrder{}, fmt.Errorf("select order: %w", err)
	}

	if err := json.Unmarshal(products, &order.Products); err != nil {
		return repository.PersistedOrder{}, fmt.Errorf("unmarshal products: %w", err)
	}

	return order, nil
}
