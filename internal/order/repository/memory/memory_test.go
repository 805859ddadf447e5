package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/order/repository"
)

func TestRepository_Create(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, repository.PersistedOrder{
		OrderID:    "ord-1",
		User:       "alice",
		Products:   []contracts.ProductRef{{ID: "p1", Name: "mouse", Price: 19.9}},
		TotalPrice: 19.9,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.RecordID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestRepository_CreateIsIdempotentByOrderID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, repository.PersistedOrder{OrderID: "ord-1", User: "alice", TotalPrice: 10})
	require.NoError(t, err)

	// Повторная доставка той же заявки (at-least-once)
	second, err := repo.Create(ctx, repository.PersistedOrder{OrderID: "ord-1", User: "alice", TotalPrice: 10})
	require.NoError(t, err)

	assert.Equal(t, first.RecordID, second.RecordID, "redelivery must not create a duplicate")
}

func TestRepository_GetByOrderID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.PersistedOrder{OrderID: "ord-1", User: "alice", TotalPrice: 10})
	require.NoError(t, err)

	order, err := repo.GetByOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", order.User)

	_, err = repo.GetByOrderID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
