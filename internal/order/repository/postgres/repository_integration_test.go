//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/order/repository"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер через testcontainers
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("orders"),
		postgres.WithUsername("order_user"),
		postgres.WithPassword("order_password"),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, postgresContainer.Terminate(ctx))
	}()

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Ждём готовности БД через ping с retry
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	db.Close()
	require.NoError(t, pingErr, "Failed to ping database after retries")

	// Накатываем встроенные миграции — тот же путь, что и при старте сервиса
	require.NoError(t, Migrate(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)

	t.Run("Create and GetByOrderID", func(t *testing.T) {
		order := repository.PersistedOrder{
			OrderID: "ord-1",
			User:    "alice",
			Products: []contracts.ProductRef{
				{ID: "p1", Name: "mouse", Price: 19.9},
				{ID: "p2", Name: "keyboard", Price: 49.9},
			},
			TotalPrice: 69.8,
		}

		created, err := repo.Create(ctx, order)
		require.NoError(t, err)
		require.NotEmpty(t, created.RecordID)

		got, err := repo.GetByOrderID(ctx, "ord-1")
		require.NoError(t, err)
		require.Equal(t, created.RecordID, got.RecordID)
		require.Equal(t, "alice", got.User)
		require.InDelta(t, 69.8, got.TotalPrice, 1e-9)
		require.Len(t, got.Products, 2)
		require.Equal(t, "mouse", got.Products[0].Name)
	})

	t.Run("Create is idempotent by order_id", func(t *testing.T) {
		order := repository.PersistedOrder{
			OrderID:    "ord-dup",
			User:       "bob",
			Products:   []contracts.ProductRef{{ID: "p1", Name: "mouse", Price: 10}},
			TotalPrice: 10,
		}

		first, err := repo.Create(ctx, order)
		require.NoError(t, err)

		second, err := repo.Create(ctx, order)
		require.NoError(t, err)
		require.Equal(t, first.RecordID, second.RecordID, "redelivery must not create a duplicate row")
	})

	t.Run("GetByOrderID_NotFound", func(t *testing.T) {
		_, err := repo.GetByOrderID(ctx, "missing")
		require.True(t, errors.Is(err, repository.ErrNotFound), "Expected ErrNotFound, got: %v", err)
	})
}
