package orderstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shestoi/shopmq/internal/contracts"
)

var _ Store = (*RedisStore)(nil)

// RedisStore хранит статусы заказов в Redis с нативным TTL.
// Переживает рестарт product-сервиса: клиент сможет опросить
// статус заказа, созданного до рестарта.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище поверх готового клиента
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(orderID string) string {
	return fmt.Sprintf("order_state:%s", orderID)
}

// Put регистрирует заказ в статусе pending
func (s *RedisStore) Put(ctx context.Context, orderID string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal order state: %w", err)
	}

	if err := s.client.Set(ctx, s.key(orderID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save order state: %w", err)
	}

	return nil
}

// Get возвращает состояние заказа или ErrNotFound
func (s *RedisStore) Get(ctx context.Context, orderID string) (State, error) {
	data, err := s.client.Get(ctx, s.key(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("get order state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("unmarshal order state: %w", err)
	}

	return st, nil
}

// Complete переводит заказ в completed.
// Read-modify-write без WATCH: заказ завершает единственный consumer
// в группе, а дубликаты ответа несут одинаковые данные.
func (s *RedisStore) Complete(ctx context.Context, orderID string, reply contracts.FulfillmentReply) (bool, error) {
	st, err := s.Get(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if st.Status == StatusCompleted {
		return true, nil
	}

	st.Status = StatusCompleted
	st.User = reply.User
	st.TotalPrice = reply.TotalPrice
	if len(reply.Products) > 0 {
		st.Products = reply.Products
	}

	data, err := json.Marshal(st)
	if err != nil {
		return false, fmt.Errorf("marshal order state: %w", err)
	}

	// KEEPTTL сохраняет остаток исходного TTL: завершение не продлевает жизнь записи
	if err := s.client.Set(ctx, s.key(orderID), data, redis.KeepTTL).Err(); err != nil {
		return false, fmt.Errorf("update order state: %w", err)
	}

	return true, nil
}
