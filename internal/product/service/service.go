package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/internal/product/orderstate"
	"github.com/shestoi/shopmq/internal/product/repository"
)

// ErrNoProductsFound возвращается, когда ни один из запрошенных товаров не найден
var ErrNoProductsFound = errors.New("no products found")

// Service — бизнес-логика product-сервиса: каталог товаров и оркестрация
// заказа поверх асинхронной очереди. Синхронный HTTP-запрос ждёт ответа
// через опрос хранилища статусов по correlation ID.
type Service struct {
	logger   *zap.Logger
	products repository.ProductRepository
	states   orderstate.Store

	publisher RequestPublisher
	listener  ReplyListener

	pollInterval time.Duration
	pollAttempts int

	listenOnce sync.Once
}

// NewService создаёт сервис
func NewService(
	logger *zap.Logger,
	products repository.ProductRepository,
	states orderstate.Store,
	publisher RequestPublisher,
	listener ReplyListener,
	pollInterval time.Duration,
	pollAttempts int,
) *Service {
	return &Service{
		logger:       logger,
		products:     products,
		states:       states,
		publisher:    publisher,
		listener:     listener,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
	}
}

// CreateProduct добавляет товар в каталог
func (s *Service) CreateProduct(ctx context.Context, product repository.Product) (repository.Product, error) {
	created, err := s.products.Create(ctx, product)
	if err != nil {
		return repository.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", created.ID),
		zap.String("name", created.Name),
	)

	return created, nil
}

// ListProducts возвращает весь каталог
func (s *Service) ListProducts(ctx context.Context) ([]repository.Product, error) {
	return s.products.List(ctx)
}

// SubmitOrder создаёт заказ из указанных товаров и ждёт его выполнения.
// Возвращает ID заказа и его состояние на момент возврата: completed, если
// ответ успел прийти за отведённое число опросов, иначе pending (клиент
// может дальше опрашивать статус по ID).
func (s *Service) SubmitOrder(ctx context.Context, username string, productIDs []string) (string, orderstate.State, error) {
	found, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return "", orderstate.State{}, fmt.Errorf("find products: %w", err)
	}
	if len(found) == 0 {
		return "", orderstate.State{}, ErrNoProductsFound
	}

	refs := make([]contracts.ProductRef, 0, len(found))
	for _, p := range found {
		refs = append(refs, contracts.ProductRef{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
		})
	}

	orderID := uuid.NewString()

	// Статус регистрируется до публикации: ответ не может обогнать запись
	st := orderstate.State{
		Status:   orderstate.StatusPending,
		Products: refs,
		Username: username,
	}
	if err := s.states.Put(ctx, orderID, st); err != nil {
		return "", orderstate.State{}, fmt.Errorf("register order state: %w", err)
	}

	// Listener ответов запускается один раз, при первом заказе.
	// Контекст отвязан от запроса: listener живёт дольше, чем HTTP-вызов.
	s.listenOnce.Do(func() {
		lctx := context.WithoutCancel(ctx)
		go func() {
			if err := s.listener.Start(lctx); err != nil {
				s.logger.Error("reply listener stopped", zap.Error(err))
			}
		}()
	})

	req := contracts.OrderRequest{
		Products: refs,
		Username: username,
		OrderID:  orderID,
	}
	if err := s.publisher.PublishOrderRequest(ctx, req); err != nil {
		return "", orderstate.State{}, fmt.Errorf("publish order request: %w", err)
	}

	s.logger.Info("order submitted",
		zap.String("order_id", orderID),
		zap.String("username", username),
		zap.Int("products", len(refs)),
	)

	final, err := s.waitForCompletion(ctx, orderID)
	if err != nil {
		return "", orderstate.State{}, err
	}

	return orderID, final, nil
}

// waitForCompletion опрашивает хранилище статусов фиксированное число раз.
// Если ответ не успел прийти, возвращает последнее известное состояние.
func (s *Service) waitForCompletion(ctx context.Context, orderID string) (orderstate.State, error) {
	last := orderstate.State{Status: orderstate.StatusPending}

	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return orderstate.State{}, ctx.Err()
		case <-time.After(s.pollInterval):
		}

		st, err := s.states.Get(ctx, orderID)
		if errors.Is(err, orderstate.ErrNotFound) {
			// TTL мог истечь посреди ожидания
			return last, nil
		}
		if err != nil {
			return orderstate.State{}, fmt.Errorf("poll order state: %w", err)
		}

		if st.Status == orderstate.StatusCompleted {
			s.logger.Info("order completed within request window",
				zap.String("order_id", orderID),
				zap.Int("attempts", attempt+1),
			)
			return st, nil
		}

		last = st
	}

	s.logger.Info("order still pending after poll window",
		zap.String("order_id", orderID),
		zap.Int("attempts", s.pollAttempts),
	)

	return last, nil
}

// GetOrderStatus возвращает текущее состояние заказа
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (orderstate.State, error) {
	return s.states.Get(ctx, orderID)
}
