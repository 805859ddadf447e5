package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/contracts"
	"github.com/shestoi/shopmq/platform/broker"
)

type fakeOrderService struct {
	requests []contracts.OrderRequest
	err      error
}

func (s *fakeOrderService) HandleOrderRequest(_ context.Context, req contracts.OrderRequest) error {
	if s.err != nil {
		return s.err
	}
	s.requests = append(s.requests, req)
	return nil
}

func TestRequestHandler_ValidRequest(t *testing.T) {
	svc := &fakeOrderService{}
	h := NewRequestHandler(zap.NewNop(), svc)

	err := h.Handle(context.Background(), kafkago.Message{
		Value: []byte(`{"orderId":"ord-1","username":"alice","products":[{"id":"p1","name":"mouse","price":19.9}]}`),
	})
	require.NoError(t, err)

	require.Len(t, svc.requests, 1)
	req := svc.requests[0]
	assert.Equal(t, "ord-1", req.OrderID)
	assert.Equal(t, "alice", req.Username)
	require.Len(t, req.Products, 1)
	assert.Equal(t, 19.9, req.Products[0].Price)
}

func TestRequestHandler_MalformedJSON(t *testing.T) {
	h := NewRequestHandler(zap.NewNop(), &fakeOrderService{})

	err := h.Handle(context.Background(), kafkago.Message{Value: []byte(`not json`)})
	assert.ErrorIs(t, err, broker.ErrMalformedMessage)
}

func TestRequestHandler_MissingOrderID(t *testing.T) {
	h := NewRequestHandler(zap.NewNop(), &fakeOrderService{})

	err := h.Handle(context.Background(), kafkago.Message{Value: []byte(`{"username":"alice"}`)})
	assert.ErrorIs(t, err, broker.ErrMalformedMessage)
}

func TestRequestHandler_ServiceErrorIsPropagated(t *testing.T) {
	svc := &fakeOrderService{err: errors.New("database unavailable")}
	h := NewRequestHandler(zap.NewNop(), svc)

	err := h.Handle(context.Background(), kafkago.Message{
		Value: []byte(`{"orderId":"ord-1","username":"alice"}`),
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, broker.ErrMalformedMessage, "transient errors must stay retryable")
}
