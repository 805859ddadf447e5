package kafka

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/product/orderstate"
	"github.com/shestoi/shopmq/platform/broker"
)

func TestReplyHandler_CompletesKnownOrder(t *testing.T) {
	states := orderstate.NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, states.Put(ctx, "ord-1", orderstate.State{
		Status:   orderstate.StatusPending,
		Username: "alice",
	}))

	h := NewReplyHandler(zap.NewNop(), states)

	err := h.Handle(ctx, kafkago.Message{
		Value: []byte(`{"orderId":"ord-1","user":"alice","products":[{"id":"p1","name":"mouse","price":19.9}],"totalPrice":19.9}`),
	})
	require.NoError(t, err)

	st, err := states.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, orderstate.StatusCompleted, st.Status)
	assert.Equal(t, "alice", st.User)
	assert.Equal(t, 19.9, st.TotalPrice)
}

func TestReplyHandler_UnknownOrderIsDropped(t *testing.T) {
	states := orderstate.NewMemoryStore(time.Hour)
	h := NewReplyHandler(zap.NewNop(), states)

	err := h.Handle(context.Background(), kafkago.Message{
		Value: []byte(`{"orderId":"ghost","user":"bob","totalPrice":5}`),
	})
	assert.NoError(t, err, "reply for unknown order is acked, not retried")
}

func TestReplyHandler_MalformedJSON(t *testing.T) {
	states := orderstate.NewMemoryStore(time.Hour)
	h := NewReplyHandler(zap.NewNop(), states)

	err := h.Handle(context.Background(), kafkago.Message{Value: []byte(`{broken`)})
	assert.ErrorIs(t, err, broker.ErrMalformedMessage)
}

func TestReplyHandler_MissingOrderID(t *testing.T) {
	states := orderstate.NewMemoryStore(time.Hour)
	h := NewReplyHandler(zap.NewNop(), states)

	err := h.Handle(context.Background(), kafkago.Message{Value: []byte(`{"user":"bob"}`)})
	assert.ErrorIs(t, err, broker.ErrMalformedMessage)
}

func TestReplyHandler_DuplicateDelivery(t *testing.T) {
	states := orderstate.NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, states.Put(ctx, "ord-1", orderstate.State{Status: orderstate.StatusPending}))

	h := NewReplyHandler(zap.NewNop(), states)
	msg := kafkago.Message{Value: []byte(`{"orderId":"ord-1","user":"alice","totalPrice":10}`)}

	require.NoError(t, h.Handle(ctx, msg))
	require.NoError(t, h.Handle(ctx, msg), "at-least-once redelivery is a no-op")

	st, err := states.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, orderstate.StatusCompleted, st.Status)
}
