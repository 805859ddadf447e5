package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/product/orderstate"
	"github.com/shestoi/shopmq/internal/product/repository"
	"github.com/shestoi/shopmq/internal/product/service"
	"github.com/shestoi/shopmq/platform/broker"
)

const testSecret = "test-secret"

type fakeService struct {
	createFn func(ctx context.Context, p repository.Product) (repository.Product, error)
	listFn   func(ctx context.Context) ([]repository.Product, error)
	submitFn func(ctx context.Context, username string, ids []string) (string, orderstate.State, error)
	statusFn func(ctx context.Context, orderID string) (orderstate.State, error)
}

func (f *fakeService) CreateProduct(ctx context.Context, p repository.Product) (repository.Product, error) {
	return f.createFn(ctx, p)
}

func (f *fakeService) ListProducts(ctx context.Context) ([]repository.Product, error) {
	return f.listFn(ctx)
}

func (f *fakeService) SubmitOrder(ctx context.Context, username string, ids []string) (string, orderstate.State, error) {
	return f.submitFn(ctx, username, ids)
}

func (f *fakeService) GetOrderStatus(ctx context.Context, orderID string) (orderstate.State, error) {
	return f.statusFn(ctx, orderID)
}

func signToken(t *testing.T, username string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

func newTestServer(t *testing.T, svc Service) *httptest.Server {
	t.Helper()

	handler := NewHandler(zap.NewNop(), svc)
	router := NewRouter(zap.NewNop(), handler, testSecret, func() bool { return true })
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestBuyProducts_Completed(t *testing.T) {
	svc := &fakeService{
		submitFn: func(_ context.Context, username string, ids []string) (string, orderstate.State, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, []string{"p1"}, ids)
			return "ord-1", orderstate.State{
				Status:     orderstate.StatusCompleted,
				Username:   "alice",
				User:       "alice",
				TotalPrice: 19.9,
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", signToken(t, "alice"), map[string]any{"ids": []string{"p1"}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ord-1", body["orderId"])
	assert.Equal(t, "completed", body["status"])
}

func TestBuyProducts_StillPending(t *testing.T) {
	svc := &fakeService{
		submitFn: func(_ context.Context, _ string, _ []string) (string, orderstate.State, error) {
			return "ord-2", orderstate.State{Status: orderstate.StatusPending, Username: "alice"}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", signToken(t, "alice"), map[string]any{"ids": []string{"p1"}})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pending", body["status"])
}

func TestBuyProducts_NoProductsFound(t *testing.T) {
	svc := &fakeService{
		submitFn: func(_ context.Context, _ string, _ []string) (string, orderstate.State, error) {
			return "", orderstate.State{}, service.ErrNoProductsFound
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", signToken(t, "alice"), map[string]any{"ids": []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBuyProducts_BrokerNotReady(t *testing.T) {
	svc := &fakeService{
		submitFn: func(_ context.Context, _ string, _ []string) (string, orderstate.State, error) {
			return "", orderstate.State{}, broker.ErrNotReady
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", signToken(t, "alice"), map[string]any{"ids": []string{"p1"}})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBuyProducts_EmptyIDs(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", signToken(t, "alice"), map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBuyProducts_NoToken(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", "", map[string]any{"ids": []string{"p1"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBuyProducts_InvalidToken(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp := doRequest(t, srv, http.MethodPost, "/products/buy", "garbage.token.here", map[string]any{"ids": []string{"p1"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBuyProducts_BearerHeader(t *testing.T) {
	svc := &fakeService{
		submitFn: func(_ context.Context, username string, _ []string) (string, orderstate.State, error) {
			assert.Equal(t, "bob", username)
			return "ord-3", orderstate.State{Status: orderstate.StatusPending}, nil
		},
	}
	srv := newTestServer(t, svc)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"ids": []string{"p1"}}))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/products/buy", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "bob"))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestCreateProduct(t *testing.T) {
	svc := &fakeService{
		createFn: func(_ context.Context, p repository.Product) (repository.Product, error) {
			p.ID = "p1"
			return p, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodPost, "/products", signToken(t, "alice"), map[string]any{
		"name":  "mouse",
		"price": 19.9,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created repository.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "p1", created.ID)
	assert.Equal(t, "mouse", created.Name)
}

func TestCreateProduct_Invalid(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp := doRequest(t, srv, http.MethodPost, "/products", signToken(t, "alice"), map[string]any{
		"name":  "",
		"price": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListProducts(t *testing.T) {
	svc := &fakeService{
		listFn: func(_ context.Context) ([]repository.Product, error) {
			return []repository.Product{{ID: "p1", Name: "mouse", Price: 19.9}}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodGet, "/products", signToken(t, "alice"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []repository.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 1)
}

func TestGetOrderStatus(t *testing.T) {
	svc := &fakeService{
		statusFn: func(_ context.Context, orderID string) (orderstate.State, error) {
			assert.Equal(t, "ord-1", orderID)
			return orderstate.State{Status: orderstate.StatusCompleted, User: "alice", TotalPrice: 10}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodGet, "/orders/ord-1", signToken(t, "alice"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "completed", body["status"])
}

func TestGetOrderStatus_NotFound(t *testing.T) {
	svc := &fakeService{
		statusFn: func(_ context.Context, _ string) (orderstate.State, error) {
			return orderstate.State{}, orderstate.ErrNotFound
		},
	}
	srv := newTestServer(t, svc)

	resp := doRequest(t, srv, http.MethodGet, "/orders/ghost", signToken(t, "alice"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpointIsOpen(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
