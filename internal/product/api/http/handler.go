// Package http содержит HTTP API product-сервиса
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/product/authctx"
	"github.com/shestoi/shopmq/internal/product/orderstate"
	"github.com/shestoi/shopmq/internal/product/repository"
	"github.com/shestoi/shopmq/internal/product/service"
	"github.com/shestoi/shopmq/platform/broker"
)

// Service — операции, которые нужны HTTP-слою
type Service interface {
	CreateProduct(ctx context.Context, product repository.Product) (repository.Product, error)
	ListProducts(ctx context.Context) ([]repository.Product, error)
	SubmitOrder(ctx context.Context, username string, productIDs []string) (string, orderstate.State, error)
	GetOrderStatus(ctx context.Context, orderID string) (orderstate.State, error)
}

// Handler обрабатывает HTTP-запросы product-сервиса
type Handler struct {
	logger  *zap.Logger
	service Service
}

// NewHandler создаёт handler
func NewHandler(logger *zap.Logger, service Service) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type buyProductsRequest struct {
	IDs []string `json:"ids"`
}

type orderResponse struct {
	OrderID    string            `json:"orderId"`
	Status     orderstate.Status `json:"status"`
	Username   string            `json:"username"`
	Products   []productRef      `json:"products"`
	User       string            `json:"user,omitempty"`
	TotalPrice float64           `json:"totalPrice,omitempty"`
}

type productRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CreateProduct обрабатывает POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Price <= 0 {
		h.writeError(w, http.StatusBadRequest, "name and positive price are required")
		return
	}

	created, err := h.service.CreateProduct(r.Context(), repository.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// ListProducts обрабатывает GET /products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// BuyProducts обрабатывает POST /products/buy: создаёт заказ и ждёт выполнения.
// 201 — заказ выполнен в рамках окна ожидания, 202 — ещё обрабатывается.
func (h *Handler) BuyProducts(w http.ResponseWriter, r *http.Request) {
	username, ok := authctx.UsernameFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "no auth token, access denied")
		return
	}

	var req buyProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	orderID, st, err := h.service.SubmitOrder(r.Context(), username, req.IDs)
	switch {
	case errors.Is(err, service.ErrNoProductsFound):
		h.writeError(w, http.StatusNotFound, "no products found for given ids")
		return
	case errors.Is(err, broker.ErrNotReady):
		h.writeError(w, http.StatusServiceUnavailable, "order queue is not available, try again later")
		return
	case err != nil:
		h.logger.Error("failed to submit order", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to submit order")
		return
	}

	status := http.StatusAccepted
	if st.Status == orderstate.StatusCompleted {
		status = http.StatusCreated
	}

	h.writeJSON(w, status, toOrderResponse(orderID, st))
}

// GetOrderStatus обрабатывает GET /orders/{orderID}
func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	st, err := h.service.GetOrderStatus(r.Context(), orderID)
	if errors.Is(err, orderstate.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get order status", zap.Error(err), zap.String("order_id", orderID))
		h.writeError(w, http.StatusInternalServerError, "failed to get order status")
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(orderID, st))
}

func toOrderResponse(orderID string, st orderstate.State) orderResponse {
	products := make([]productRef, 0, len(st.Products))
	for _, p := range st.Products {
		products = append(products, productRef{ID: p.ID, Name: p.Name, Price: p.Price})
	}

	return orderResponse{
		OrderID:    orderID,
		Status:     st.Status,
		Username:   st.Username,
		Products:   products,
		User:       st.User,
		TotalPrice: st.TotalPrice,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
