package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/product/api/http/middleware"
	healthhttp "github.com/shestoi/shopmq/platform/health/http"
	"github.com/shestoi/shopmq/platform/observability"
)

// NewRouter собирает маршруты product-сервиса.
// Все продуктовые ручки закрыты JWT-аутентификацией, /health открыт.
func NewRouter(
	logger *zap.Logger,
	handler *Handler,
	jwtSecret string,
	readiness func() bool,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(observability.HTTPMiddleware("product-service", logger))

	r.Get("/health", healthhttp.Handler(readiness))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(logger, jwtSecret))

		r.Post("/products", handler.CreateProduct)
		r.Get("/products", handler.ListProducts)
		r.Post("/products/buy", handler.BuyProducts)
		r.Get("/orders/{orderID}", handler.GetOrderStatus)
	})

	return r
}
