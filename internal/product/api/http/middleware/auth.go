// Package middleware содержит HTTP middleware product-сервиса
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/shestoi/shopmq/internal/product/authctx"
)

const headerAuthToken = "x-auth-token"

// Claims — полезная нагрузка JWT-токена
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth проверяет JWT-токен из заголовка x-auth-token либо Authorization: Bearer.
// Имя пользователя из токена кладётся в контекст запроса.
// Без токена — 401, с невалидным токеном — 400.
func Auth(logger *zap.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "no auth token, access denied")
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !parsed.Valid || claims.Username == "" {
				logger.Warn("rejected request with invalid auth token", zap.Error(err))
				writeError(w, http.StatusBadRequest, "invalid token")
				return
			}

			ctx := authctx.WithUsername(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if token := r.Header.Get(headerAuthToken); token != "" {
		return token
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
