// Package authctx передаёт имя аутентифицированного пользователя через context
package authctx

import "context"

type ctxKey struct{}

// WithUsername кладёт имя пользователя в контекст
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// UsernameFromContext достаёт имя пользователя из контекста
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ctxKey{}).(string)
	return username, ok
}
