package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext guarda l como logger del request.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithFields agrega campos al logger que ya viaja en ctx (o al global).
// Lo usan los middlewares de auth para sumar username y role.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ToContext(ctx, From(ctx).With(fields...))
}

// From devuelve el logger del request o el global.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}
