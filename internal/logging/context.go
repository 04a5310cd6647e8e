package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext attaches l to ctx.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the logger attached to ctx, or the process logger.
func From(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return L()
}

// Transaction returns a field naming a transaction address.
func Transaction(address string) zap.Field {
	return zap.String("transaction", address)
}

// Target returns a field naming the OS the change applies to.
func Target(osname string) zap.Field {
	if osname == "" {
		osname = "booted"
	}
	return zap.String("osname", osname)
}
