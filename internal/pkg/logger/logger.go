package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields returns a context whose logger carries fields.
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction tags the context logger with the handler flow being served.
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithComponent tags the context logger with the pipeline stage logging next.
func WithComponent(ctx context.Context, component string) context.Context {
	return AddFields(ctx, zap.String("component", component))
}
