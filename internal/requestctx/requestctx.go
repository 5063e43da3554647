package requestctx

import "context"

type ctxKey string

const (
	requestIDKey      ctxKey = "request_id"
	idempotencyKeyKey ctxKey = "idempotency_key"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey, key)
}

func GetIdempotencyKey(ctx context.Context) string {
	if value, ok := ctx.Value(idempotencyKeyKey).(string); ok {
		return value
	}
	return ""
}
