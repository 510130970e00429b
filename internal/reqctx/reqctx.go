package reqctx

import "context"

type ctxKey string

const (
	keyRequestID ctxKey = "request_id"
	keyUserID    ctxKey = "user_id"
)

// WithRequestID stores the correlation id used in log lines.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRequestID, rid)
}

// RequestID returns correlation id if present.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithUserID stores the authenticated local user id.
func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyUserID, id)
}

// UserID returns the authenticated local user id if present.
func UserID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyUserID).(uint64)
	return v
}
