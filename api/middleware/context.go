package middleware

import "context"

type contextKey string

const (
	ctxIdentity  contextKey = "cart_identity"
	ctxRequestID contextKey = "request_id"
)

// IdentityFromContext returns the cart partition identity seeded by Identity.
func IdentityFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxIdentity).(string); ok {
		return v
	}
	return ""
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity seeds a cart identity; handlers and tests use it outside the middleware.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, ctxIdentity, identity)
}
