package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey namespaces values stored in a request context by the API layer.
type ContextKey string

const (
	// TraceIDKey holds the per-request trace id.
	TraceIDKey ContextKey = "traceID"

	// PrincipalKey holds the *domain.User resolved by the authorization guard.
	PrincipalKey ContextKey = "principal"

	// ClaimsKey holds the *auth.Claims decoded by the ownership guard.
	ClaimsKey ContextKey = "claims"

	// TraceIDHeader echoes the trace id back to the client.
	TraceIDHeader = "X-Trace-ID"
)

// SetTraceID returns a copy of ctx carrying a fresh trace id.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, uuid.NewString())
}

// GetTraceID returns the trace id in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}
