package domain

import "context"

type ctxKey string

const (
	sessionCtxKey ctxKey = "session_id"
	userCtxKey    ctxKey = "user_id"
)

// ContextWithSessionID returns a new context carrying the session ID (ULID).
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sessionID)
}

// SessionIDFromContext extracts the session ID from the context.
// Returns empty string if not set.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionCtxKey).(string); ok {
		return v
	}
	return ""
}

// DefaultUserID is the identity memory tools fall back to when a request
// carries no user. Single-user deployments never set one.
const DefaultUserID = "default"

// ContextWithUserID returns a new context carrying the requesting user's id.
// Memory tools read the user from the context rather than trusting model
// arguments, so one user's goals and insights never leak into another's
// conversation.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userCtxKey, userID)
}

// UserIDFromContext extracts the user ID from the context, falling back to
// DefaultUserID when none is set.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userCtxKey).(string); ok && v != "" {
		return v
	}
	return DefaultUserID
}
