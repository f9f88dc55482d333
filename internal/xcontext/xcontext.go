package xcontext

import "context"

type key[T any] struct{ name string }

var (
	requestIDKey = key[string]{"request_id"}
	sessionIDKey = key[string]{"session_id"}
	userIDKey    = key[string]{"user_id"}
	roleKey      = key[string]{"role"}
	shutdownKey  = key[bool]{"shutdown"}
)

func set[T any](ctx context.Context, k key[T], v T) context.Context {
	return context.WithValue(ctx, k, v)
}

func get[T any](ctx context.Context, k key[T]) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

func SetRequestID(ctx context.Context, id string) context.Context { return set(ctx, requestIDKey, id) }
func GetRequestID(ctx context.Context) (string, bool)              { return get(ctx, requestIDKey) }

// SetSessionID carries the client's X-Session-ID so server logs can be
// joined with the client's own log file.
func SetSessionID(ctx context.Context, id string) context.Context { return set(ctx, sessionIDKey, id) }
func GetSessionID(ctx context.Context) (string, bool)              { return get(ctx, sessionIDKey) }

// SetUser records the authenticated principal of a request.
func SetUser(ctx context.Context, userID string, role string) context.Context {
	return set(set(ctx, userIDKey, userID), roleKey, role)
}

func GetUserID(ctx context.Context) (string, bool) { return get(ctx, userIDKey) }
func GetRole(ctx context.Context) (string, bool)   { return get(ctx, roleKey) }

// SetShutdownInProgress marks requests that arrive after the server began
// draining, so handlers can tell a shutdown from a client hangup.
func SetShutdownInProgress(ctx context.Context, inProgress bool) context.Context {
	return set(ctx, shutdownKey, inProgress)
}

func IsShutdownInProgress(ctx context.Context) bool {
	v, _ := get(ctx, shutdownKey)
	return v
}
