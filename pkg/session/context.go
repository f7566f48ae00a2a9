package session

import "context"

type identityContextKey struct{}

// WithIdentity adds the authorized identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the authorized identity from the context.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// MustFromContext retrieves the authorized identity or panics. Only for
// handlers mounted behind RequireAuth.
func MustFromContext(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		panic("session: identity not found in context")
	}
	return id
}

// UIDFromContext retrieves the authenticated user id from the context.
func UIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return id.UID, true
}
