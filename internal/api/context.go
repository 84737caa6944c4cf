package api

import (
	"context"
)

// userContextKey is the context key for the acting user ID.
type userContextKey struct{}

// DefaultUserID is assumed when a request carries no user header.
// Single-user deployments never need to send one.
const DefaultUserID = "default"

// WithUserID returns a new context with the user ID attached.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userContextKey{}, id)
}

// UserIDFromContext extracts the user ID from the context.
// Returns DefaultUserID if not present or empty.
func UserIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(userContextKey{}).(string)
	if !ok || id == "" {
		return DefaultUserID
	}
	return id
}
