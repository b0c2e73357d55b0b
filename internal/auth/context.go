package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

// ContextWithUserID returns a new context that carries the authenticated user.
func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext retrieves the authenticated user from the context, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireUserID returns the authenticated user or an error when the
// context carries no identity. Writes are always stamped with an owner.
func RequireUserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("authenticated user is required")
	}
	return id, nil
}
