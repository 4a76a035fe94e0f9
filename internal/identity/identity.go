// Package identity determines the acting user of an inventory operation.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Provider answers who the current user is. Absence of a user is reported
// as ok == false and is never an error by itself.
type Provider interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, bool)
}

type ctxKey struct{}

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserIDFromContext extracts the user ID from the context.
// Returns uuid.Nil and false if the value is missing or nil.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Session reads the user placed in the context by authentication.
type Session struct{}

// CurrentUserID implements Provider.
func (Session) CurrentUserID(ctx context.Context) (uuid.UUID, bool) {
	return UserIDFromContext(ctx)
}

// Fixed always reports the same user. Command line tools use it after
// validating an access token.
type Fixed uuid.UUID

// CurrentUserID implements Provider.
func (f Fixed) CurrentUserID(context.Context) (uuid.UUID, bool) {
	id := uuid.UUID(f)
	return id, id != uuid.Nil
}
