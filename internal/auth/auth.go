package auth

import (
	"context"

	app_errors "novamind/backend/internal/errors"
)

// User is the identity every owner-scoped operation runs under. Identity
// itself comes from an external provider; the backend only verifies tokens.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Gateway resolves the current user for an operation. Services depend on this
// interface rather than reading tokens themselves, so tests can substitute a
// fixed identity.
type Gateway interface {
	CurrentUser(ctx context.Context) (*User, error)
}

type ctxKey struct{}

// WithUser attaches an authenticated user to the context. The HTTP middleware
// calls this after verifying the bearer token.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFrom extracts the authenticated user from the context, if any.
func UserFrom(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*User)
	return user, ok
}

// ContextGateway reads the identity that the request middleware attached.
type ContextGateway struct{}

func NewContextGateway() *ContextGateway { return &ContextGateway{} }

func (ContextGateway) CurrentUser(ctx context.Context) (*User, error) {
	user, ok := UserFrom(ctx)
	if !ok || user == nil || user.ID == "" {
		return nil, app_errors.ErrUnauthenticated
	}
	return user, nil
}

// StaticGateway always returns the same user. Test helper.
type StaticGateway struct {
	User *User
}

func (g StaticGateway) CurrentUser(ctx context.Context) (*User, error) {
	if g.User == nil {
		return nil, app_errors.ErrUnauthenticated
	}
	return g.User, nil
}
