package oauth

import (
	"context"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/models"
)

type contextKey string

const tokenKey contextKey = "token"

// WithToken threads the resolved token context through the request's
// context so the gate, handlers, and the activity recorder all see the
// same resolution.
func WithToken(ctx context.Context, tc *TokenContext) context.Context {
	return context.WithValue(ctx, tokenKey, tc)
}

func FromContext(ctx context.Context) *TokenContext {
	tc, _ := ctx.Value(tokenKey).(*TokenContext)
	return tc
}

// AppFromContext returns the client app resolved for this request, nil
// when the token was invalid or absent.
func AppFromContext(ctx context.Context) *models.App {
	if tc := FromContext(ctx); tc != nil {
		return tc.App
	}
	return nil
}

func UserFromContext(ctx context.Context) *models.User {
	if tc := FromContext(ctx); tc != nil {
		return tc.User
	}
	return nil
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return uuid.Nil
}
