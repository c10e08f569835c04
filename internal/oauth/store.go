package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myusa/platform/internal/models"
)

// Store resolves access tokens against Postgres. One round trip joins the
// token to its authorization, client app, and resource owner.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ResolveToken(ctx context.Context, tokenHash string) (*models.AccessToken, *models.Authorization, *models.App, *models.User, error) {
	var (
		token models.AccessToken
		auth  models.Authorization
		app   models.App
		user  models.User
	)

	err := s.db.QueryRow(ctx,
		`SELECT t.id, t.authorization_id, t.token_hash, t.expires_at, t.revoked_at, t.created_at,
		        a.id, a.app_id, a.user_id, a.scope, a.created_at,
		        c.id, c.name, c.slug, c.sandbox, c.created_at,
		        u.id, u.uid, u.email, COALESCE(u.unconfirmed_email, ''), u.confirmed_at, u.created_at
		 FROM access_tokens t
		 JOIN authorizations a ON a.id = t.authorization_id
		 JOIN apps c ON c.id = a.app_id
		 JOIN users u ON u.id = a.user_id
		 WHERE t.token_hash = $1`, tokenHash,
	).Scan(
		&token.ID, &token.AuthorizationID, &token.TokenHash, &token.ExpiresAt, &token.RevokedAt, &token.CreatedAt,
		&auth.ID, &auth.AppID, &auth.UserID, &auth.Scope, &auth.CreatedAt,
		&app.ID, &app.Name, &app.Slug, &app.Sandbox, &app.CreatedAt,
		&user.ID, &user.UID, &user.Email, &user.UnconfirmedEmail, &user.ConfirmedAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, nil, ErrTokenNotFound
		}
		return nil, nil, nil, nil, fmt.Errorf("resolve access token: %w", err)
	}

	return &token, &auth, &app, &user, nil
}
