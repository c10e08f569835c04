package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myusa/platform/internal/models"
)

var ErrTokenNotFound = errors.New("access token not found")

// TokenContext is the outcome of resolving the bearer credential on one
// request. On the invalid path only Valid and ResponseStatus are set; the
// status comes from the validity check itself and is surfaced unmodified.
type TokenContext struct {
	Valid          bool                  `json:"valid"`
	ResponseStatus int                   `json:"response_status"`
	Authorization  *models.Authorization `json:"authorization,omitempty"`
	App            *models.App           `json:"app,omitempty"`
	User           *models.User          `json:"user,omitempty"`
}

type Validator struct {
	store TokenResolver
	cache TokenCache
	ttl   time.Duration
}

// TokenResolver loads an access token and its owning principals by the
// hash of the presented credential.
type TokenResolver interface {
	ResolveToken(ctx context.Context, tokenHash string) (*models.AccessToken, *models.Authorization, *models.App, *models.User, error)
}

// TokenCache holds resolved token contexts; satisfied by *cache.Cache.
type TokenCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// minCacheTTL is the floor below which a token context is not worth
// caching; the next request goes back to the store.
const minCacheTTL = time.Second

// NewValidator builds a validator over the given store. The cache is
// optional; when present, valid token contexts are held for up to ttl,
// capped at the token's remaining lifetime, to keep the hot validation
// path off the database.
func NewValidator(store TokenResolver, c TokenCache, ttl time.Duration) *Validator {
	return &Validator{store: store, cache: c, ttl: ttl}
}

// Resolve extracts the bearer credential and produces the token context
// for this request. No side effects beyond cache population. Missing,
// unknown, expired, and revoked credentials all come back Valid=false
// with the status the check assigned.
func (v *Validator) Resolve(r *http.Request) *TokenContext {
	raw := extractBearerToken(r)
	if raw == "" {
		return &TokenContext{Valid: false, ResponseStatus: http.StatusUnauthorized}
	}

	hash := HashToken(raw)
	ctx := r.Context()

	if v.cache != nil {
		var tc TokenContext
		if err := v.cache.Get(ctx, cacheKey(hash), &tc); err == nil && tc.Valid {
			return &tc
		}
	}

	token, auth, app, user, err := v.store.ResolveToken(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return &TokenContext{Valid: false, ResponseStatus: http.StatusUnauthorized}
		}
		slog.Error("token resolution failed", "error", err)
		return &TokenContext{Valid: false, ResponseStatus: http.StatusInternalServerError}
	}

	if token.RevokedAt != nil {
		return &TokenContext{Valid: false, ResponseStatus: http.StatusUnauthorized}
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		return &TokenContext{Valid: false, ResponseStatus: http.StatusUnauthorized}
	}

	tc := &TokenContext{
		Valid:          true,
		ResponseStatus: http.StatusOK,
		Authorization:  auth,
		App:            app,
		User:           user,
	}

	if v.cache != nil {
		ttl := v.ttl
		if token.ExpiresAt != nil {
			if remaining := time.Until(*token.ExpiresAt); remaining < ttl {
				ttl = remaining
			}
		}
		if ttl >= minCacheTTL {
			if err := v.cache.Set(ctx, cacheKey(hash), tc, ttl); err != nil {
				slog.Warn("token cache write failed", "error", err)
			}
		}
	}

	return tc
}

// Invalidate drops a credential's cached context, e.g. when its token is
// revoked before the cache entry lapses.
func (v *Validator) Invalidate(ctx context.Context, raw string) error {
	if v.cache == nil {
		return nil
	}
	return v.cache.Delete(ctx, cacheKey(HashToken(raw)))
}

func cacheKey(hash string) string {
	return "oauth:token:" + hash
}

// HashToken maps the opaque credential to its stored lookup key. Tokens
// are never persisted in the clear.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
