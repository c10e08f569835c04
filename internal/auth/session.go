package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/myusa/platform/internal/account"
	"github.com/myusa/platform/internal/oauth"
)

// Claims is the first-party session token payload. Third-party API
// clients use OAuth2 bearer tokens instead; this middleware guards the
// account-facing routes (tasks, notifications, activity).
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

type SessionMiddleware struct {
	secret   []byte
	accounts *account.Service
}

func NewSessionMiddleware(secret string, accounts *account.Service) *SessionMiddleware {
	return &SessionMiddleware{secret: []byte(secret), accounts: accounts}
}

func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractBearerToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid user ID in token")
			return
		}

		user, err := m.accounts.GetUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "user not found")
			return
		}

		// Ride the same context slot the OAuth gate uses so downstream
		// code has one way to ask "who is this".
		ctx := oauth.WithToken(r.Context(), &oauth.TokenContext{Valid: true, User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
