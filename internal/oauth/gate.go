package oauth

import (
	"encoding/json"
	"net/http"
)

// DefaultNoScopeMessage is the denial body used when a route does not
// override it.
const DefaultNoScopeMessage = "You do not have permission to read that user's profile."

// Decision is the outcome of gating one request. Denials carry the status
// and message the gate writes; the guarded handler never runs on a deny.
type Decision struct {
	Allowed bool
	Status  int
	Message string
}

// Authorize applies the gate's rules to an already-resolved token context.
// An empty requestedScope means token validity alone suffices. A missing
// authorization is treated as an empty granted set.
func Authorize(tc *TokenContext, requestedScope, noScopeMessage string) Decision {
	if tc == nil || !tc.Valid {
		status := http.StatusUnauthorized
		if tc != nil && tc.ResponseStatus != 0 {
			status = tc.ResponseStatus
		}
		return Decision{Allowed: false, Status: status, Message: "Invalid token"}
	}

	if requestedScope == "" {
		return Decision{Allowed: true}
	}

	granted := ""
	if tc.Authorization != nil {
		granted = tc.Authorization.Scope
	}
	if !ScopeGranted(requestedScope, granted) {
		if noScopeMessage == "" {
			noScopeMessage = DefaultNoScopeMessage
		}
		return Decision{Allowed: false, Status: http.StatusForbidden, Message: noScopeMessage}
	}

	return Decision{Allowed: true}
}

// Gate guards API routes. Resolve runs once per request and threads the
// token context; Require and RequireToken enforce the decision.
type Gate struct {
	validator *Validator
}

func NewGate(v *Validator) *Gate {
	return &Gate{validator: v}
}

// Resolve attaches the token context for downstream middleware and
// handlers. It never denies on its own; activity logging depends on it
// running for every call, valid token or not.
func (g *Gate) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := g.validator.Resolve(r)
		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), tc)))
	})
}

// RequireToken admits any request carrying a valid token.
func (g *Gate) RequireToken() func(http.Handler) http.Handler {
	return g.require("", "")
}

// Require admits requests whose authorization grants the named scope,
// with the default no-scope message.
func (g *Gate) Require(scope string) func(http.Handler) http.Handler {
	return g.require(scope, "")
}

// RequireWithMessage is Require with a route-specific denial message.
func (g *Gate) RequireWithMessage(scope, noScopeMessage string) func(http.Handler) http.Handler {
	return g.require(scope, noScopeMessage)
}

func (g *Gate) require(scope, noScopeMessage string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Authorize(FromContext(r.Context()), scope, noScopeMessage)
			if !d.Allowed {
				writeDenial(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDenial(w http.ResponseWriter, d Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.Status)
	json.NewEncoder(w).Encode(map[string]string{"message": d.Message})
}
