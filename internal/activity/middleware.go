package activity

import (
	"fmt"
	"net/http"

	"github.com/myusa/platform/internal/oauth"
)

// Middleware records one audit row per call for the named controller and
// action. The write runs deferred so every exit path is covered: allowed
// calls, gate denials further down the chain, and handler panics. App and
// user come from whatever the token validator resolved, possibly nothing.
//
// A failed write panics; the surrounding recoverer turns that into a 500.
func Middleware(svc *Service, controller, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				app := oauth.AppFromContext(r.Context())
				user := oauth.UserFromContext(r.Context())
				if err := svc.Record(r.Context(), app, user, controller, action); err != nil {
					panic(fmt.Sprintf("activity log write failed: %v", err))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
