package handlers

import (
	"net/http"

	"github.com/myusa/platform/internal/account"
	"github.com/myusa/platform/internal/oauth"
)

// ProfileHandler serves the scoped profile resource for the token's
// resource owner.
type ProfileHandler struct {
	accounts *account.Service
}

func NewProfileHandler(accounts *account.Service) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := oauth.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uid":        user.UID,
		"email":      user.Email,
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
	})
}
