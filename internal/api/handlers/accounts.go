package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/myusa/platform/internal/account"
	"github.com/myusa/platform/internal/oauth"
)

type AccountHandler struct {
	svc *account.Service
}

func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req account.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotApproved),
			errors.Is(err, account.ErrWeakPassword),
			errors.Is(err, account.ErrInvalidEmail),
			errors.Is(err, account.ErrTermsNotAccepted):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

// Activity returns the signed-in user's audit trail grouped by day.
func (h *AccountHandler) Activity(w http.ResponseWriter, r *http.Request) {
	user := oauth.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}

	grouped, err := h.svc.GroupedActivityLogs(r.Context(), user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": grouped})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := oauth.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}

	if err := h.svc.DeleteUser(r.Context(), user.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
