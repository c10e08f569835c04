package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/myusa/platform/internal/notification"
	"github.com/myusa/platform/internal/oauth"
)

type NotificationHandler struct {
	svc *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type createNotificationRequest struct {
	Subject          string     `json:"subject"`
	Body             string     `json:"body,omitempty"`
	NotificationType string     `json:"notification_type"`
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
}

// Create lets an authorized app push a notification to the token's user.
// The app and user come from the gate's token context, never the body.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tc := oauth.FromContext(r.Context())
	if tc == nil || tc.User == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	createReq := notification.CreateRequest{
		UserID:           tc.User.ID,
		Subject:          req.Subject,
		Body:             req.Body,
		NotificationType: req.NotificationType,
		ReceivedAt:       receivedAt,
	}
	if tc.App != nil {
		createReq.AppID = &tc.App.ID
	}

	n, err := h.svc.Create(r.Context(), createReq)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := oauth.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}

	onlyUnviewed := r.URL.Query().Get("unviewed") == "true"
	notifications, err := h.svc.ListByUser(r.Context(), user.ID, onlyUnviewed)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (h *NotificationHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	id, user, ok := notificationTarget(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkViewed(r.Context(), id, user); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "viewed"})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, user, ok := notificationTarget(w, r)
	if !ok {
		return
	}
	if err := h.svc.SoftDelete(r.Context(), id, user); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func notificationTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification ID"})
		return uuid.Nil, uuid.Nil, false
	}
	user := oauth.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return uuid.Nil, uuid.Nil, false
	}
	return id, user.ID, true
}
