package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/myusa/platform/internal/task"
)

// TaskItemHandler mirrors the original form-driven checklist endpoints:
// mutate, then bounce back to the referring page.
type TaskItemHandler struct {
	svc *task.Service
}

func NewTaskItemHandler(svc *task.Service) *TaskItemHandler {
	return &TaskItemHandler{svc: svc}
}

type updateTaskItemRequest struct {
	Completed bool `json:"completed"`
}

// Update accepts `{"completed": true}` as a JSON body or a boolean-ish
// `completed` form value. Completing the last pending item marks the
// owning task complete as a side effect.
func (h *TaskItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task item ID"})
		return
	}

	var completed bool
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req updateTaskItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		completed = req.Completed
	} else {
		v := r.FormValue("completed")
		completed = v == "true" || v == "1"
	}

	if err := h.svc.CompleteItem(r.Context(), id, completed); err != nil {
		if errors.Is(err, task.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task item not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	redirectBack(w, r)
}

func (h *TaskItemHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task item ID"})
		return
	}

	if err := h.svc.DestroyItem(r.Context(), id); err != nil {
		if errors.Is(err, task.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task item not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	redirectBack(w, r)
}

func redirectBack(w http.ResponseWriter, r *http.Request) {
	ref := r.Referer()
	if ref == "" {
		ref = "/"
	}
	http.Redirect(w, r, ref, http.StatusSeeOther)
}
