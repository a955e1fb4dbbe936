// Package httpapi provides HTTP handlers for the conversational API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zetalabs/convo/internal/domain"
	"github.com/zetalabs/convo/internal/escalation"
	"github.com/zetalabs/convo/internal/orchestrator"
)

// Handler serves the message and escalation endpoints consumed by channel
// adapters and the admin console.
type Handler struct {
	orch        *orchestrator.Orchestrator
	escalations *escalation.Manager
}

// NewHandler creates a Handler.
func NewHandler(orch *orchestrator.Orchestrator, escalations *escalation.Manager) *Handler {
	return &Handler{orch: orch, escalations: escalations}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// HandleMessage processes one inbound message and returns the outbound
// action for the channel adapter to render.
//
// POST /v1/messages
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.Inbound
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.TenantID == "" || in.Channel == "" || in.UserID == "" {
		Error(w, http.StatusBadRequest, "tenant_id, channel and user_id are required")
		return
	}
	if in.Text == "" && len(in.Image) == 0 && in.FilterID == "" {
		Error(w, http.StatusBadRequest, "message carries no text, image or filter choice")
		return
	}

	action := h.orch.Handle(r.Context(), in)
	JSON(w, http.StatusOK, action)
}

type transitionRequest struct {
	Status     domain.EscalationStatus `json:"status"`
	AssignedTo string                  `json:"assigned_to,omitempty"`
	Notes      string                  `json:"notes,omitempty"`
}

// HandleTransition moves an escalation record to a new status.
//
// POST /v1/escalations/{id}/transition
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		Error(w, http.StatusBadRequest, "escalation id is required")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidEscalationStatus(req.Status) {
		Error(w, http.StatusBadRequest, "unknown status")
		return
	}

	e, err := h.escalations.Transition(r.Context(), id, req.Status, escalation.TransitionUpdate{
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
	})
	switch {
	case errors.Is(err, escalation.ErrNotFound):
		Error(w, http.StatusNotFound, "escalation not found")
		return
	case errors.Is(err, escalation.ErrInvalidTransition):
		Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		Error(w, http.StatusInternalServerError, "transition failed")
		return
	}

	JSON(w, http.StatusOK, e)
}
