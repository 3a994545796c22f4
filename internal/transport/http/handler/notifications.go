package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bombers-push/internal/application/notification"
	"github.com/bombers-push/internal/domain"
	"github.com/bombers-push/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles notification authoring, sending and read-state endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Create authors a notification; presence of scheduledAt queues it.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Send triggers one send pass. Per-device failures do not fail the request;
// they are visible in the receipts listing.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Feed lists the most recently sent notifications.
func (h *NotificationHandler) Feed(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.Feed(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// Receipts lists per-device delivery outcomes for one notification.
func (h *NotificationHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.svc.Receipts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

// Open marks a notification opened by the caller's user.
func (h *NotificationHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		NotificationID string `json:"notificationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NotificationID == "" {
		writeError(w, http.StatusBadRequest, "notificationId is required")
		return
	}
	if err := h.svc.MarkOpened(r.Context(), claims.UserID, body.NotificationID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification opened"})
}
