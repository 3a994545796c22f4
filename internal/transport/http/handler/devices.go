package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bombers-push/internal/application/device"
	"github.com/bombers-push/internal/domain"
	"github.com/bombers-push/internal/transport/http/middleware"
)

// DeviceHandler handles device registration endpoints.
type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler { return &DeviceHandler{svc: svc} }

// Register upserts a device keyed by its push token.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// List returns the caller's registered devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	devices, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
