package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/models"
)

const statusListLimit = 100

type StatusHandler struct {
	db core.DbClient
}

func NewStatusHandler(db core.DbClient) *StatusHandler {
	return &StatusHandler{db: db}
}

type statusRequest struct {
	ClientName string `json:"client_name"`
}

// Create handles POST /api/status.
func (h *StatusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientName == "" {
		writeError(w, http.StatusBadRequest, "client_name is required")
		return
	}

	check := &models.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: req.ClientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := h.db.InsertStatusCheck(r.Context(), check); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, check)
}

// List handles GET /api/status, newest first, capped at 100 entries.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	checks, err := h.db.ListStatusChecks(r.Context(), statusListLimit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if checks == nil {
		checks = []models.StatusCheck{}
	}
	writeJSON(w, http.StatusOK, checks)
}
