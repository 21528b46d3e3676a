package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/aurelpetit/polychat/internal/api/middlewares"
	"github.com/aurelpetit/polychat/internal/core/llm"
	"github.com/aurelpetit/polychat/internal/models"
	"github.com/aurelpetit/polychat/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name"`
	Message     string `json:"message"`
	Mode        string `json:"mode"`
	FileID      string `json:"file_id"`
}

// Send handles POST /api/chat. The mode defaults to compare when omitted.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Mode == "" {
		req.Mode = llm.ModeCompare
	}

	msg, err := h.chat.Send(r.Context(), user.ID, services.ChatInput{
		SessionID:   req.SessionID,
		SessionName: req.SessionName,
		Message:     req.Message,
		Mode:        req.Mode,
		FileID:      req.FileID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Sessions handles GET /api/sessions.
func (h *ChatHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	sessions, err := h.chat.ListSessions(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

type renameRequest struct {
	SessionName string `json:"session_name"`
}

// Rename handles PUT /api/sessions/{sessionID}.
func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionName == "" {
		writeError(w, http.StatusBadRequest, "session_name is required")
		return
	}

	n, err := h.chat.RenameSession(r.Context(), user.ID, sessionID, req.SessionName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Session renamed successfully",
		"session_id":   sessionID,
		"session_name": req.SessionName,
	})
}

// DeleteSession handles DELETE /api/sessions/{sessionID}. Deleting a session
// that does not exist still succeeds and reports zero deletions.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	deleted, err := h.chat.DeleteSession(r.Context(), user.ID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Session deleted successfully",
		"session_id":       sessionID,
		"deleted_messages": deleted,
	})
}

// History handles GET /api/chat/history/{sessionID}, oldest turn first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	msgs, err := h.chat.History(r.Context(), user.ID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// ClearHistory handles DELETE /api/chat/history/{sessionID}.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	deleted, err := h.chat.DeleteSession(r.Context(), user.ID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "History cleared successfully",
		"session_id":       sessionID,
		"deleted_messages": deleted,
	})
}
