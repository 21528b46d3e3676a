package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/aurelpetit/polychat/internal/api/middlewares"
	"github.com/aurelpetit/polychat/internal/models"
	"github.com/aurelpetit/polychat/internal/services"
)

type FileHandler struct {
	files   *services.FileService
	maxSize int64
}

func NewFileHandler(files *services.FileService, maxSize int64) *FileHandler {
	return &FileHandler{files: files, maxSize: maxSize}
}

// Upload handles POST /api/files/upload, a multipart form with one "file"
// part. The body is capped slightly above the configured limit so oversized
// uploads fail with a clear error instead of a connection reset.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeServiceError(w, services.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "a \"file\" form field is required")
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	f, err := h.files.Upload(r.Context(), user.ID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "File uploaded successfully",
		"file_id":  f.ID,
		"filename": f.OriginalFilename,
		"size":     f.Size,
		"status":   f.AnalysisStatus,
	})
}

// List handles GET /api/files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	files, err := h.files.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if files == nil {
		files = []models.UploadedFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

// Delete handles DELETE /api/files/{fileID}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	fileID := chi.URLParam(r, "fileID")

	if err := h.files.Delete(r.Context(), user.ID, fileID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "File deleted successfully",
		"file_id": fileID,
	})
}

type askRequest struct {
	FileID   string `json:"file_id"`
	Question string `json:"question"`
	AIModel  string `json:"ai_model"`
}

// Ask handles POST /api/files/ask, a single-provider question grounded on an
// uploaded file. The provider defaults to chatgpt.
func (h *FileHandler) Ask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileID == "" {
		writeError(w, http.StatusBadRequest, "file_id is required")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.AIModel == "" {
		req.AIModel = "chatgpt"
	}

	out, err := h.files.Ask(r.Context(), user.ID, req.FileID, req.Question, req.AIModel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
