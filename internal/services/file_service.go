package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/core/extract"
	"github.com/aurelpetit/polychat/internal/core/llm"
	"github.com/aurelpetit/polychat/internal/models"
)

// allowedExtensions maps the upload allow-list to fallback MIME types.
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".json": "application/json",
	".xml":  "text/xml",
	".md":   "text/markdown",
}

// AllowedExtensionList returns the allow-list for error messages, sorted for
// stable output.
func AllowedExtensionList() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// FileService owns upload, listing, deletion and file-context questions.
type FileService struct {
	db      core.DbClient
	store   core.ObjectStore
	gateway *llm.Gateway
	maxSize int64
}

func NewFileService(db core.DbClient, store core.ObjectStore, gateway *llm.Gateway, maxSize int64) *FileService {
	return &FileService{db: db, store: store, gateway: gateway, maxSize: maxSize}
}

// Upload validates the extension against the allow-list, writes the payload
// under a fresh UUID-derived name and records the metadata.
func (s *FileService) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (*models.UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fallbackType, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: allowed extensions are %s",
			ErrDisallowedExtension, strings.Join(AllowedExtensionList(), ", "))
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if contentType == "" {
		contentType = fallbackType
	}

	fileID := uuid.NewString()
	storedName := fileID + ext

	location, err := s.store.Put(ctx, storedName, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	f := &models.UploadedFile{
		ID:               fileID,
		UserID:           userID,
		OriginalFilename: filepath.Base(filename),
		StoredFilename:   storedName,
		StoragePath:      location,
		Size:             int64(len(data)),
		ContentType:      contentType,
		AnalysisStatus:   "pending",
		UploadedAt:       time.Now().UTC(),
	}
	if err := s.db.CreateFile(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Get resolves a file owner-scoped; files of other users are reported as
// not found, never as forbidden.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*models.UploadedFile, error) {
	f, err := s.db.GetFileByID(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *FileService) List(ctx context.Context, userID string) ([]models.UploadedFile, error) {
	return s.db.ListFilesByUser(ctx, userID)
}

// Delete removes both the stored blob and the metadata row. A second delete
// of the same file reports not found.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	f, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.StoredFilename); err != nil {
		return err
	}
	n, err := s.db.DeleteFile(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ContextPrompt builds the effective prompt for a question about a file:
// extracted text, truncated to the context budget, wrapped with a fixed
// preamble and postamble naming the original file.
func (s *FileService) ContextPrompt(ctx context.Context, f *models.UploadedFile, question string) (string, error) {
	data, err := s.store.Get(ctx, f.StoredFilename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	text, err := extract.Extract(data, filepath.Ext(f.OriginalFilename))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	truncated := extract.Truncate(text, extract.DefaultContextLimit)

	return fmt.Sprintf(`Here is the content of the file %q:

--- FILE START ---
%s
--- FILE END ---

User question: %s

Please answer the question based on the file content above. If the question cannot be answered from the information in the file, say so clearly.`,
		f.OriginalFilename, truncated, question), nil
}

// AskResult is the outcome of a file-context question.
type AskResult struct {
	Response core.Result          `json:"response"`
	Question string               `json:"question"`
	File     *models.UploadedFile `json:"file_info"`
	AIModel  string               `json:"ai_model"`
}

// Ask sends a question about an owned file to one named provider. An unknown
// ai_model value is answered inline rather than rejected, matching the
// absorbed-error policy of the provider layer.
func (s *FileService) Ask(ctx context.Context, userID, fileID, question, aiModel string) (*AskResult, error) {
	f, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	out := &AskResult{Question: question, File: f, AIModel: aiModel}

	provider, ok := s.gateway.ByName(aiModel)
	if !ok {
		out.Response = core.Result{Text: fmt.Sprintf("Unsupported AI model: %s", aiModel), Seconds: 0}
		return out, nil
	}

	prompt, err := s.ContextPrompt(ctx, f, question)
	if err != nil {
		return nil, err
	}

	out.Response = provider.Ask(ctx, prompt)
	return out, nil
}
