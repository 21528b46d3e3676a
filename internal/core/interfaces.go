package core

import (
	"context"

	"github.com/aurelpetit/polychat/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListSessionMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error)
	DeleteSessionMessages(ctx context.Context, userID, sessionID string) (int64, error)
	RenameSession(ctx context.Context, userID, sessionID, name string) (int64, error)
	ListSessions(ctx context.Context, userID string) ([]models.SessionRow, error)

	CreateFile(ctx context.Context, f *models.UploadedFile) error
	GetFileByID(ctx context.Context, userID, fileID string) (*models.UploadedFile, error)
	ListFilesByUser(ctx context.Context, userID string) ([]models.UploadedFile, error)
	DeleteFile(ctx context.Context, userID, fileID string) (int64, error)

	InsertStatusCheck(ctx context.Context, s *models.StatusCheck) error
	ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error)

	Close() error
}

// ObjectStore defines interactions with the blob backend holding uploaded
// files. The local-disk store is the default; the S3 store is used when AWS
// credentials are configured.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Result is what every provider call produces. Provider failures are carried
// inside Text rather than as errors so that a multi-provider comparison can
// proceed when a single vendor is down.
type Result struct {
	Text    string  `json:"text"`
	Seconds float64 `json:"seconds"`
}

// Provider turns a prompt into one HTTPS call against a specific LLM vendor
// and normalizes the outcome. Ask never fails: a missing API key, a non-2xx
// status, a timeout or a transport error all come back as an explanatory
// Result with the elapsed time measured so far.
type Provider interface {
	Name() string
	Ask(ctx context.Context, prompt string) Result
}
