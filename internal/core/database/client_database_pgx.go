package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/models"
)

// DatabaseClient is the pgx-backed implementation of core.DbClient. One
// pooled *sql.DB is opened at process start and closed at shutdown; handlers
// never open their own connections.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, databaseURL string) (core.DbClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, username, password_hash, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.IsActive)
	return err
}

func (c *DatabaseClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `
		SELECT id, username, password_hash, created_at, is_active
		FROM users WHERE username = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, username))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, username, password_hash, created_at, is_active
		FROM users WHERE id = $1
	`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Chat messages

func (c *DatabaseClient) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages
			(id, user_id, session_id, session_name, message,
			 chatgpt_response, gemini_response, deepseek_response, claude_response,
			 chatgpt_response_time, gemini_response_time, deepseek_response_time, claude_response_time,
			 mode, file_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := c.db.ExecContext(ctx, q,
		msg.ID, msg.UserID, msg.SessionID, msg.SessionName, msg.Message,
		msg.ChatGPTResponse, msg.GeminiResponse, msg.DeepSeekResponse, msg.ClaudeResponse,
		msg.ChatGPTTime, msg.GeminiTime, msg.DeepSeekTime, msg.ClaudeTime,
		msg.Mode, msg.FileID, msg.Timestamp)
	return err
}

func (c *DatabaseClient) ListSessionMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, user_id, session_id, session_name, message,
		       chatgpt_response, gemini_response, deepseek_response, claude_response,
		       chatgpt_response_time, gemini_response_time, deepseek_response_time, claude_response_time,
		       mode, file_id, created_at
		FROM chat_messages
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.SessionID, &m.SessionName, &m.Message,
			&m.ChatGPTResponse, &m.GeminiResponse, &m.DeepSeekResponse, &m.ClaudeResponse,
			&m.ChatGPTTime, &m.GeminiTime, &m.DeepSeekTime, &m.ClaudeTime,
			&m.Mode, &m.FileID, &m.Timestamp,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteSessionMessages(ctx context.Context, userID, sessionID string) (int64, error) {
	const q = `
		DELETE FROM chat_messages
		WHERE user_id = $1 AND session_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, userID, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *DatabaseClient) RenameSession(ctx context.Context, userID, sessionID, name string) (int64, error) {
	const q = `
		UPDATE chat_messages
		SET session_name = $3
		WHERE user_id = $1 AND session_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, userID, sessionID, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListSessions aggregates a user's messages by session_id. Each row carries
// the newest message of the session plus the per-session message count;
// rows come back newest-session-first.
func (c *DatabaseClient) ListSessions(ctx context.Context, userID string) ([]models.SessionRow, error) {
	const q = `
		SELECT session_id, message,
		       chatgpt_response, gemini_response, deepseek_response, claude_response,
		       created_at, message_count
		FROM (
			SELECT DISTINCT ON (session_id)
			       session_id, message,
			       chatgpt_response, gemini_response, deepseek_response, claude_response,
			       created_at,
			       COUNT(*) OVER (PARTITION BY session_id) AS message_count
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY session_id, created_at DESC
		) latest
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(
			&s.SessionID, &s.LatestMessage,
			&s.ChatGPTResponse, &s.GeminiResponse, &s.DeepSeekResponse, &s.ClaudeResponse,
			&s.LatestTimestamp, &s.MessageCount,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Uploaded files

func (c *DatabaseClient) CreateFile(ctx context.Context, f *models.UploadedFile) error {
	if f == nil {
		return errors.New("nil file")
	}
	const q = `
		INSERT INTO uploaded_files
			(id, user_id, original_filename, stored_filename, storage_path,
			 file_size, content_type, analysis_status, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := c.db.ExecContext(ctx, q,
		f.ID, f.UserID, f.OriginalFilename, f.StoredFilename, f.StoragePath,
		f.Size, f.ContentType, f.AnalysisStatus, f.UploadedAt)
	return err
}

// GetFileByID is owner-scoped: a file belonging to another user is
// indistinguishable from a nonexistent one.
func (c *DatabaseClient) GetFileByID(ctx context.Context, userID, fileID string) (*models.UploadedFile, error) {
	const q = `
		SELECT id, user_id, original_filename, stored_filename, storage_path,
		       file_size, content_type, analysis_status, uploaded_at
		FROM uploaded_files
		WHERE id = $1 AND user_id = $2
	`
	var f models.UploadedFile
	err := c.db.QueryRowContext(ctx, q, fileID, userID).Scan(
		&f.ID, &f.UserID, &f.OriginalFilename, &f.StoredFilename, &f.StoragePath,
		&f.Size, &f.ContentType, &f.AnalysisStatus, &f.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *DatabaseClient) ListFilesByUser(ctx context.Context, userID string) ([]models.UploadedFile, error) {
	const q = `
		SELECT id, user_id, original_filename, stored_filename, storage_path,
		       file_size, content_type, analysis_status, uploaded_at
		FROM uploaded_files
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UploadedFile
	for rows.Next() {
		var f models.UploadedFile
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.OriginalFilename, &f.StoredFilename, &f.StoragePath,
			&f.Size, &f.ContentType, &f.AnalysisStatus, &f.UploadedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteFile(ctx context.Context, userID, fileID string) (int64, error) {
	const q = `
		DELETE FROM uploaded_files
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, fileID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Status checks

func (c *DatabaseClient) InsertStatusCheck(ctx context.Context, s *models.StatusCheck) error {
	if s == nil {
		return errors.New("nil status check")
	}
	const q = `
		INSERT INTO status_checks (id, client_name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := c.db.ExecContext(ctx, q, s.ID, s.ClientName, s.Timestamp)
	return err
}

func (c *DatabaseClient) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	const q = `
		SELECT id, client_name, created_at
		FROM status_checks
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusCheck
	for rows.Next() {
		var s models.StatusCheck
		if err := rows.Scan(&s.ID, &s.ClientName, &s.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
