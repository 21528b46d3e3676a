package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// ChatMessage is one user turn plus the responses of every provider that was
// invoked for it. Columns for providers that were not invoked stay NULL.
// Rows are append-only; they are removed only when a whole session or its
// history is deleted.
type ChatMessage struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	SessionID        string    `db:"session_id" json:"session_id"`
	SessionName      string    `db:"session_name" json:"session_name"`
	Message          string    `db:"message" json:"message"`
	ChatGPTResponse  *string   `db:"chatgpt_response" json:"chatgpt_response"`
	GeminiResponse   *string   `db:"gemini_response" json:"gemini_response"`
	DeepSeekResponse *string   `db:"deepseek_response" json:"deepseek_response"`
	ClaudeResponse   *string   `db:"claude_response" json:"claude_response"`
	ChatGPTTime      *float64  `db:"chatgpt_response_time" json:"chatgpt_response_time"`
	GeminiTime       *float64  `db:"gemini_response_time" json:"gemini_response_time"`
	DeepSeekTime     *float64  `db:"deepseek_response_time" json:"deepseek_response_time"`
	ClaudeTime       *float64  `db:"claude_response_time" json:"claude_response_time"`
	Mode             string    `db:"mode" json:"mode"` // "compare", "chatgpt", "gemini", "deepseek", "claude"
	FileID           *string   `db:"file_id" json:"file_id"`
	Timestamp        time.Time `db:"created_at" json:"timestamp"`
}

// ChatSession is a derived view: it is computed by grouping a user's messages
// by session_id, never stored on its own. A session exists iff at least one
// message references it.
type ChatSession struct {
	SessionID    string    `json:"session_id"`
	SessionName  string    `json:"session_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// SessionRow is the raw per-session aggregation the database returns; the
// chat service turns it into a ChatSession with a synthesized preview name.
type SessionRow struct {
	SessionID        string
	LatestMessage    string
	ChatGPTResponse  *string
	GeminiResponse   *string
	DeepSeekResponse *string
	ClaudeResponse   *string
	LatestTimestamp  time.Time
	MessageCount     int
}

// UploadedFile is the metadata record for one uploaded document. The storage
// path is internal and never serialized to clients.
type UploadedFile struct {
	ID               string    `db:"id" json:"file_id"`
	UserID           string    `db:"user_id" json:"user_id"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	StoredFilename   string    `db:"stored_filename" json:"filename"`
	StoragePath      string    `db:"storage_path" json:"-"`
	Size             int64     `db:"file_size" json:"file_size"`
	ContentType      string    `db:"content_type" json:"file_type"`
	AnalysisStatus   string    `db:"analysis_status" json:"analysis_status"` // pending | analyzed
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// StatusCheck is an unauthenticated health/telemetry record.
type StatusCheck struct {
	ID         string    `db:"id" json:"id"`
	ClientName string    `db:"client_name" json:"client_name"`
	Timestamp  time.Time `db:"created_at" json:"timestamp"`
}
