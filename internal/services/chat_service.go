package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/core/llm"
	"github.com/aurelpetit/polychat/internal/models"
)

const defaultSessionName = "New conversation"

// ChatInput is one chat turn as submitted by the client.
type ChatInput struct {
	SessionID   string
	SessionName string
	Message     string
	Mode        string
	FileID      string
}

// ChatService is the orchestrator: it resolves optional file context, fans
// the prompt out to one or all provider adapters, persists the turn and
// returns it. It keeps no state across requests.
type ChatService struct {
	db      core.DbClient
	gateway *llm.Gateway
	files   *FileService
}

func NewChatService(db core.DbClient, gateway *llm.Gateway, files *FileService) *ChatService {
	return &ChatService{db: db, gateway: gateway, files: files}
}

// Send processes one chat turn. Validation and file resolution happen before
// any provider is contacted; provider failures after that point are absorbed
// into the response text and never fail the request.
func (s *ChatService) Send(ctx context.Context, userID string, in ChatInput) (*models.ChatMessage, error) {
	single, isSingle := s.gateway.ByName(in.Mode)
	if in.Mode != llm.ModeCompare && !isSingle {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, in.Mode)
	}

	var file *models.UploadedFile
	if in.FileID != "" {
		f, err := s.files.Get(ctx, userID, in.FileID)
		if err != nil {
			return nil, err
		}
		file = f
	}

	prompt := in.Message
	if file != nil {
		p, err := s.files.ContextPrompt(ctx, file, in.Message)
		if err != nil {
			return nil, err
		}
		prompt = p
	}

	sessionName := in.SessionName
	if sessionName == "" {
		sessionName = defaultSessionName
	}

	msg := &models.ChatMessage{
		ID:          uuid.NewString(),
		UserID:      userID,
		SessionID:   in.SessionID,
		SessionName: sessionName,
		Message:     in.Message,
		Mode:        in.Mode,
		Timestamp:   time.Now().UTC(),
	}
	if in.FileID != "" {
		msg.FileID = &in.FileID
	}

	if in.Mode == llm.ModeCompare {
		results := s.fanOut(ctx, prompt)
		for i, p := range s.gateway.Providers() {
			setResult(msg, p.Name(), results[i])
		}
	} else {
		setResult(msg, single.Name(), single.Ask(ctx, prompt))
	}

	if err := s.db.InsertChatMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// fanOut fires all adapters concurrently and waits for every one of them.
// Results stay associated with providers by position regardless of completion
// order. A panic in one adapter's goroutine is converted to an inline error
// result for that provider only.
func (s *ChatService) fanOut(ctx context.Context, prompt string) []core.Result {
	providers := s.gateway.Providers()
	results := make([]core.Result, len(providers))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = core.Result{Text: fmt.Sprintf("Error: %v", r), Seconds: 0}
				}
			}()
			results[i] = p.Ask(ctx, prompt)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func setResult(msg *models.ChatMessage, provider string, res core.Result) {
	text, secs := res.Text, res.Seconds
	switch provider {
	case llm.ModeChatGPT:
		msg.ChatGPTResponse, msg.ChatGPTTime = &text, &secs
	case llm.ModeGemini:
		msg.GeminiResponse, msg.GeminiTime = &text, &secs
	case llm.ModeDeepSeek:
		msg.DeepSeekResponse, msg.DeepSeekTime = &text, &secs
	case llm.ModeClaude:
		msg.ClaudeResponse, msg.ClaudeTime = &text, &secs
	}
}

// ListSessions groups the user's messages by session and synthesizes a
// preview label from the newest turn, preferring provider responses in
// chatgpt, gemini, deepseek, claude order.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	rows, err := s.db.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]models.ChatSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, models.ChatSession{
			SessionID:    row.SessionID,
			SessionName:  sessionPreview(row),
			CreatedAt:    row.LatestTimestamp,
			UpdatedAt:    row.LatestTimestamp,
			MessageCount: row.MessageCount,
		})
	}
	return sessions, nil
}

func sessionPreview(row models.SessionRow) string {
	message := row.LatestMessage
	if message == "" {
		message = defaultSessionName
	}

	aiResponse := ""
	for _, r := range []*string{row.ChatGPTResponse, row.GeminiResponse, row.DeepSeekResponse, row.ClaudeResponse} {
		if r != nil && *r != "" {
			aiResponse = *r
			break
		}
	}

	var preview string
	if aiResponse != "" {
		preview = fmt.Sprintf("You: %s... | AI: %s...", clip(message, 30), clip(aiResponse, 30))
	} else {
		preview = fmt.Sprintf("You: %s...", clip(message, 50))
	}
	if len([]rune(preview)) > 80 {
		preview = clip(preview, 80) + "..."
	}
	return preview
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// History returns a session's messages oldest-first, owner-scoped.
func (s *ChatService) History(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	return s.db.ListSessionMessages(ctx, userID, sessionID)
}

// DeleteSession removes all and only the messages of that session owned by
// the user. Deleting an already-deleted session reports zero messages.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) (int64, error) {
	return s.db.DeleteSessionMessages(ctx, userID, sessionID)
}

// RenameSession updates the stored session name on every message of the
// session.
func (s *ChatService) RenameSession(ctx context.Context, userID, sessionID, name string) (int64, error) {
	return s.db.RenameSession(ctx, userID, sessionID, name)
}
