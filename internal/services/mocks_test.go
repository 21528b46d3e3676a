package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/models"
)

// fakeDB is an in-memory core.DbClient for service tests.
type fakeDB struct {
	users    map[string]*models.User
	messages []models.ChatMessage
	files    map[string]*models.UploadedFile
	statuses []models.StatusCheck
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users: map[string]*models.User{},
		files: map[string]*models.UploadedFile{},
	}
}

func (f *fakeDB) CreateUser(ctx context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeDB) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeDB) ListSessionMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID && m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteSessionMessages(ctx context.Context, userID, sessionID string) (int64, error) {
	var kept []models.ChatMessage
	var deleted int64
	for _, m := range f.messages {
		if m.UserID == userID && m.SessionID == sessionID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return deleted, nil
}

func (f *fakeDB) RenameSession(ctx context.Context, userID, sessionID, name string) (int64, error) {
	var n int64
	for i := range f.messages {
		if f.messages[i].UserID == userID && f.messages[i].SessionID == sessionID {
			f.messages[i].SessionName = name
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) ListSessions(ctx context.Context, userID string) ([]models.SessionRow, error) {
	latest := map[string]*models.SessionRow{}
	for _, m := range f.messages {
		if m.UserID != userID {
			continue
		}
		row, ok := latest[m.SessionID]
		if !ok {
			row = &models.SessionRow{SessionID: m.SessionID}
			latest[m.SessionID] = row
		}
		row.MessageCount++
		if !m.Timestamp.Before(row.LatestTimestamp) {
			row.LatestMessage = m.Message
			row.ChatGPTResponse = m.ChatGPTResponse
			row.GeminiResponse = m.GeminiResponse
			row.DeepSeekResponse = m.DeepSeekResponse
			row.ClaudeResponse = m.ClaudeResponse
			row.LatestTimestamp = m.Timestamp
		}
	}
	out := make([]models.SessionRow, 0, len(latest))
	for _, row := range latest {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeDB) CreateFile(ctx context.Context, file *models.UploadedFile) error {
	f.files[file.ID] = file
	return nil
}

func (f *fakeDB) GetFileByID(ctx context.Context, userID, fileID string) (*models.UploadedFile, error) {
	file, ok := f.files[fileID]
	if !ok || file.UserID != userID {
		return nil, nil
	}
	return file, nil
}

func (f *fakeDB) ListFilesByUser(ctx context.Context, userID string) ([]models.UploadedFile, error) {
	var out []models.UploadedFile
	for _, file := range f.files {
		if file.UserID == userID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteFile(ctx context.Context, userID, fileID string) (int64, error) {
	file, ok := f.files[fileID]
	if !ok || file.UserID != userID {
		return 0, nil
	}
	delete(f.files, fileID)
	return 1, nil
}

func (f *fakeDB) InsertStatusCheck(ctx context.Context, s *models.StatusCheck) error {
	f.statuses = append(f.statuses, *s)
	return nil
}

func (f *fakeDB) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	if len(f.statuses) > limit {
		return f.statuses[:limit], nil
	}
	return f.statuses, nil
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

// fakeStore is an in-memory core.ObjectStore.
type fakeStore struct {
	blobs map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string][]byte{}}
}

func (s *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.blobs[key] = data
	return "mem://" + key, nil
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.blobs[key], nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

var _ core.ObjectStore = (*fakeStore)(nil)

// fakeProvider records prompts and answers with a fixed result.
type fakeProvider struct {
	name    string
	text    string
	seconds float64
	delay   time.Duration
	calls   atomic.Int64
	prompt  atomic.Value
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Ask(ctx context.Context, prompt string) core.Result {
	p.calls.Add(1)
	p.prompt.Store(prompt)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return core.Result{Text: p.text, Seconds: p.seconds}
}

func (p *fakeProvider) lastPrompt() string {
	v, _ := p.prompt.Load().(string)
	return v
}

var _ core.Provider = (*fakeProvider)(nil)
