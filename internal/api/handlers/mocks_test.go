package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	middleware "github.com/aurelpetit/polychat/internal/api/middlewares"
	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/core/llm"
	"github.com/aurelpetit/polychat/internal/models"
	"github.com/aurelpetit/polychat/internal/services"
)

// memDB is an in-memory core.DbClient for handler tests.
type memDB struct {
	users    map[string]*models.User
	messages []models.ChatMessage
	files    map[string]*models.UploadedFile
	statuses []models.StatusCheck
}

func newMemDB() *memDB {
	return &memDB{
		users: map[string]*models.User{},
		files: map[string]*models.UploadedFile{},
	}
}

func (d *memDB) CreateUser(ctx context.Context, u *models.User) error {
	d.users[u.ID] = u
	return nil
}

func (d *memDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (d *memDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return d.users[id], nil
}

func (d *memDB) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	d.messages = append(d.messages, *msg)
	return nil
}

func (d *memDB) ListSessionMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range d.messages {
		if m.UserID == userID && m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (d *memDB) DeleteSessionMessages(ctx context.Context, userID, sessionID string) (int64, error) {
	var kept []models.ChatMessage
	var deleted int64
	for _, m := range d.messages {
		if m.UserID == userID && m.SessionID == sessionID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	d.messages = kept
	return deleted, nil
}

func (d *memDB) RenameSession(ctx context.Context, userID, sessionID, name string) (int64, error) {
	var n int64
	for i := range d.messages {
		if d.messages[i].UserID == userID && d.messages[i].SessionID == sessionID {
			d.messages[i].SessionName = name
			n++
		}
	}
	return n, nil
}

func (d *memDB) ListSessions(ctx context.Context, userID string) ([]models.SessionRow, error) {
	latest := map[string]*models.SessionRow{}
	for _, m := range d.messages {
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

func (d *memDB) CreateFile(ctx context.Context, f *models.UploadedFile) error {
	d.files[f.ID] = f
	return nil
}

func (d *memDB) GetFileByID(ctx context.Context, userID, fileID string) (*models.UploadedFile, error) {
	f, ok := d.files[fileID]
	if !ok || f.UserID != userID {
		return nil, nil
	}
	return f, nil
}

func (d *memDB) ListFilesByUser(ctx context.Context, userID string) ([]models.UploadedFile, error) {
	var out []models.UploadedFile
	for _, f := range d.files {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (d *memDB) DeleteFile(ctx context.Context, userID, fileID string) (int64, error) {
	f, ok := d.files[fileID]
	if !ok || f.UserID != userID {
		return 0, nil
	}
	delete(d.files, fileID)
	return 1, nil
}

func (d *memDB) InsertStatusCheck(ctx context.Context, s *models.StatusCheck) error {
	d.statuses = append(d.statuses, *s)
	return nil
}

func (d *memDB) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	if len(d.statuses) > limit {
		return d.statuses[:limit], nil
	}
	return d.statuses, nil
}

func (d *memDB) Close() error { return nil }

var _ core.DbClient = (*memDB)(nil)

// memStore is an in-memory core.ObjectStore.
type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (s *memStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.blobs[key] = data
	return "mem://" + key, nil
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.blobs[key], nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

var _ core.ObjectStore = (*memStore)(nil)

// echoProvider answers every prompt with a fixed text and records calls.
type echoProvider struct {
	name  string
	text  string
	calls atomic.Int64
}

func (p *echoProvider) Name() string { return p.name }

func (p *echoProvider) Ask(ctx context.Context, prompt string) core.Result {
	p.calls.Add(1)
	return core.Result{Text: p.text, Seconds: 0.1}
}

var _ core.Provider = (*echoProvider)(nil)

// testEnv bundles a fully wired router with its backing fakes. The router
// mirrors the production route table, but the JWT middleware is replaced by a
// stub that injects testUser directly.
type testEnv struct {
	db     *memDB
	store  *memStore
	router http.Handler

	chatgpt, gemini, deepseek, claude *echoProvider
}

var testUser = &models.User{
	ID:        "user-1",
	Username:  "alice",
	CreatedAt: time.Now().UTC(),
	IsActive:  true,
}

func newTestEnv() *testEnv {
	env := &testEnv{
		db:       newMemDB(),
		store:    newMemStore(),
		chatgpt:  &echoProvider{name: "chatgpt", text: "from chatgpt"},
		gemini:   &echoProvider{name: "gemini", text: "from gemini"},
		deepseek: &echoProvider{name: "deepseek", text: "from deepseek"},
		claude:   &echoProvider{name: "claude", text: "from claude"},
	}
	env.db.users[testUser.ID] = testUser

	gateway := llm.NewGateway(env.chatgpt, env.gemini, env.deepseek, env.claude)
	users := services.NewUserService(env.db, "secret", 24*time.Hour)
	files := services.NewFileService(env.db, env.store, gateway, 10<<20)
	chat := services.NewChatService(env.db, gateway, files)

	authHandler := NewAuthHandler(users)
	chatHandler := NewChatHandler(chat)
	fileHandler := NewFileHandler(files, 10<<20)
	statusHandler := NewStatusHandler(env.db)

	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), testUser)))
		})
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/status", statusHandler.List)
		r.Post("/status", statusHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(asUser)
			r.Get("/auth/me", authHandler.Me)
			r.Post("/chat", chatHandler.Send)
			r.Get("/chat/history/{sessionID}", chatHandler.History)
			r.Delete("/chat/history/{sessionID}", chatHandler.ClearHistory)
			r.Get("/sessions", chatHandler.Sessions)
			r.Put("/sessions/{sessionID}", chatHandler.Rename)
			r.Delete("/sessions/{sessionID}", chatHandler.DeleteSession)
			r.Post("/files/upload", fileHandler.Upload)
			r.Get("/files/list", fileHandler.List)
			r.Delete("/files/{fileID}", fileHandler.Delete)
			r.Post("/files/ask", fileHandler.Ask)
		})
	})
	env.router = r
	return env
}
