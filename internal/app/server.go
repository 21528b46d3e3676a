package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aurelpetit/polychat/internal/api/handlers"
	middleware "github.com/aurelpetit/polychat/internal/api/middlewares"
	"github.com/aurelpetit/polychat/internal/config"
	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/services"
)

type Server struct {
	httpServer *http.Server
}

// NewServer builds the router and binds every handler. Auth and status
// endpoints are public; everything else sits behind the JWT middleware.
func NewServer(
	cfg *config.Config,
	db core.DbClient,
	users *services.UserService,
	chat *services.ChatService,
	files *services.FileService,
) *Server {
	authHandler := handlers.NewAuthHandler(users)
	chatHandler := handlers.NewChatHandler(chat)
	fileHandler := handlers.NewFileHandler(files, cfg.MaxFileSize)
	statusHandler := handlers.NewStatusHandler(db)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Multi-LLM chat API","status":"running"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/status", statusHandler.List)
		r.Post("/status", statusHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWT(cfg.JWTSecret, db))

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

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
