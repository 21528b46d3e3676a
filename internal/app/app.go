package app

import (
	"context"
	"fmt"
	"log"

	"github.com/aurelpetit/polychat/internal/config"
	"github.com/aurelpetit/polychat/internal/core"
	db "github.com/aurelpetit/polychat/internal/core/database"
	"github.com/aurelpetit/polychat/internal/core/llm"
	"github.com/aurelpetit/polychat/internal/core/objectstore"
	"github.com/aurelpetit/polychat/internal/services"
)

// App owns every long-lived dependency: the database client, the object
// store, the provider gateway and the HTTP server built on top of them.
type App struct {
	Config  *config.Config
	DB      core.DbClient
	Gateway *llm.Gateway
	Server  *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	dbClient, err := db.NewDatabaseClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var store core.ObjectStore
	if cfg.UseS3() {
		s3store, err := objectstore.NewS3Store(ctx, cfg.AwsAccessKey, cfg.AwsSecretKey, cfg.AwsRegion, cfg.BucketName)
		if err != nil {
			dbClient.Close()
			return nil, fmt.Errorf("connect object store: %w", err)
		}
		store = s3store
	} else {
		local, err := objectstore.NewLocalStore(cfg.UploadDir)
		if err != nil {
			dbClient.Close()
			return nil, fmt.Errorf("prepare upload dir: %w", err)
		}
		store = local
		log.Printf("Storing uploads on local disk under %q", cfg.UploadDir)
	}

	gateway := llm.NewDefaultGateway(ctx, llm.Keys{
		OpenAI:   cfg.OpenAIKey,
		Gemini:   cfg.GeminiKey,
		DeepSeek: cfg.DeepSeekKey,
		Claude:   cfg.ClaudeKey,
	}, cfg.ProviderTimeout)

	users := services.NewUserService(dbClient, cfg.JWTSecret, cfg.TokenTTL)
	files := services.NewFileService(dbClient, store, gateway, cfg.MaxFileSize)
	chat := services.NewChatService(dbClient, gateway, files)

	return &App{
		Config:  cfg,
		DB:      dbClient,
		Gateway: gateway,
		Server:  NewServer(cfg, dbClient, users, chat, files),
	}, nil
}

// Close releases the app's long-lived resources.
func (a *App) Close() {
	if err := a.Gateway.Close(); err != nil {
		log.Printf("close gateway: %v", err)
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("close database: %v", err)
	}
}
