package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aurelpetit/polychat/internal/auth"
	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/models"
)

// UserService handles registration, login and token issuance.
type UserService struct {
	db        core.DbClient
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(db core.DbClient, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{db: db, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	existing, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates the user and issues a session token. A wrong password
// and an unknown username produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.NewToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
