package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aurelpetit/polychat/internal/auth"
	"github.com/aurelpetit/polychat/internal/core"
	"github.com/aurelpetit/polychat/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// JWT validates the Authorization header, resolves the embedded user and
// attaches it to the request context. Missing, malformed and expired tokens
// are all rejected identically; so is a valid token naming an unknown or
// deactivated user.
func JWT(secret string, db core.DbClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := auth.ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user, err := db.GetUserByID(r.Context(), userID)
			if err != nil {
				http.Error(w, "authentication lookup failed", http.StatusInternalServerError)
				return
			}
			if user == nil || !user.IsActive {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser attaches an authenticated user to the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser returns the authenticated user attached by JWT.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}
