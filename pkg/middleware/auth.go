package middleware

import (
	"net/http"
	"strings"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthSession validates the bearer session token and injects the user
// identity into the request context.
func AuthSession(sessions repository.SessionRepository, users repository.UserRepository, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				utils.ResponseUnauthorized(w, "Invalid authorization header")
				return
			}

			// Session tokens are UUIDs; a malformed token can never match a
			// session and would only error against the UUID column.
			if _, err := uuid.Parse(token); err != nil {
				utils.ResponseUnauthorized(w, "Session expired or invalid")
				return
			}

			session, err := sessions.FindValid(r.Context(), token)
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if session == nil {
				utils.ResponseUnauthorized(w, "Session expired or invalid")
				return
			}

			user, err := users.FindByID(r.Context(), session.UserID)
			if err != nil {
				log.Error("user lookup failed", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil || !user.IsActive {
				utils.ResponseUnauthorized(w, "Account is not active")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, string(user.Role))
			ctx = utils.SetTokenContext(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly allows only users with the admin role. Must run after
// AuthSession.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := utils.GetRoleFromContext(r.Context())
		if !ok {
			utils.ResponseUnauthorized(w, "Unauthorized")
			return
		}

		if role != string(entity.RoleAdmin) {
			utils.ResponseForbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
