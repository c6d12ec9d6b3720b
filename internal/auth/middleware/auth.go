// Package middleware authenticates API requests and enforces role checks
// at the route level.
package middleware

import (
	"net/http"
	"strings"

	"github.com/mesias/mswdo-backend/internal/auth/jwt"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/httputil"
)

// Authenticate validates the bearer token and attaches the caller to the
// request context.
func Authenticate(manager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := manager.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				httputil.Error(w, err)
				return
			}

			ctx := actor.WithActor(r.Context(), &actor.Actor{
				ID:   claims.UserID,
				Role: claims.UserType,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := actor.FromContext(r.Context())
			if a == nil {
				httputil.Error(w, errors.Unauthorized("not authenticated"))
				return
			}
			for _, role := range roles {
				if a.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.Error(w, errors.Forbidden("insufficient role"))
		})
	}
}
