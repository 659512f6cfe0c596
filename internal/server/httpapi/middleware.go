package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avelins/cliptube/internal/common"
	"github.com/avelins/cliptube/internal/server/models"
)

type contextKey string

const userContextKey contextKey = "current_user"

// bearerToken extracts the access token from the request: the access cookie
// takes precedence, then the Authorization header.
func bearerToken(r *http.Request) string {
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// requireAuth resolves the access token to an account and stores the
// projection in the request context. Requests without a valid token get 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFrom returns the authenticated account stored by requireAuth.
func userFrom(ctx context.Context) *models.PublicUser {
	user, _ := ctx.Value(userContextKey).(*models.PublicUser)
	return user
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
