// Package httpapi is the HTTP boundary: routing, cookie handling, request
// authentication, and mapping of service errors to status codes. All business
// rules live in the services package.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avelins/cliptube/internal/logging"
	"github.com/avelins/cliptube/internal/server/config"
	"github.com/avelins/cliptube/internal/server/services"
)

// maxMultipartMemory bounds the in-memory part of multipart uploads; the rest
// spills to temp files.
const maxMultipartMemory = 32 << 20

type Server struct {
	config *config.Config
	logger logging.Logger
	users  *services.UserService
	media  *services.MediaService
	videos *services.VideoService
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ms *services.MediaService, vs *services.VideoService) *Server {
	return &Server{
		config: cfg,
		logger: l.With("module", "http_server"),
		users:  us,
		media:  ms,
		videos: vs,
	}
}

// Handler returns the root http.Handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/healthcheck", s.handleHealthCheck)

	mux.HandleFunc("POST /api/v1/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/users/refresh-token", s.handleRefreshToken)

	mux.Handle("POST /api/v1/users/logout", s.requireAuth(s.handleLogout))
	mux.Handle("POST /api/v1/users/change-password", s.requireAuth(s.handleChangePassword))
	mux.Handle("GET /api/v1/users/current-user", s.requireAuth(s.handleCurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", s.requireAuth(s.handleUpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", s.requireAuth(s.handleUpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", s.requireAuth(s.handleUpdateCover))

	mux.Handle("POST /api/v1/videos", s.requireAuth(s.handlePublishVideo))
	mux.Handle("GET /api/v1/videos", s.requireAuth(s.handleListOwnVideos))
	mux.HandleFunc("GET /api/v1/videos/{id}", s.handleGetVideo)

	return s.withRequestLogging(mux)
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.config.EndpointAddrHTTP,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "OK", "health check passed")
}
