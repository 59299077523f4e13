package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/voyagen/tvgate/internal/config"
	"github.com/voyagen/tvgate/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server holds dependencies for the HTTP API.
type Server struct {
	auth     *service.AuthService
	playlist *service.PlaylistService
	admin    *service.AdminService
	cfg      *config.Config
	log      *zap.Logger
	mux      *http.ServeMux
	handler  http.Handler
}

// New creates a Server and registers routes.
func New(auth *service.AuthService, pl *service.PlaylistService, admin *service.AdminService, cfg *config.Config, log *zap.Logger) *Server {
	srv := &Server{
		auth:     auth,
		playlist: pl,
		admin:    admin,
		cfg:      cfg,
		log:      log.Named("http"),
		mux:      http.NewServeMux(),
	}
	srv.routes()
	srv.handler = withCORS(srv.withLogging(srv.withRecovery(srv.mux)))
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /playlist", s.handlePlaylist)
	s.mux.HandleFunc("GET /admin/users", s.handleListUsers)

	s.mux.HandleFunc("GET /docs", handleSwaggerUI)
	s.mux.HandleFunc("GET /docs/openapi.yaml", handleOpenAPISpec)
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown", zap.Error(err))
		}
	}()

	s.log.Info("listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}
