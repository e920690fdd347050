// Package httpapi exposes the session operations over HTTP/JSON. Routes live
// under /api/v1/auth; /metrics and /healthz sit next to them.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avolkovs/healthtrack/internal/logging"
	"github.com/avolkovs/healthtrack/internal/server/auth"
	"github.com/avolkovs/healthtrack/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionManager is the service surface the handlers need.
type SessionManager interface {
	Register(ctx context.Context, p services.RegisterParams) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, subjectEmail string) error
}

type Server struct {
	address  string
	logger   logging.Logger
	sessions SessionManager
	codec    *auth.TokenCodec
}

func NewServer(a string, l logging.Logger, sessions SessionManager, codec *auth.TokenCodec) (*Server, error) {
	return &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		sessions: sessions,
		codec:    codec,
	}, nil
}

// Router builds the full route tree. Split out from Run so tests can mount
// it on an httptest.Server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)
			r.Post("/logout", s.handleLogout)
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
