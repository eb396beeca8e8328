package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"gavel/internal/platform/config"
	"gavel/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi and the stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer builds a server listening on cfg PORT (default :3000)
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("PORT", ":3000")
	m := chi.NewRouter()
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the Router seam over the internal mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until it stops
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")
	err := s.srv.ListenAndServe()
	if err == stdhttp.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
