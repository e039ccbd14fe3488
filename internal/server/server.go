package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Config struct {
	Addr    string // e.g. "0.0.0.0:8081"
	Auth    AuthConfig
	Store   *UploadStore
	Logger  *zap.Logger
	Metrics *Metrics
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}

	// Paths match exactly as sent: no cleaning, no trailing-slash
	// redirects, no percent-decoding.
	r := mux.NewRouter()
	r.SkipClean(true)
	r.UseEncodedPath()
	r.Handle("/login", cfg.Auth.loginHandler(cfg.Metrics)).Methods(http.MethodPost)
	r.Handle("/uploads", cfg.uploadHandler()).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFoundHandler)

	// Wrapped outside the router so unmatched requests are logged too:
	// requestID -> security headers -> logging -> router
	var handler http.Handler = r
	handler = cfg.loggingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s, logger: cfg.Logger}
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after a clean Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
