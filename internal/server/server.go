package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/opsboard-dev/opsd/internal/config"
	"github.com/opsboard-dev/opsd/internal/monitor"
	"github.com/opsboard-dev/opsd/internal/sources"
)

type Server struct {
	cfg       *config.Config
	manifest  *sources.Manifest
	monitor   *monitor.Monitor
	httpSrv   *http.Server
	startTime time.Time
}

func New(cfg *config.Config, manifest *sources.Manifest, mon *monitor.Monitor) *Server {
	return &Server{
		cfg:       cfg,
		manifest:  manifest,
		monitor:   mon,
		startTime: time.Now(),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Unauthenticated
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authenticated routes
	authed := http.NewServeMux()
	authed.HandleFunc("GET /services", s.handleListServices)
	authed.HandleFunc("GET /logs/{service}", s.handleLogs)

	// Streaming routes also accept the read-only ?token= for browsers.
	streamed := http.NewServeMux()
	streamed.HandleFunc("GET /logs/{service}/stream", s.handleLogStreamSSE)
	streamed.HandleFunc("GET /logs/{service}/ws", s.handleLogStreamWS)

	mux.Handle("GET /logs/{service}/stream", s.streamAuthMiddleware(streamed))
	mux.Handle("GET /logs/{service}/ws", s.streamAuthMiddleware(streamed))
	mux.Handle("/services", s.authMiddleware(authed))
	mux.Handle("/logs/", s.authMiddleware(authed))

	var handler http.Handler = mux
	handler = loggingMiddleware(handler)
	handler = recoveryMiddleware(handler)

	return handler
}

func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Server.Listen,
		Handler: s.routes(),
		// No write timeout: SSE and WebSocket sessions are long-lived.
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	log.Printf("opsd listening on %s (dev=%v, sources=%d)", s.cfg.Server.Listen, s.cfg.Dev, s.manifest.Len())
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
