package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"hackball/internal/room"

	"github.com/go-chi/chi/v5"
)

// ServerConfig configures the public HTTP server.
type ServerConfig struct {
	Port          int
	MaxConns      int
	MaxConnsPerIP int
	StaticDir     string
}

// Server is the public HTTP server: lobby API, static client, and the
// websocket endpoint that feeds rooms.
type Server struct {
	registry    *room.Registry
	router      *chi.Mux
	ws          *WebSocketHandler
	rateLimiter *IPRateLimiter
	httpSrv     *http.Server
}

// NewServer wires the router, websocket handler and rate limiter.
// Nothing listens until Start; tests can exercise Router() with
// httptest without side effects.
func NewServer(cfg ServerConfig, registry *room.Registry, events *room.EventLog) *Server {
	s := &Server{
		registry:    registry,
		ws:          NewWebSocketHandler(registry, cfg.MaxConns, cfg.MaxConnsPerIP),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Registry:    registry,
		WebSocket:   s.ws,
		Events:      events,
		RateLimiter: s.rateLimiter,
		StaticDir:   cfg.StaticDir,
	})

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	log.Printf("server listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully drains the HTTP server and stops the rate limiter.
func (s *Server) Stop() {
	s.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
