package api

import (
	"net/http"
	"time"

	"hackball/internal/room"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig contains the dependencies needed to construct the HTTP
// router. Designed for dependency injection so tests can build a router
// around an httptest server without starting background workers.
type RouterConfig struct {
	// Registry is the room registry (required).
	Registry *room.Registry

	// WebSocket is the websocket handler mounted at /ws (required).
	WebSocket *WebSocketHandler

	// Events is the match event log used for /api/stats. May be nil.
	Events *room.EventLog

	// RateLimiter is an optional pre-configured rate limiter. If nil,
	// one is created from RateLimitConfig (or the defaults).
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed origins when non-nil.
	CORSOrigins []string

	// StaticDir is the directory served at /. Defaults to "./web".
	StaticDir string

	// DisableLogging drops the request logger, useful in benchmarks.
	DisableLogging bool
}

type routerHandlers struct {
	registry *room.Registry
	ws       *WebSocketHandler
	events   *room.EventLog
	limiter  *IPRateLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It is pure: no goroutines, no listeners, safe for httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS so abusive clients are rejected early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
		corsOrigins = append(corsOrigins, AllowedOrigins...)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		registry: cfg.Registry,
		ws:       cfg.WebSocket,
		events:   cfg.Events,
		limiter:  rateLimiter,
	}

	r.Get("/health", h.handleHealth)
	r.Handle("/ws", cfg.WebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", h.handleGetRooms)
		r.Get("/stats", h.handleGetStats)
	})

	// Landing page and client assets.
	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = "./web"
	}
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	return r
}

// metricsMiddleware records request latency and status per route pattern.
// The pattern, not the raw path, keeps metric cardinality bounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				pattern = p
			}
		}
		RecordRequest(r.Method, pattern, ww.Status(), time.Since(start))
	})
}
