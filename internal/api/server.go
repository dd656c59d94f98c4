// Package api serves identifier parsing over HTTP.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FocuswithJustin/pubid/core/catalog"
	"github.com/FocuswithJustin/pubid/core/pubid"
	"github.com/FocuswithJustin/pubid/internal/logging"
)

// Server holds the handlers' dependencies. The catalog is optional;
// without it the citation and run endpoints answer 503.
type Server struct {
	cfg     Config
	parser  pubid.Interface
	catalog *catalog.Store
	started time.Time
}

// NewServer returns a server parsing with p and reading lookups from
// store, which may be nil.
func NewServer(cfg Config, p pubid.Interface, store *catalog.Store) *Server {
	if p == nil {
		p = pubid.NewParser(nil)
	}
	return &Server{cfg: cfg, parser: p, catalog: store, started: time.Now()}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = securityHeaders(handler)

	if s.cfg.RateLimitRequests > 0 {
		rlCfg := RateLimiterConfig{
			RequestsPerMinute: s.cfg.RateLimitRequests,
			BurstSize:         s.cfg.RateLimitBurst,
		}
		if rlCfg.BurstSize == 0 {
			rlCfg.BurstSize = 10
		}
		handler = NewRateLimiter(rlCfg).Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rlCfg.RequestsPerMinute,
			"burst_size", rlCfg.BurstSize)
	}

	handler = cors(s.cfg.AllowedOrigins, handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/parse", s.handleParse)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	mux.HandleFunc("GET /api/v1/citations", s.handleLookup)
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleRun)
	return mux
}

// Start serves on cfg.Port until the listener fails.
func Start(cfg Config, p pubid.Interface, store *catalog.Store) error {
	s := NewServer(cfg, p, store)
	logging.ServerStartup("rest_api", "http", cfg.Port,
		"catalog", store != nil,
		"websocket_path", "/api/v1/stream")

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError),
	}
	return srv.ListenAndServe()
}
