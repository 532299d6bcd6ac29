package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/easel-ai/easel/internal/auth"
	"github.com/easel-ai/easel/internal/log"
)

// defaultStreamTimeout bounds one chat turn end to end.
const defaultStreamTimeout = 60 * time.Second

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger    log.Logger
	Auth      auth.Provider // Required
	Runner    Runner        // Required
	Chats     ChatStore     // Required
	Documents DocumentStore // Required
	Scraped   ScrapedStore  // Required
	DB        Pinger        // Optional: nil makes /ready report 503

	TrustProxy    bool          // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateBurst     int           // Rate limiter burst size per IP (0 = default 60)
	StreamTimeout time.Duration // Chat turn ceiling (0 = default 60s)
}

// Server is the HTTP API server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Auth == nil {
		return nil, errors.New("auth provider is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if cfg.Chats == nil {
		return nil, errors.New("chat store is required")
	}
	if cfg.Documents == nil {
		return nil, errors.New("document store is required")
	}
	if cfg.Scraped == nil {
		return nil, errors.New("scraped-record store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	timeout := cfg.StreamTimeout
	if timeout <= 0 {
		timeout = defaultStreamTimeout
	}

	ch := &chatHandler{
		runner:        cfg.Runner,
		chats:         cfg.Chats,
		auth:          cfg.Auth,
		logger:        logger,
		streamTimeout: timeout,
	}
	dh := &documentHandler{documents: cfg.Documents, auth: cfg.Auth, logger: logger}
	sh := &scrapedHandler{scraped: cfg.Scraped, auth: cfg.Auth, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", ch.send)
	mux.HandleFunc("DELETE /api/chat", ch.delete)
	mux.HandleFunc("GET /api/document", dh.get)
	mux.HandleFunc("POST /api/scraped-data", sh.save)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack, outermost first:
	//   Recovery → Logging → RateLimit → Routes
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux separates health probes from the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.HandleFunc("GET /ready", readiness(cfg.DB, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
