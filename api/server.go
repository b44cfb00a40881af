package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"

	"github.com/openalpha/fundmarket/api/handlers"
	"github.com/openalpha/fundmarket/api/middleware"
	"github.com/openalpha/fundmarket/api/readmodel"
	"github.com/openalpha/fundmarket/api/websocket"
	"github.com/openalpha/fundmarket/metrics"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	config     *Config
	logger     log.Logger

	store     *readmodel.Store
	hub       *websocket.Hub
	collector *metrics.Collector

	poolHandler *handlers.PoolHandler
	rateLimiter *middleware.RateLimiter

	startedAt time.Time
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	DisableRateLimit bool // For testing purposes
	RateLimit        *middleware.RateLimitConfig
	Hub              *websocket.HubConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		RateLimit:    middleware.DefaultRateLimitConfig(),
		Hub:          websocket.DefaultHubConfig(),
	}
}

// NewServer creates a new API server over store. The returned hub must be
// registered as a keeper listener to stream live events.
func NewServer(config *Config, store *readmodel.Store, collector *metrics.Collector, logger log.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if collector == nil {
		collector = metrics.GetCollector()
	}

	s := &Server{
		config:      config,
		logger:      logger.With("module", "api"),
		store:       store,
		hub:         websocket.NewHub(config.Hub, collector),
		collector:   collector,
		poolHandler: handlers.NewPoolHandler(store),
		startedAt:   time.Now(),
	}
	if !config.DisableRateLimit {
		s.rateLimiter = middleware.NewRateLimiter(config.RateLimit)
	}
	return s
}

// Hub returns the websocket hub
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Router builds the HTTP handler with the middleware chain applied
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	// Health check (support both /health and /v1/health)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/v1/health", s.handleHealth).Methods("GET")

	s.poolHandler.RegisterRoutes(r)

	r.HandleFunc("/ws", s.hub.ServeWS)
	r.Handle("/metrics", metrics.Handler())

	r.Use(middleware.MetricsMiddleware(s.collector))

	// CORS -> RateLimit -> Router
	var handler http.Handler = r
	if s.rateLimiter != nil {
		handler = middleware.RateLimitMiddleware(s.rateLimiter)(handler)
	}
	return corsMiddleware(handler)
}

// Start runs the hub and serves HTTP until Stop is called
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.hub.Run(ctx)

	s.logger.Info("API server starting", "addr", addr, "rate_limit", s.rateLimiter != nil)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"uptime_seconds":%d,"pools":%d,"ws_clients":%d}`,
		time.Now().Unix(),
		int64(time.Since(s.startedAt).Seconds()),
		len(s.store.Pools()),
		s.hub.GetClientCount(),
	)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
