// Package server exposes search, statistics and ticket browsing as a JSON API
// for the dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/metrics"
	"github.com/Kavirubc/ticketrag/internal/pipeline"
	"github.com/Kavirubc/ticketrag/internal/tickets"
)

// Loader builds a fresh corpus, e.g. by reopening the index from disk
type Loader func(ctx context.Context) (*corpus.Corpus, error)

// Options configures a Server
type Options struct {
	Config        *config.Config
	Holder        *corpus.Holder
	Processor     *pipeline.Processor
	Loader        Loader // nil disables POST /api/reload
	EmbedderDims  int
	GeneratorName string
	OnReload      func() // called after a successful swap
	Logger        *zap.Logger
}

// Server is the dashboard HTTP API
type Server struct {
	cfg           *config.Config
	holder        *corpus.Holder
	processor     *pipeline.Processor
	loader        Loader
	embedderDims  int
	generatorName string
	onReload      func()
	categorizer   *tickets.Categorizer
	logger        *zap.Logger

	reloadMu sync.Mutex
	router   *mux.Router
}

// New creates a server and registers its routes
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:           opts.Config,
		holder:        opts.Holder,
		processor:     opts.Processor,
		loader:        opts.Loader,
		embedderDims:  opts.EmbedderDims,
		generatorName: opts.GeneratorName,
		onReload:      opts.OnReload,
		categorizer:   tickets.NewCategorizer(opts.Config.Categories),
		logger:        logger,
	}
	if c := s.holder.Load(); c != nil {
		metrics.CorpusTickets.Set(float64(c.Len()))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(requestID)
	r.Use(recoverPanics(s.logger))
	r.Use(accessLog(s.logger))

	proxies, err := parseTrustedProxies(s.cfg.Server.TrustedProxies)
	if err != nil {
		// Validate rejects these; forwarding headers are then ignored
		s.logger.Warn("ignoring trusted proxies", zap.Error(err))
		proxies = nil
	}
	limiter := newRateLimiter(s.cfg.RateLimits.HTTPPerMinute, s.cfg.RateLimits.HTTPBurst, proxies)
	r.Use(limiter.middleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/tickets", s.handleListTickets).Methods(http.MethodGet)
	api.HandleFunc("/tickets/{id}", s.handleGetTicket).Methods(http.MethodGet)
	api.HandleFunc("/reload", s.handleReload).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.router = r
}

// Handler returns the router wrapped with CORS
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
	})
	return c.Handler(s.router)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.GenerationTimeout()*time.Duration(s.cfg.Retry.Attempts) + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard API listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down dashboard API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Reload builds a new corpus with the loader and publishes it. In-flight
// queries finish against the corpus they started with.
func (s *Server) Reload(ctx context.Context) (*corpus.Corpus, error) {
	if s.loader == nil {
		return nil, errReloadDisabled
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	c, err := s.loader(ctx)
	if err == nil && s.embedderDims > 0 {
		err = c.CheckDimensions(s.embedderDims)
	}
	if err != nil {
		metrics.CorpusReloads.WithLabelValues("error").Inc()
		return nil, err
	}

	s.holder.Swap(c)
	metrics.CorpusReloads.WithLabelValues("success").Inc()
	metrics.CorpusTickets.Set(float64(c.Len()))
	if s.onReload != nil {
		s.onReload()
	}

	s.logger.Info("corpus reloaded",
		zap.String("source", c.Source),
		zap.Int("tickets", c.Len()),
		zap.Uint64("generation", c.Generation()))
	return c, nil
}

var errReloadDisabled = errors.New("reload is not configured")
