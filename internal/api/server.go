// Package api serves predictions, metrics and charts over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Veraticus/newscheck/internal/config"
	"github.com/Veraticus/newscheck/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Deps is everything a Server needs. Checker is required; its predictor may
// hold no model, in which case the server runs degraded.
type Deps struct {
	Checker  *service.Checker
	Logger   *slog.Logger
	Registry *prometheus.Registry
	TLS      *tls.Config
	Now      func() time.Time
	Config   config.ServerConfig
}

// Server is the HTTP API.
type Server struct {
	checker     *service.Checker
	logger      *slog.Logger
	stats       *Stats
	instruments *instruments
	engine      *gin.Engine
	tls         *tls.Config
	now         func() time.Time
	charts      map[string][]byte
	cfg         config.ServerConfig
	chartsMu    sync.Mutex
}

// New builds a Server and its routes.
func New(deps Deps) (*Server, error) {
	if deps.Checker == nil {
		return nil, errors.New("api: checker is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	defaults := config.Default().Server
	if deps.Config.MaxBatch <= 0 {
		deps.Config.MaxBatch = defaults.MaxBatch
	}
	if deps.Config.MaxBodyBytes <= 0 {
		deps.Config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if len(deps.Config.CORSOrigins) == 0 {
		deps.Config.CORSOrigins = defaults.CORSOrigins
	}

	in, err := newInstruments(deps.Registry)
	if err != nil {
		return nil, fmt.Errorf("api: register metrics: %w", err)
	}

	s := &Server{
		checker:     deps.Checker,
		logger:      deps.Logger,
		stats:       NewStats(deps.Now),
		instruments: in,
		now:         deps.Now,
		tls:         deps.TLS,
		charts:      make(map[string][]byte),
		cfg:         deps.Config,
	}
	if deps.Checker.Loaded() {
		in.modelLoaded.Set(1)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger(), in.middleware(), s.limitBody())
	s.engine.Use(cors.New(corsConfig(deps.Config.CORSOrigins)))
	s.attachRoutes()

	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (s *Server) attachRoutes() {
	r := s.engine

	v1 := r.Group("/api")
	{
		v1.POST("/predict", s.predict)
		v1.POST("/predict-url", s.predictURL)
		v1.POST("/batch-predict", s.batchPredict)
		v1.GET("/metrics", s.metrics)
		v1.GET("/visualizations", s.visualizations)
		v1.GET("/visualizations/:name", s.visualization)
		v1.GET("/features", s.features)
		v1.GET("/stats", s.statsHandler)
		v1.GET("/health", s.health)
	}

	r.GET("/metrics", gin.WrapH(s.instruments.handler()))
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Stats returns the usage tracker.
func (s *Server) Stats() *Stats {
	return s.stats
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish. Connections are wrapped in
// TLS when the server was built with a TLS config.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.tls != nil {
		ln = tls.NewListener(ln, s.tls)
	}
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", ln.Addr().String(), "tls", s.tls != nil, "model_loaded", s.checker.Loaded())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("API server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
		}
		c.Next()
	}
}
