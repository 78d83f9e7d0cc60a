// Package server provides the HTTP serving shell around the dispatcher.
//
// The shell is a gin engine whose NoRoute handler delegates every API
// request to the middleware-wrapped dispatcher. Operational endpoints
// (health, readiness, metrics, version, route listing) are static gin
// routes outside the dispatch table, so they bypass admission and CORS.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/middleware"
	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/router"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions
var ginModeOnce sync.Once

// BuildInfo identifies the running binary on /version.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// Server owns the http.Server lifecycle and the admission pool around a
// dispatcher.
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	registry   *router.Registry
	pool       *middleware.Pool
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     observability.Logger
	build      BuildInfo
	running    atomic.Bool
	ready      atomic.Bool
}

// Option is a functional option for the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics attaches a metrics bundle: requests are measured and the
// /metrics endpoint is mounted.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithTracer adds a per-request span around the dispatcher.
func WithTracer(tracer *observability.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithPool bounds dispatch concurrency with an admission pool. The pool
// is drained during Stop.
func WithPool(pool *middleware.Pool) Option {
	return func(s *Server) {
		s.pool = pool
	}
}

// WithBuildInfo sets the identity reported on /version.
func WithBuildInfo(build BuildInfo) Option {
	return func(s *Server) {
		s.build = build
	}
}

// New assembles the serving shell: body cap, operational routes, and the
// NoRoute delegation to the middleware-wrapped dispatcher. The registry
// should be frozen before Start.
func New(cfg config.ServerConfig, registry *router.Registry, dispatcher http.Handler, opts ...Option) *Server {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   observability.NopLogger(),
		build:    BuildInfo{Version: "dev"},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	if cfg.MaxBodyBytes > 0 {
		s.engine.Use(s.bodyLimitMiddleware())
	}
	s.registerOps()
	s.engine.NoRoute(gin.WrapH(s.chain(dispatcher)))

	return s
}

// chain wraps the dispatcher with the ambient middleware: request ID
// outermost, then tracing, access log, metrics, recovery, and admission
// innermost so capacity rejections are still logged and measured.
func (s *Server) chain(dispatcher http.Handler) http.Handler {
	handler := dispatcher
	if s.pool != nil {
		handler = middleware.Admission(s.pool)(handler)
	}
	handler = middleware.Recovery(s.logger)(handler)
	if s.metrics != nil {
		handler = observability.MetricsMiddleware(s.metrics)(handler)
	}
	handler = middleware.AccessLog(s.logger)(handler)
	if s.tracer != nil {
		handler = observability.TracingMiddleware(s.tracer)(handler)
	}
	return middleware.RequestID()(handler)
}

// bodyLimitMiddleware caps request bodies before the binder reads them.
func (s *Server) bodyLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
		c.Next()
	}
}

// Handler returns the engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background. It returns once
// the listener is bound, so a failed bind is reported synchronously.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadTimeout:       s.cfg.ReadTimeout.Duration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout.Duration(),
		IdleTimeout:       s.cfg.IdleTimeout.Duration(),
		MaxHeaderBytes:    1 << 20,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.ready.Store(true)

	s.logger.Info("http server started",
		observability.String("address", ln.Addr().String()),
		observability.Int("routes", len(s.registry.Routes())),
	)

	go s.serve(ln)

	return nil
}

// serve runs until Shutdown or a listener failure.
func (s *Server) serve(ln net.Listener) {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("http server error", observability.Error(err))
	}
	s.running.Store(false)
}

// Stop flips readiness, stops accepting and drains in-flight requests,
// then waits for the admission pool to empty. In-flight requests are not
// forcibly aborted before ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	s.ready.Store(false)
	s.logger.Info("stopping http server")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout.Duration())
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if s.pool != nil {
		if err := s.pool.Drain(ctx); err != nil {
			return fmt.Errorf("failed to drain admission pool: %w", err)
		}
	}

	s.running.Store(false)
	s.logger.Info("http server stopped")

	return nil
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}
