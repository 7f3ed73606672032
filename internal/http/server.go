package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"revenueqa/internal/cache"
	"revenueqa/internal/log"
	"revenueqa/internal/middleware/ratelimit"
	"revenueqa/internal/middleware/security"
	"revenueqa/internal/middleware/trace"
	"revenueqa/internal/revenue"
	"revenueqa/internal/services"
	appweb "revenueqa/web"
)

// QueryService is what the handlers need from services.QueryService.
type QueryService interface {
	Ready() bool
	Ask(ctx context.Context, question string) (services.Answer, error)
	Reload(ctx context.Context) (*revenue.Snapshot, error)
	Stats() services.Stats
}

// CacheStats exposes answer cache counters on /metrics.
type CacheStats interface {
	Stats() cache.Stats
}

type Server struct {
	http.Server
	templates *template.Template
	queries   QueryService
	answers   CacheStats
	logger    *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   *appMetrics
	reloadTimeout time.Duration
	shutdownOnce sync.Once
}

type appMetrics struct {
	questions atomic.Int64
	failures  atomic.Int64
	reloads   atomic.Int64
	uptime    time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithAnswerCache reports the answer cache on /metrics.
func WithAnswerCache(c CacheStats) Option {
	return func(s *Server) { s.answers = c }
}

// WithRateLimit replaces the default limiter settings.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) {
		s.rateLimiter.Stop()
		s.rateLimiter = ratelimit.NewLimiter(cfg)
	}
}

// WithReloadTimeout bounds POST /reload.
func WithReloadTimeout(d time.Duration) Option {
	return func(s *Server) { s.reloadTimeout = d }
}

// NewServer configures routes, middleware and templates.
func NewServer(addr string, queries QueryService, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		queries:          queries,
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
		reloadTimeout:     time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /api/answer", s.handleAPIAnswer)
	mux.HandleFunc("POST /api/answer", s.handleAPIAnswer)
	mux.HandleFunc("POST /reload", s.handleReload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var handler http.Handler = mux
	handler = log.Middleware(logger, trace.RequestIDFromRequest)(handler)
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = detector.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentRateLimit)
	ErrorResponse(http.StatusTooManyRequests, "Too many questions. Please wait a moment and try again.").Write(w)
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
