// Package dashboard serves the password-gated analysis API and CSV
// downloads behind the SignalBoard UI.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalBoard/internal/collector"
	"SignalBoard/internal/metrics"
	"SignalBoard/internal/model"
	"SignalBoard/internal/strategy"
)

const (
	DefaultTimeout      = 30 * time.Second
	ServiceName         = "signalboard"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
	SessionCookieName   = "signalboard_session"
)

// Analyzer runs one fetch-and-compute pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, q collector.Query, p strategy.Params) (*model.Analysis, error)
}

// Options configures a Server.
type Options struct {
	Password   string
	TOTPSecret string
	SessionTTL time.Duration
	Gatherer   prometheus.Gatherer // nil means the default registry
	Logger     *slog.Logger
	Now        func() time.Time
}

// Server handles dashboard HTTP requests.
type Server struct {
	analyzer Analyzer
	auth     *Authenticator
	sessions *SessionStore
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer creates a dashboard server.
func NewServer(a Analyzer, m *metrics.Metrics, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		analyzer: a,
		auth:     NewAuthenticator(opts.Password, opts.TOTPSecret, opts.Now),
		sessions: NewSessionStore(opts.SessionTTL, opts.Now),
		metrics:  m,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Routes configures all routes.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(s.logger, s.metrics))
	router.Use(gin.Recovery())

	router.GET("/healthz", s.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	router.POST("/login", s.Login)
	router.POST("/logout", s.Logout)

	api := router.Group("/api", s.requireSession())
	api.GET("/analysis", s.GetAnalysis)
	api.GET("/export/data.csv", s.ExportData)
	api.GET("/export/signals.csv", s.ExportSignals)

	return router
}

// HTTPServer wraps the routes in an http.Server with timeouts.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
