// Package http serves the ledger as a JSON API on echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finfamily/internal/cache"
	"finfamily/internal/core"
	"finfamily/internal/ledger"
	"finfamily/internal/log"
	"finfamily/internal/ports"
)

// Observer receives request and cache measurements.
type Observer interface {
	ObserveHTTPRequest(method, route string, code int, elapsed time.Duration)
	SetSummaryCacheItems(n int)
}

// Deps are the collaborators of the API. Ledger may be nil when the process
// started without the configuration its backend needs; ConfigErr then says
// what is missing and data routes answer 503.
type Deps struct {
	Ledger         *ledger.Store
	ConfigErr      *core.ConfigurationError
	Advisor        ports.Advisor
	Cache          *cache.SummaryCache
	Observer       Observer
	MetricsHandler http.Handler
	Logger         *log.Logger

	Backend           string
	AdvisorConfigured bool
	ExportConfigured  bool
	Language          string
	RatePerSecond     float64
	Burst             int
	Now               func() time.Time
}

type Server struct {
	echo    *echo.Echo
	deps    Deps
	limiter *rateLimiter
	logger  *log.Logger
	now     func() time.Time
}

func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewSummaryCache(64, 5*time.Minute)
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = promhttp.Handler()
	}
	if deps.Ledger == nil && deps.ConfigErr == nil {
		deps.ConfigErr = &core.ConfigurationError{Missing: []string{"DATA_BACKEND"}}
	}

	s := &Server{
		echo:    echo.New(),
		deps:    deps,
		limiter: newRateLimiter(deps.RatePerSecond, deps.Burst),
		logger:  deps.Logger.WithComponent(log.ComponentHTTP),
		now:     deps.Now,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = errorHandler
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.Use(middleware.RequestID())
	e.Use(log.EchoMiddleware(s.deps.Logger))
	e.Use(middleware.Recover())
	e.Use(securityHeaders())
	e.Use(rejectProbes(s.logger))
	e.Use(s.observe)

	e.GET("/healthz", s.handleHealth)
	e.GET("/readyz", s.handleReady)
	e.GET("/metrics", echo.WrapHandler(s.deps.MetricsHandler))

	api := e.Group("/api", s.limiter.middleware(s.deps.Logger))
	api.GET("/status", s.handleStatus)

	data := api.Group("", s.requireLedger)
	data.GET("/categories", s.handleListCategories)
	data.PUT("/categories", s.handleReplaceCategories)
	data.GET("/transactions", s.handleListTransactions)
	data.POST("/transactions", s.handleCreateTransactions)
	data.PUT("/transactions/:id", s.handleUpdateTransaction)
	data.DELETE("/transactions/:id", s.handleDeleteTransaction)
	data.GET("/summary", s.handleSummary)
	data.POST("/insights", s.handleInsights)
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr and blocks until Shutdown is called.
func (s *Server) Start(addr string) error {
	go s.limiter.startCleanup()
	s.logger.Info("HTTP server listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := s.echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.echo.Shutdown(ctx)
}

// requireLedger answers 503 while the backend is not configured.
func (s *Server) requireLedger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.deps.Ledger == nil {
			return s.deps.ConfigErr
		}
		return next(c)
	}
}

func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.deps.Observer == nil {
			return next(c)
		}
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		if err != nil {
			status, _ = responseFor(err)
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.deps.Observer.ObserveHTTPRequest(c.Request().Method, route, status, time.Since(start))
		return err
	}
}
