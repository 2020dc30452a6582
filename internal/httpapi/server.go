// Package httpapi exposes the project and task services over REST.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/metrics"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"
)

// unmatchedRoute labels requests that matched no registered route.
const unmatchedRoute = "unmatched"

// Deps are the collaborators the server dispatches to.
type Deps struct {
	Projects *service.ProjectService
	Tasks    *service.TaskService
	Store    *store.Store
	Logger   *zap.Logger

	// Registry backs /metrics. Metrics should be registered on it.
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// Server provides the REST endpoints.
type Server struct {
	echo     *echo.Echo
	projects *service.ProjectService
	tasks    *service.TaskService
	store    *store.Store
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	config   model.ServerConfig
	routes   map[string]bool
}

// NewServer creates a new HTTP server.
func NewServer(cfg model.ServerConfig, deps Deps) (*Server, error) {
	if deps.Projects == nil || deps.Tasks == nil {
		return nil, fmt.Errorf("project and task services are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		projects: deps.Projects,
		tasks:    deps.Tasks,
		store:    deps.Store,
		logger:   deps.Logger,
		registry: deps.Registry,
		metrics:  deps.Metrics,
		config:   cfg,
		routes:   make(map[string]bool),
	}

	e.HTTPErrorHandler = s.handleError

	// Middleware
	// observe sits outside Recover so panicking requests are still logged
	// and counted.
	e.Use(s.observe)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: s.logPanic,
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/projects", s.handleListProjects)
	v1.POST("/projects", s.handleCreateProject)
	v1.GET("/projects/:projectId/tasks", s.handleListTasks)
	v1.POST("/projects/:projectId/tasks", s.handleCreateTask)
	v1.PUT("/tasks/:taskId", s.handleUpdateTask, s.validateBody(taskStatusValidator))
	v1.DELETE("/tasks/:taskId", s.handleDeleteTask)

	for _, r := range s.echo.Routes() {
		s.routes[r.Path] = true
	}
}

// observe logs every request and records its metrics.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Render now so the logged status is the one sent.
			c.Error(err)
		}
		duration := time.Since(start)

		route := c.Path()
		if !s.routes[route] {
			route = unmatchedRoute
		}
		status := c.Response().Status

		s.metrics.ObserveRequest(c.Request().Method, route, status, duration)
		s.logger.Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)

		return nil
	}
}

// logPanic records a recovered panic. The returned error goes on to the
// error handler.
func (s *Server) logPanic(c echo.Context, err error, stack []byte) error {
	s.logger.Error("panic recovered",
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
		zap.ByteString("stack", stack),
	)
	return err
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
