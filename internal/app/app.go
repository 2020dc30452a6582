// Package app assembles the store, services and HTTP server from
// configuration and runs them until the context ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/httpapi"
	"github.com/nhle/taskboard/internal/metrics"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/seed"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"
)

// App is a fully wired taskboard instance.
type App struct {
	config   *model.AppConfig
	logger   *zap.Logger
	store    *store.Store
	projects *service.ProjectService
	tasks    *service.TaskService
	server   *httpapi.Server
}

// New builds the application and loads the configured seed data into
// the store. No traffic is served until Run.
func New(ctx context.Context, cfg *model.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st := store.New()
	if err := seed.Bootstrap(ctx, st, logger, seed.FromConfig(cfg.Seed, logger)...); err != nil {
		return nil, fmt.Errorf("seeding store: %w", err)
	}

	projects := service.NewProjectService(st, logger.Named("projects"), m)
	tasks := service.NewTaskService(st, logger.Named("tasks"), m, service.TaskOptions{
		RequireProject: cfg.Tasks.RequireProject,
		StrictStatus:   cfg.Tasks.StrictStatus,
	})

	srv, err := httpapi.NewServer(cfg.Server, httpapi.Deps{
		Projects: projects,
		Tasks:    tasks,
		Store:    st,
		Logger:   logger.Named("http"),
		Registry: reg,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("creating http server: %w", err)
	}

	return &App{
		config:   cfg,
		logger:   logger,
		store:    st,
		projects: projects,
		tasks:    tasks,
		server:   srv,
	}, nil
}

// Handler returns the HTTP handler, for embedding or tests.
func (a *App) Handler() http.Handler { return a.server }

// Run serves HTTP until ctx is cancelled, then shuts down within the
// configured timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}
