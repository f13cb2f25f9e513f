package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/gridwork/internal/pool"
	"github.com/vk/gridwork/internal/scheduler"
)

// App wires the worker pool and the Dependency Scheduler together behind a
// single lifecycle, the way the teacher's App wires the registry and config
// loader together behind NewApp/Run.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	pool      *pool.Pool
	scheduler *scheduler.Scheduler
	registry  *prometheus.Registry
}

// New constructs an App: it builds the isolated logger, starts the worker
// pool, binds it to a fresh scheduler, and registers the pool's collector.
// If the pool cannot be bound to the scheduler, New panics, mirroring the
// teacher's panic-on-fatal-startup-error convention in NewApp. New does not
// read cfg.GraphPath; loading the graph is left to the caller.
func New(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	p := pool.New(context.Background(), cfg.poolConfig())

	sched := scheduler.New()
	if sc := sched.BindPool(p); !sc.IsOK() {
		panic("app: failed to bind pool to scheduler: " + sc.Error())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(p.Collector())

	logger.Debug("app: wired pool and scheduler", "workers", cfg.WorkerCount, "max_workers", cfg.MaxWorkerCount)

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		pool:      p,
		scheduler: sched,
		registry:  reg,
	}
}

// Scheduler exposes the wired Scheduler so a caller (the CLI, or a
// graphspec loader) can create elements against it before calling Run.
func (a *App) Scheduler() *scheduler.Scheduler { return a.scheduler }

// Pool exposes the wired worker pool, primarily so callers can observe its
// metrics collector.
func (a *App) Pool() *pool.Pool { return a.pool }

// Logger returns the app's isolated logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Registry returns the Prometheus registry the health/metrics server serves.
func (a *App) Registry() *prometheus.Registry { return a.registry }
