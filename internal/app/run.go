package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vk/gridwork/internal/ctxlog"
	"github.com/vk/gridwork/internal/status"
)

// Run executes one scheduler epoch alongside the health/metrics server,
// mirroring the teacher's App.Run starting the healthcheck server next to
// the executor. The health server is cancelled once the scheduler epoch
// finishes; the scheduler epoch is not affected by the health server's
// outcome.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelHealth := context.WithCancel(gctx)

	g.Go(func() error {
		return a.serveHealthcheck(runCtx)
	})

	var runStatus status.Status
	g.Go(func() error {
		defer cancelHealth()
		runStatus = a.scheduler.Run(ctx)
		if !runStatus.IsOK() {
			return runStatus
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting new pool submissions and, per the configured
// ShutdownPolicy, drains or discards queued work before returning.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Debug("app: shutting down")
	return a.pool.Shutdown(ctx)
}
