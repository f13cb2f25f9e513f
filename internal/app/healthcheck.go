package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler reports liveness and logs the hit, mirroring the teacher's
// healthHandler.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("health check endpoint hit", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// serveHealthcheck runs the health/metrics HTTP server until ctx is done,
// then shuts it down gracefully. A HealthcheckPort <= 0 disables the server
// entirely (the method returns nil immediately).
func (a *App) serveHealthcheck(ctx context.Context) error {
	if a.config.HealthcheckPort <= 0 {
		a.logger.Debug("health check server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health check server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("shutting down health check server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("health check server shutdown failed: %w", err)
		}
		return nil
	}
}
