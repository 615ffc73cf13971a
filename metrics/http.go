package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vaultaevm/ship-receiver/log"
)

// Serve starts the stand-alone metrics HTTP server described by cfg,
// serving snapshot JSON for the given ShipMetrics at /debug/metrics,
// mirroring the teacher's exp.Setup(address) call in SetupMetrics — which
// itself only wires stdlib expvar behind net/http, so serving this
// registry's own JSON snapshot over net/http carries the same idiom
// without requiring the teacher's full go-metrics registry.
func Serve(cfg Config, m *ShipMetrics) *http.Server {
	if !cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m.snapshot())
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}
	logger := log.New("component", "metrics")
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", "err", err)
		}
	}()
	return srv
}

// Shutdown stops srv if non-nil, tolerating a nil srv from a disabled
// Config so callers don't need to guard the call themselves.
func Shutdown(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	srv.Shutdown(ctx)
}
