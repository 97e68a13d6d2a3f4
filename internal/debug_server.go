package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"roomcast/observability"
)

type StatsProvider func() observability.StatsSnapshot

// StartStatsServer exposes the read-only reporter: a liveness probe and
// the counters the core already maintains. Hardened deployments disable
// it entirely through configuration; that policy lives outside the core.
func StartStatsServer(log *slog.Logger, port int, provider StatsProvider) *http.Server {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           statsMux(log, provider),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Stats server stopped", "error", err)
		}
	}()

	return server
}

func statsMux(log *slog.Logger, provider StatsProvider) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(provider()); err != nil {
			log.Error("Failed to encode stats", "error", err)
		}
	})

	return mux
}
