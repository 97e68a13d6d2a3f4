package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/mama165/sdk-go/logs"

	"roomcast/domain"
	"roomcast/internal"
	"roomcast/observability"
	"roomcast/runtime"
	"roomcast/runtime/workers"
	"roomcast/services"
	"roomcast/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting so every defer executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Core stores, single-writer dispatcher
	validator := domain.NewValidator(domain.Limits{
		MaxDisplayNameLength: config.MaxDisplayNameLength,
		MaxRoomNameLength:    config.MaxRoomNameLength,
		MaxMessageLength:     config.MaxMessageLength,
	})
	registry := runtime.NewRegistry(validator)
	rooms := runtime.NewRoomStore(registry, config.MessageLogCapacity)
	presence := runtime.NewPresenceTracker(config.TypingExpiry)
	stats := observability.NewStats()
	dispatcher := runtime.NewDispatcher(log, registry, rooms, presence, validator, stats, config.BufferSize)

	// 3. Supervision
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(dispatcher)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go supervisor.Run(ctx)

	// 5. Transport
	service := services.NewPresenceService(dispatcher)
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(log, service, config.ConnectionBufferSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 6. Read-only stats reporter, disabled in hardened deployments
	var statsServer *http.Server
	if config.StatsEnabled {
		statsServer = internal.StartStatsServer(log, config.StatsPort, stats.Snapshot)
	}

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	if statsServer != nil {
		_ = statsServer.Shutdown(shutdownCtx)
	}
	supervisor.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
