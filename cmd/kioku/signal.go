package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// waitForShutdown blocks the daemon until SIGINT or SIGTERM arrives, then
// returns so the caller can run its ordered teardown.
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	slog.Info("Shutdown signal received", "signal", sig.String())
}
