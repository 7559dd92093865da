package main

import (
	"context"
	"os/signal"
)

// shutdownContext returns a context canceled on the first shutdown signal.
// Call stop to release the signal handler.
func shutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
