package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownSignals cancel a running sweep.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SetupContext bounds ctx by timeout.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals returns a context canceled on SIGINT or SIGTERM. The stop
// function restores the default signal behavior.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, shutdownSignals...)
}

// SetupLifecycle derives the context of a sweep: it ends at the timeout or on
// the first shutdown signal, whichever comes first. Callers defer Cleanup on
// the returned CancelFuncs.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)
	return ctx, &CancelFuncs{CancelTimeout: cancelTimeout, StopSignals: stopSignals}
}

// CancelFuncs releases what SetupLifecycle acquired.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops the signal relay, then cancels the timeout. Nil functions are
// skipped.
func (c *CancelFuncs) Cleanup() {
	for _, f := range []context.CancelFunc{c.StopSignals, c.CancelTimeout} {
		if f != nil {
			f()
		}
	}
}
