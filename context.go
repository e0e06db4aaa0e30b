package buildsignals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptibleContext returns a context canceled on SIGINT or SIGTERM.
// §5 requires that BuildFinished still be sent even when the enclosing
// operation is cancelled mid-build; cmd/critpathdemo uses this context
// to demonstrate that a cancelled fn passed to Scope still yields a
// summary.
func InterruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// A second signal terminates immediately, in case something
		// downstream hangs during cancellation cleanup.
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}
