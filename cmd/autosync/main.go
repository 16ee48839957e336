// Command autosync runs one synchronization pass over a git working copy:
// commit local changes, rebase onto upstream, push with a transient token.
// It is intended to be invoked from cron or CI, where exit code 0 covers both
// success and a deliberate skip.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = clog.WithLogger(ctx, clog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		clog.FromContext(ctx).Errorf("sync failed: %v", err)
		os.Exit(1)
	}
}
