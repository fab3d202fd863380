package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shipit-cli/shipit/internal/cmd"
)

func main() {
	// An interrupt is treated like any other fatal error: the pipeline
	// context is cancelled and the process exits non-zero. No cleanup of
	// partially-applied remote changes is attempted.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
