// Package main provides the entry point for the expofuse CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/expofuse/expofuse/internal/cmd"
	"github.com/expofuse/expofuse/pkg/logging"
)

// Version information populated by goreleaser.
var (
	version = "dev"
)

func main() {
	// Cancel the run context on interrupt so remote calls stop cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cmd.New(version)
	if err := root.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("command failed")
		os.Exit(1)
	}
}
