package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacksonlee411/tree-menu/pkg/logging"
)

var version = "v0.0.0" // set at build time via -ldflags "-X main.version=..."

func main() {
	logger := logging.New(os.Stderr, "tree-menu-tool", version, os.Getenv(logging.EnvVarLogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(logger)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
