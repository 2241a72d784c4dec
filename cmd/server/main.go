package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacksonlee411/tree-menu/internal/menustore"
	"github.com/jacksonlee411/tree-menu/internal/server"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/seed"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
)

var version = "v0.0.0" // set at build time via -ldflags "-X main.version=..."

func main() {
	logger := logging.SetDefault("tree-menu-server", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := menustore.ConfigFromEnv()
	if err != nil {
		return err
	}
	opened, err := menustore.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	classifier, err := server.LoadClassifier()
	if err != nil {
		return err
	}

	if path := os.Getenv("MENU_SEED_PATH"); path != "" {
		f, err := seed.Load(path)
		if err != nil {
			return fmt.Errorf("load seed %s: %w", path, err)
		}
		w := services.NewMenuWriteService(opened.Store, classifier, logger)
		rep, err := seed.Apply(ctx, w, f, logger)
		if err != nil {
			return err
		}
		logger.Info("seed applied",
			slog.String("path", path),
			slog.Int("menus_created", rep.MenusCreated),
			slog.Int("menus_skipped", rep.MenusSkipped),
			slog.Int("items_created", rep.ItemsCreated))
	}

	h, err := server.NewHandlerWithOptions(server.HandlerOptions{
		Store:      opened.Store,
		Classifier: classifier,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx, ln, h, logger)
}
