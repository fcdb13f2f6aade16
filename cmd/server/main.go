// Package main is the entry point of the fakehub server.
//
// main stays small: it reads the configuration, builds the logger and hands
// both to internal/server, which owns everything else.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/sakif/fakehub/internal/config"
	"github.com/sakif/fakehub/internal/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	logger.Info("fakehub starting",
		slog.String("os", runtime.GOOS),
		slog.String("arch", runtime.GOARCH),
		slog.Int("pid", os.Getpid()),
		slog.Int("port", cfg.Port),
		slog.String("main_hub", cfg.MainHub),
		slog.Any("hubs", cfg.Hubs),
		slog.String("init_state", cfg.InitState),
	)

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		Address:   cfg.Address,
		MainHub:   cfg.MainHub,
		Hubs:      cfg.Hubs,
		InitState: cfg.InitState,
		Seed:      cfg.Seed,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
