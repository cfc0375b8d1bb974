package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mtzanidakis/gse/internal/config"
	"github.com/mtzanidakis/gse/internal/crew"
	"github.com/mtzanidakis/gse/internal/metrics"
	"github.com/mtzanidakis/gse/internal/monitor"
	"github.com/mtzanidakis/gse/internal/natsbus"
	"github.com/mtzanidakis/gse/internal/web"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("gse %s\n", version)
	case "gateway":
		if err := runGateway(); err != nil {
			slog.Error("gateway failed", "error", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: gse <command>\n\nCommands:\n  gateway    Start the HTTP gateway\n  version    Print version\n")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func runGateway() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(newLogger(cfg.Log))

	slog.Info("starting gse gateway", "version", version, "project", cfg.ProjectName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event bus
	var (
		bus    *natsbus.Bus
		events natsbus.Publisher = natsbus.Discard{}
	)
	if cfg.NATS.Enabled {
		bus, err = natsbus.New(cfg.NATS)
		if err != nil {
			return fmt.Errorf("init nats: %w", err)
		}
		defer bus.Close()

		client, err := natsbus.NewClient(bus)
		if err != nil {
			return fmt.Errorf("init nats client: %w", err)
		}
		defer client.Close()
		events = client
		slog.Info("nats started", "url", bus.ClientURL())
	} else {
		slog.Warn("nats disabled, event feed off")
	}

	m := metrics.New()

	if orch, ok := crew.Detect(); ok {
		slog.Info("crew orchestration available", "orchestrator", orch.Name())
	} else {
		slog.Warn("crew orchestration not compiled in, serving stub template")
	}

	// Space status monitor
	if cfg.Monitor.Schedule != "" {
		mon, err := monitor.New(cfg.Monitor, cfg.HF, events, m)
		switch {
		case errors.Is(err, monitor.ErrNotConfigured):
			slog.Warn("space monitor disabled", "reason", err)
		case err != nil:
			return fmt.Errorf("init monitor: %w", err)
		default:
			go mon.Start(ctx)
		}
	}

	srv, err := web.NewServer(cfg, crew.NewBuilder(crew.Detect), bus, events, m)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server: %w", err)
		}
	}
	cancel()
	return nil
}
