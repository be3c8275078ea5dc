package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atsal/nodewave/internal/config"
	"github.com/atsal/nodewave/internal/graph"
	"github.com/atsal/nodewave/internal/host"
	"github.com/atsal/nodewave/internal/scheduler"
)

func main() {
	addr := flag.String("addr", ":9190", "metrics listen address")
	settingsPath := flag.String("settings", "configs/settings.yaml", "path to settings YAML")
	scriptPath := flag.String("script", "configs/script.yaml", "path to mutation script YAML")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Settings ─────────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*settingsPath)
	if err != nil {
		slog.Error("failed to load settings", "err", err)
		os.Exit(1)
	}
	if err := config.Validate(loader.Settings()); err != nil {
		slog.Error("settings validation failed", "err", err)
		os.Exit(1)
	}
	applyLevel(level, loader.Settings())
	loader.OnChange(func(s *config.Settings) {
		if err := config.Validate(s); err != nil {
			slog.Warn("hot-reload skipped: settings invalid", "err", err)
			return
		}
		applyLevel(level, s)
		slog.Info("settings reloaded", "log_level", s.LogLevel, "debug", s.Debug())
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("settings watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── Tracker ──────────────────────────────────────────────────────────────
	recompute := scheduler.RecomputeFunc(func(nodes []graph.NodeID) {
		slog.Info("recompute pass", "nodes", len(nodes))
	})
	h := host.New(nil)
	sched := scheduler.New(h, recompute, loader.Debug)
	h.SetSink(sched)

	// ── Metrics endpoint ─────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		slog.Info("metrics server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "err", err)
		}
	}()

	// ── Play the script ──────────────────────────────────────────────────────
	script, err := LoadScript(*scriptPath)
	if err != nil {
		slog.Error("failed to load script", "err", err)
		os.Exit(1)
	}
	player := NewPlayer(h, sched, loader)
	if err := player.Play(script); err != nil {
		slog.Error("script playback failed", "err", err)
		os.Exit(1)
	}
	slog.Info("script finished", "steps", len(script.Steps), "graphs", len(script.Graphs))

	// Keep serving /metrics until interrupted.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")
	_ = srv.Close()
}

func applyLevel(v *slog.LevelVar, s *config.Settings) {
	switch s.LogLevel {
	case "DEBUG":
		v.Set(slog.LevelDebug)
	case "WARN":
		v.Set(slog.LevelWarn)
	case "ERROR":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
