package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/diccas/internal/api"
	"github.com/dgallion1/diccas/internal/config"
	"github.com/dgallion1/diccas/internal/metrics"
	"github.com/dgallion1/diccas/internal/normalize"
	"github.com/dgallion1/diccas/internal/pipeline"
	"github.com/dgallion1/diccas/internal/walker"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $"+config.PathEnv+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log)
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	tagging, err := pipeline.NewTagging(cfg.Tagger, m, log)
	if err != nil {
		log.Error("tagger setup failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	w := walker.New(normalize.New(cfg.Normalize.ToOptions()), tagging.Tagger)
	conv := pipeline.NewConverter(w, cfg.Policy(), log)
	orch := pipeline.NewOrchestrator(*cfg, conv, m, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, tagging.Stats, m, log, *cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		tagging.Close()
	}()

	log.Info("starting diccas",
		"port", cfg.Port,
		"tagger", cfg.Tagger.Kind,
		"split_policy", cfg.SplitPolicy,
		"output_dir", cfg.Output.Dir,
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
