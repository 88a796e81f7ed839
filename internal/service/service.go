// Package service wires configuration, storage, pipeline and HTTP server
// into a running qcodex instance. Both entrypoints (the standalone server
// binary and `qcodex serve`) go through Run.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmcnabb/qcodex/internal/api"
	"github.com/bmcnabb/qcodex/internal/config"
	"github.com/bmcnabb/qcodex/internal/pipeline"
	"github.com/bmcnabb/qcodex/internal/registry"
	"github.com/bmcnabb/qcodex/internal/registry/memstore"
	"github.com/bmcnabb/qcodex/internal/registry/sqlite"
	"github.com/bmcnabb/qcodex/internal/sink"
)

// App bundles the running pieces of a qcodex instance.
type App struct {
	Server *http.Server

	orch  *pipeline.Orchestrator
	codes registry.Store
	sink  *sink.Client
	log   *slog.Logger
}

// New builds and starts the pipeline and HTTP server for cfg. The caller
// owns the listen loop and must call Shutdown when done.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	// Code registry: durable when a path is configured, in-memory otherwise.
	var codes registry.Store
	if cfg.RegistryPath != "" {
		var err error
		codes, err = sqlite.Open(ctx, cfg.RegistryPath)
		if err != nil {
			return nil, fmt.Errorf("open code registry %s: %w", cfg.RegistryPath, err)
		}
	} else {
		codes = memstore.New()
	}

	var sk *sink.Client
	if cfg.SinkURL != "" {
		sk = sink.NewClient(cfg.SinkURL, cfg.SinkAPIKey)
	}

	orch := pipeline.NewOrchestrator(cfg, codes, sk, log)
	orch.Start(ctx)

	return &App{
		Server: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(orch, log, cfg),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		orch:  orch,
		codes: codes,
		sink:  sk,
		log:   log,
	}, nil
}

// Shutdown drains the pipeline and closes the server and its stores.
func (a *App) Shutdown() {
	a.orch.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Server.Shutdown(ctx)

	if a.sink != nil {
		a.sink.Close()
	}
	a.codes.Close()
}

// Run loads configuration from the environment and serves until SIGINT or
// SIGTERM.
func Run() error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		app.Shutdown()
	}()

	log.Info("starting qcodex", "port", cfg.Port)
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
