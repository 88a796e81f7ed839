package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bmcnabb/qcodex/internal/config"
)

func TestNewServesHealthAndShutsDown(t *testing.T) {
	cfg := config.Config{
		Port:                "0",
		APIKey:              "k",
		WorkerCount:         1,
		MaxQueueSize:        1,
		MaxConcurrentExport: 1,
		MaxUploadBytes:      1 << 20,
		JobTTL:              time.Minute,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := New(ctx, cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health check: expected 200, got %d", rec.Code)
	}

	app.Shutdown()
}
