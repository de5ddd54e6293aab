package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tgrayson/vaultvec/internal/api"
	"github.com/tgrayson/vaultvec/internal/config"
	"github.com/tgrayson/vaultvec/internal/embed"
	"github.com/tgrayson/vaultvec/internal/pipeline"
	"github.com/tgrayson/vaultvec/internal/store"
)

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Error("embedder init failed", "error", err)
		os.Exit(1)
	}

	st, err := newStore(ctx, cfg, embedder.Dimension())
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}

	stats := embed.NewStats(time.Hour)

	orch, err := pipeline.NewOrchestrator(cfg, embedder, st, stats, log)
	if err != nil {
		log.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}
	if err := orch.Start(ctx); err != nil {
		log.Error("pipeline start failed", "error", err)
		os.Exit(1)
	}

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP first so in-flight ingest requests cannot submit to a
		// stopped pipeline.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		embedder.Close()
		if err := st.Close(); err != nil {
			log.Warn("store close failed", "error", err)
		}
	}()

	log.Info("starting vaultvec", "port", cfg.Port, "embedder", cfg.Embedder, "store", cfg.Store)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newEmbedder(cfg config.Config) (embed.Embedder, error) {
	switch cfg.Embedder {
	case "openai":
		return embed.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedModel)
	case "ollama":
		return embed.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder)
	}
}

func newStore(ctx context.Context, cfg config.Config, dimension int) (store.Store, error) {
	switch cfg.Store {
	case "qdrant":
		return store.NewQdrantStore(ctx, cfg.QdrantAddr, cfg.QdrantCollection, dimension)
	case "sqlite":
		return store.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Store)
	}
}
