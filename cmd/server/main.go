package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseon-annals/rag-service/internal/cache"
	"github.com/joseon-annals/rag-service/internal/config"
	"github.com/joseon-annals/rag-service/internal/handler"
	"github.com/joseon-annals/rag-service/internal/middleware"
	"github.com/joseon-annals/rag-service/internal/router"
	"github.com/joseon-annals/rag-service/internal/store"
	"github.com/joseon-annals/rag-service/internal/vertex"
)

const Version = "0.1.0"

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	st, err := store.Load(cfg.StoreDir)
	if err != nil {
		return fmt.Errorf("store.Load: %w", err)
	}
	slog.Info("store loaded", "dir", cfg.StoreDir, "docs", len(st.Docs))

	embedAdapter, err := vertex.NewEmbeddingAdapter(ctx, cfg.GCPProject, cfg.EmbeddingLocation, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("vertex.NewEmbeddingAdapter: %w", err)
	}
	llmAdapter, err := vertex.NewGenAIAdapter(ctx, cfg.GCPProject, cfg.VertexAILocation, cfg.VertexAIModel)
	if err != nil {
		return fmt.Errorf("vertex.NewGenAIAdapter: %w", err)
	}
	defer llmAdapter.Close()

	embedder := &cache.CachedEmbedder{Cache: cache.NewEmbeddingCache(), Embedder: embedAdapter}

	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	deps := &router.Dependencies{
		FrontendURL: cfg.FrontendURL,
		Metrics:     metrics,
		MetricsReg:  reg,
		ChatDeps: handler.ChatDeps{
			Store:    st,
			Embedder: embedder,
			LLM:      llmAdapter,
			Rerank:   cfg.RerankEnabled,
			Metrics:  metrics,
		},
	}

	r := router.New(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // chat is a long-lived SSE stream
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("rag-service v%s starting on port %d", Version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down gracefully", sig)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Println("server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
