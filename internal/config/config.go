package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment
// variables. It is immutable after Load() returns.
type Config struct {
	Port        int
	Environment string

	StoreDir string

	GCPProject        string
	VertexAILocation  string
	VertexAIModel     string
	EmbeddingLocation string
	EmbeddingModel    string

	FrontendURL string

	MaxRounds     int
	TopKRetrieve  int
	TopKFinal     int
	MaxCtxDocs    int
	PreRerankTopK int
	RerankEnabled bool
}

// Load reads configuration from environment variables. GOOGLE_CLOUD_PROJECT
// is required in non-development environments (the Vertex AI provider
// adapters cannot authenticate without it); every other variable falls
// back to a documented default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        envInt("PORT", 8080),
		Environment: envStr("ENVIRONMENT", "development"),

		StoreDir: envStr("STORE_DIR", "./rag_store"),

		GCPProject:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		VertexAILocation:  envStr("VERTEX_AI_LOCATION", "global"),
		VertexAIModel:     envStr("VERTEX_AI_MODEL", "gemini-3-pro-preview"),
		EmbeddingLocation: envStr("VERTEX_AI_EMBEDDING_LOCATION", envStr("GCP_REGION", "us-east4")),
		EmbeddingModel:    envStr("VERTEX_AI_EMBEDDING_MODEL", "text-embedding-004"),

		FrontendURL: envStr("FRONTEND_URL", "http://localhost:3000"),

		MaxRounds:     envInt("MAX_ROUNDS", 3),
		TopKRetrieve:  envInt("TOP_K_RETRIEVE", 60),
		TopKFinal:     envInt("TOP_K_FINAL", 8),
		MaxCtxDocs:    envInt("MAX_CTX_DOCS", 24),
		PreRerankTopK: envInt("PRE_RERANK_TOP_K", 64),
		RerankEnabled: envBool("RERANK_ENABLED", true),
	}

	if cfg.Environment != "development" && cfg.GCPProject == "" {
		return nil, fmt.Errorf("config.Load: GOOGLE_CLOUD_PROJECT is required in %s environment", cfg.Environment)
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
