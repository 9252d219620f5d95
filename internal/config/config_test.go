package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "STORE_DIR",
		"GOOGLE_CLOUD_PROJECT", "GCP_REGION",
		"VERTEX_AI_LOCATION", "VERTEX_AI_MODEL",
		"VERTEX_AI_EMBEDDING_LOCATION", "VERTEX_AI_EMBEDDING_MODEL",
		"FRONTEND_URL",
		"MAX_ROUNDS", "TOP_K_RETRIEVE", "TOP_K_FINAL", "MAX_CTX_DOCS",
		"PRE_RERANK_TOP_K", "RERANK_ENABLED",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_DevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.StoreDir != "./rag_store" {
		t.Errorf("StoreDir = %q, want %q", cfg.StoreDir, "./rag_store")
	}
	if cfg.VertexAILocation != "global" {
		t.Errorf("VertexAILocation = %q, want %q", cfg.VertexAILocation, "global")
	}
	if cfg.VertexAIModel != "gemini-3-pro-preview" {
		t.Errorf("VertexAIModel = %q, want %q", cfg.VertexAIModel, "gemini-3-pro-preview")
	}
	if cfg.EmbeddingLocation != "us-east4" {
		t.Errorf("EmbeddingLocation = %q, want %q", cfg.EmbeddingLocation, "us-east4")
	}
	if cfg.EmbeddingModel != "text-embedding-004" {
		t.Errorf("EmbeddingModel = %q, want %q", cfg.EmbeddingModel, "text-embedding-004")
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Errorf("FrontendURL = %q, want %q", cfg.FrontendURL, "http://localhost:3000")
	}
	if cfg.MaxRounds != 3 {
		t.Errorf("MaxRounds = %d, want 3", cfg.MaxRounds)
	}
	if cfg.TopKRetrieve != 60 {
		t.Errorf("TopKRetrieve = %d, want 60", cfg.TopKRetrieve)
	}
	if cfg.TopKFinal != 8 {
		t.Errorf("TopKFinal = %d, want 8", cfg.TopKFinal)
	}
	if cfg.MaxCtxDocs != 24 {
		t.Errorf("MaxCtxDocs = %d, want 24", cfg.MaxCtxDocs)
	}
	if cfg.PreRerankTopK != 64 {
		t.Errorf("PreRerankTopK = %d, want 64", cfg.PreRerankTopK)
	}
	if !cfg.RerankEnabled {
		t.Error("RerankEnabled = false, want true")
	}
}

func TestLoad_ProductionRequiresGCPProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GOOGLE_CLOUD_PROJECT is unset in production")
	}
}

func TestLoad_ProductionWithGCPProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "joseon-annals-prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GCPProject != "joseon-annals-prod" {
		t.Errorf("GCPProject = %q, want %q", cfg.GCPProject, "joseon-annals-prod")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DIR", "/data/store")
	t.Setenv("MAX_ROUNDS", "5")
	t.Setenv("TOP_K_FINAL", "12")
	t.Setenv("RERANK_ENABLED", "false")
	t.Setenv("FRONTEND_URL", "https://annals.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.StoreDir != "/data/store" {
		t.Errorf("StoreDir = %q, want %q", cfg.StoreDir, "/data/store")
	}
	if cfg.MaxRounds != 5 {
		t.Errorf("MaxRounds = %d, want 5", cfg.MaxRounds)
	}
	if cfg.TopKFinal != 12 {
		t.Errorf("TopKFinal = %d, want 12", cfg.TopKFinal)
	}
	if cfg.RerankEnabled {
		t.Error("RerankEnabled = true, want false")
	}
	if cfg.FrontendURL != "https://annals.example.com" {
		t.Errorf("FrontendURL = %q, want %q", cfg.FrontendURL, "https://annals.example.com")
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080 (fallback)", cfg.Port)
	}
}

func TestLoad_InvalidBoolFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RERANK_ENABLED", "not-a-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.RerankEnabled {
		t.Error("RerankEnabled = false, want true (fallback)")
	}
}

func TestLoad_EmbeddingLocationFallsBackToGCPRegion(t *testing.T) {
	clearEnv(t)
	t.Setenv("GCP_REGION", "asia-northeast3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.EmbeddingLocation != "asia-northeast3" {
		t.Errorf("EmbeddingLocation = %q, want %q", cfg.EmbeddingLocation, "asia-northeast3")
	}
}
