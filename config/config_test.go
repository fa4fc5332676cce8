package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aptutor/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Index.ChunkSize)
	}
	if cfg.Index.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Index.ChunkOverlap)
	}
	if cfg.Retrieve.MaxChunks != 3 {
		t.Errorf("expected MaxChunks=3, got %d", cfg.Retrieve.MaxChunks)
	}
	if cfg.Bot.MaxMessageLen != 2000 {
		t.Errorf("expected MaxMessageLen=2000, got %d", cfg.Bot.MaxMessageLen)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "aptutor.yaml")

	content := `
index:
  chunk_size: 256
  chunk_overlap: 32
retrieve:
  max_chunks: 5
  cache_ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Index.ChunkSize != 256 {
		t.Errorf("expected ChunkSize=256, got %d", cfg.Index.ChunkSize)
	}
	if cfg.Index.ChunkOverlap != 32 {
		t.Errorf("expected ChunkOverlap=32, got %d", cfg.Index.ChunkOverlap)
	}
	if cfg.Retrieve.MaxChunks != 5 {
		t.Errorf("expected MaxChunks=5, got %d", cfg.Retrieve.MaxChunks)
	}
	if cfg.Retrieve.CacheTTL != 30*time.Second {
		t.Errorf("expected CacheTTL=30s, got %s", cfg.Retrieve.CacheTTL)
	}
	if cfg.LLM.Model != DefaultConfig().LLM.Model {
		t.Errorf("unset fields should keep defaults, got model %q", cfg.LLM.Model)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".aptutor"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".aptutor", "config.yaml")

	content := `
bot:
  prefix: "!"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Bot.Prefix != "!" {
		t.Errorf("expected Prefix=!, got %s", cfg.Bot.Prefix)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("APTUTOR_RESOURCE_DIR", "/srv/pdfs")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("expected Port=9191, got %d", cfg.Server.Port)
	}
	if got := cfg.ResourcePath("/ignored"); got != "/srv/pdfs" {
		t.Errorf("expected absolute resource dir to win, got %s", got)
	}
}

func TestEnvOverrides_InvalidIntKeepsDefault(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.Server.Port)
	}
}

func TestValidate_OverlapTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.ChunkSize = 100
	cfg.Index.ChunkOverlap = 100

	err := cfg.Validate()
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "chunk_overlap" {
		t.Errorf("expected field chunk_overlap, got %s", cfgErr.Field)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aptutor.yaml")
	cfg := DefaultConfig()
	cfg.Index.ChunkSize = 64
	cfg.Index.ChunkOverlap = 8

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Index.ChunkSize != 64 || loaded.Index.ChunkOverlap != 8 {
		t.Errorf("expected 64/8, got %d/%d", loaded.Index.ChunkSize, loaded.Index.ChunkOverlap)
	}
}

func TestExtractDBPath(t *testing.T) {
	path := ExtractDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".aptutor", "extract.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
