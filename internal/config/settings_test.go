package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "")
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.ListenAddr != ServerListenAddr {
		t.Errorf("ListenAddr got %s, want %s", s.ListenAddr, ServerListenAddr)
	}
	if !s.NoAuthBypass {
		t.Error("auth should be bypassed when no token is configured")
	}
	if len(s.LLMProviders) != 3 || s.LLMProviders[0].Name != "gemini" {
		t.Errorf("unexpected default providers: %+v", s.LLMProviders)
	}
	if s.Embedding.Dimensions != EmbeddingOutputDimensionality {
		t.Errorf("Dimensions got %d", s.Embedding.Dimensions)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("VECTOR_DB_PATH", "/tmp/vs")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAX_SESSIONS", "12")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("EMBEDDING_PROVIDER", "openai")

	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name string
		ok   bool
	}{
		{"prod", s.IsProd && s.LogLevel == slog.LevelInfo},
		{"auth enforced", !s.NoAuthBypass && s.AuthToken == "secret"},
		{"vector path", s.VectorStorePath == "/tmp/vs"},
		{"session ttl", s.SessionTTL == 30*time.Minute},
		{"max sessions", s.MaxSessions == 12},
		{"cors", len(s.CORSOrigins) == 2 && s.CORSOrigins[1] == "http://b.test"},
		{"embedding", s.Embedding.Model == OpenAIEmbeddingModel && s.Embedding.APIKeyEnv == "OPENAI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.ok {
				t.Errorf("override %s not applied: %+v", tt.name, s)
			}
		})
	}
}

func TestLoad_ProviderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm_providers:
  - name: groq
    model: llama-3.1-8b-instant
    base_url: https://api.groq.com/openai/v1/
  - name: gemini
    model: gemini-2.5-flash
    api_key_env: MY_GEMINI_KEY
embedding:
  dimensions: 256
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("MY_GEMINI_KEY", "mk")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.LLMProviders) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(s.LLMProviders))
	}
	if s.LLMProviders[0].Name != "groq" || s.LLMProviders[0].APIKey != "gk" {
		t.Errorf("groq provider not resolved: %+v", s.LLMProviders[0])
	}
	if s.LLMProviders[1].APIKey != "mk" {
		t.Errorf("custom key env not resolved: %+v", s.LLMProviders[1])
	}
	if s.Embedding.Dimensions != 256 {
		t.Errorf("Dimensions got %d, want 256", s.Embedding.Dimensions)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm_providers: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
