package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ProviderConfig is one entry of the ranked language model list.
type ProviderConfig struct {
	Name      string `yaml:"name"` // gemini | openai | groq
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	APIKey    string `yaml:"-"`
}

type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // google | openai
	Model      string `yaml:"model"`
	Dimensions int32  `yaml:"dimensions"`
	APIKeyEnv  string `yaml:"api_key_env"`
	APIKey     string `yaml:"-"`
}

type fileConfig struct {
	LLMProviders []ProviderConfig `yaml:"llm_providers"`
	Embedding    *EmbeddingConfig `yaml:"embedding"`
	CORSOrigins  []string         `yaml:"cors_origins"`
}

// Settings is the resolved runtime configuration. Defaults come from the
// constants in this package, overridden by .env, the environment and config.yaml.
type Settings struct {
	IsProd   bool
	LogLevel slog.Level

	ListenAddr       string
	AuthToken        string
	NoAuthBypass     bool
	RateLimitEnabled bool
	CORSOrigins      []string

	VectorStorePath string
	UploadDir       string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string

	QdrantEnabled bool
	QdrantHost    string
	QdrantPort    int

	LLMProviders []ProviderConfig
	Embedding    EmbeddingConfig

	MaxSessions        int
	SessionTTL         time.Duration
	HistoryTokenBudget int

	MCPEnabled bool
}

func defaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{Name: "gemini", Model: GeminiModelName, APIKeyEnv: "GOOGLE_API_KEY"},
		{Name: "openai", Model: OpenAIModelName, APIKeyEnv: "OPENAI_API_KEY"},
		{Name: "groq", Model: GroqModelName, BaseURL: GroqBaseURL, APIKeyEnv: "GROQ_API_KEY"},
	}
}

func defaultSettings() *Settings {
	return &Settings{
		LogLevel:         LOG_LEVEL_DEV,
		ListenAddr:       ServerListenAddr,
		NoAuthBypass:     true,
		RateLimitEnabled: true,
		CORSOrigins:      []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		VectorStorePath:  VectorStorePath,
		UploadDir:        UploadDir,
		RedisEnabled:     true,
		RedisAddr:        RedisAddr,
		QdrantEnabled:    false,
		QdrantHost:       QdrantHost,
		QdrantPort:       QdrantGrpcPort,
		LLMProviders:     defaultProviders(),
		Embedding: EmbeddingConfig{
			Provider:   "google",
			Model:      GoogleEmbeddingModel,
			Dimensions: EmbeddingOutputDimensionality,
			APIKeyEnv:  "GOOGLE_API_KEY",
		},
		MaxSessions:        MaxSessions,
		SessionTTL:         SessionTTL,
		HistoryTokenBudget: HistoryTokenBudget,
		MCPEnabled:         true,
	}
}

// Load resolves Settings. A missing config file is not an error.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	s := defaultSettings()
	applyEnv(s)

	if path == "" {
		path = getEnv("CONFIG_FILE", ConfigFile)
	}
	if err := applyFile(s, path); err != nil {
		return nil, err
	}
	resolveKeys(s)
	return s, nil
}

func applyEnv(s *Settings) {
	s.IsProd = strings.EqualFold(getEnv("APP_ENV", "dev"), "prod")
	if s.IsProd {
		s.LogLevel = LOG_LEVEL_PROD
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(lvl)); err == nil {
			s.LogLevel = parsed
		}
	}

	s.ListenAddr = getEnv("LISTEN_ADDR", s.ListenAddr)
	s.AuthToken = os.Getenv("AUTH_TOKEN")
	// auth is bypassed only when no token is configured
	s.NoAuthBypass = getEnvBool("NO_AUTH_BYPASS", s.AuthToken == "")
	s.RateLimitEnabled = getEnvBool("RATE_LIMIT_ENABLED", s.RateLimitEnabled)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		s.CORSOrigins = splitList(origins)
	}

	s.VectorStorePath = getEnv("VECTOR_DB_PATH", s.VectorStorePath)
	s.UploadDir = getEnv("UPLOAD_DIR", s.UploadDir)

	s.RedisEnabled = getEnvBool("REDIS_ENABLED", s.RedisEnabled)
	s.RedisAddr = getEnv("REDIS_ADDR", s.RedisAddr)
	s.RedisPassword = os.Getenv("REDIS_PASSWORD")

	s.QdrantEnabled = getEnvBool("QDRANT_ENABLED", s.QdrantEnabled)
	s.QdrantHost = getEnv("QDRANT_HOST", s.QdrantHost)
	s.QdrantPort = getEnvInt("QDRANT_PORT", s.QdrantPort)

	s.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", s.Embedding.Provider)
	if s.Embedding.Provider == "openai" {
		s.Embedding.Model = OpenAIEmbeddingModel
		s.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	s.Embedding.Model = getEnv("EMBEDDING_MODEL", s.Embedding.Model)

	s.MaxSessions = getEnvInt("MAX_SESSIONS", s.MaxSessions)
	s.SessionTTL = getEnvDuration("SESSION_TTL", s.SessionTTL)
	s.HistoryTokenBudget = getEnvInt("HISTORY_TOKEN_BUDGET", s.HistoryTokenBudget)
	s.MCPEnabled = getEnvBool("MCP_ENABLED", s.MCPEnabled)
}

func applyFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(fc.LLMProviders) > 0 {
		s.LLMProviders = fc.LLMProviders
	}
	if fc.Embedding != nil {
		if fc.Embedding.Provider != "" {
			s.Embedding.Provider = fc.Embedding.Provider
		}
		if fc.Embedding.Model != "" {
			s.Embedding.Model = fc.Embedding.Model
		}
		if fc.Embedding.Dimensions > 0 {
			s.Embedding.Dimensions = fc.Embedding.Dimensions
		}
		if fc.Embedding.APIKeyEnv != "" {
			s.Embedding.APIKeyEnv = fc.Embedding.APIKeyEnv
		}
	}
	if len(fc.CORSOrigins) > 0 {
		s.CORSOrigins = fc.CORSOrigins
	}
	return nil
}

func resolveKeys(s *Settings) {
	for i := range s.LLMProviders {
		p := &s.LLMProviders[i]
		if p.APIKeyEnv == "" {
			p.APIKeyEnv = strings.ToUpper(p.Name) + "_API_KEY"
		}
		p.APIKey = os.Getenv(p.APIKeyEnv)
	}
	s.Embedding.APIKey = os.Getenv(s.Embedding.APIKeyEnv)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
