package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/llm"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

// GetGeminiClient returns nil when the key is missing or the client cannot be built.
func GetGeminiClient(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, cfg, httpClient)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client) {
	if cfg.APIKey == "" {
		logger.Warn("Gemini API key is not set", "env", cfg.APIKeyEnv)
		return
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: cfg.Model}
	logger.Info("Gemini client created", "model", cfg.Model)
	go closeClient(ctx, geminiClient)
}

func (c *llmClient) Name() string {
	return "gemini"
}

func (c *llmClient) Ping(ctx context.Context) error {
	if c.client == nil {
		return errors.New("gemini client closed")
	}
	_, err := c.client.Models.Get(ctx, c.modelName, nil)
	return err
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, history []chatModel.Turn, question string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_gemini", time.Since(start)) }()
	if c.client == nil {
		return "", errors.New("gemini client closed")
	}

	contents := make([]*genai.Content, 0, 2*len(history)+1)
	for _, turn := range history {
		contents = append(contents,
			genai.NewContentFromText(turn.Human, genai.RoleUser),
			genai.NewContentFromText(turn.AI, genai.RoleModel),
		)
	}
	contents = append(contents, genai.NewContentFromText(question, genai.RoleUser))

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](config.ModelTemperature),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Gemini generation failed", "error", err)
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
}
