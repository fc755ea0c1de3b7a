package openaiLLM

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/internal/metrics"
	"github.com/akolanti/PolicyRAG/internal/rag/llm"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// llmClient talks to any OpenAI compatible chat endpoint. Groq is served by
// pointing BaseURL at its compatibility layer.
type llmClient struct {
	api    openai.Client
	name   string
	model  string
	logger *logger_i.Logger
}

// NewClient returns nil when no API key is configured.
func NewClient(cfg config.ProviderConfig, httpClient *http.Client) llm.Provider {
	logger := logger_i.NewLogger("llm_" + cfg.Name)
	if cfg.APIKey == "" {
		logger.Warn("API key is not set", "env", cfg.APIKeyEnv)
		return nil
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	logger.Info("Chat client created", "model", cfg.Model)
	return &llmClient{
		api:    openai.NewClient(opts...),
		name:   cfg.Name,
		model:  cfg.Model,
		logger: logger,
	}
}

func (c *llmClient) Name() string {
	return c.name
}

func (c *llmClient) Ping(ctx context.Context) error {
	_, err := c.api.Models.Get(ctx, c.model)
	return err
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, history []chatModel.Turn, question string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_"+c.name, time.Since(start)) }()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, turn := range history {
		messages = append(messages, openai.UserMessage(turn.Human), openai.AssistantMessage(turn.AI))
	}
	messages = append(messages, openai.UserMessage(question))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("Chat completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New(c.name + " returned an empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
