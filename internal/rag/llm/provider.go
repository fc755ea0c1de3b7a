package llm

import (
	"context"

	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
)

// Provider is a chat model that answers a question given a system prompt and
// the earlier turns of the conversation.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt string, history []chatModel.Turn, question string) (string, error)
	Ping(ctx context.Context) error
}
