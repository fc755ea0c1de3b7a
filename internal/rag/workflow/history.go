package workflow

import (
	"github.com/akolanti/PolicyRAG/internal/domain/chatModel"
	"github.com/akolanti/PolicyRAG/pkg/tokens"
)

// trimHistory keeps the newest turns that fit in budget tokens. The latest
// turn is always kept so a follow-up can still be resolved.
func trimHistory(history []chatModel.Turn, budget int) []chatModel.Turn {
	if budget <= 0 || len(history) == 0 {
		return history
	}
	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := tokens.Count(history[i].Human) + tokens.Count(history[i].AI)
		if used+cost > budget && start < len(history) {
			break
		}
		used += cost
		start = i
	}
	return history[start:]
}
