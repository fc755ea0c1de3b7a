package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/domain/ragErrors"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("LLM Selector")

// Select returns the first candidate, in ranked order, that answers a ping.
// Nil candidates are skipped; they stand for providers without credentials.
func Select(ctx context.Context, candidates ...Provider) (Provider, error) {
	var failed []string
	for _, p := range candidates {
		if p == nil {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, config.ProviderPingTimeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("LLM provider unavailable", "provider", p.Name(), "error", err)
			failed = append(failed, p.Name())
			continue
		}
		logger.Info("LLM provider selected", "provider", p.Name())
		return p, nil
	}
	if len(failed) == 0 {
		return nil, fmt.Errorf("%w: no provider configured", ragErrors.ErrNoProviderAvailable)
	}
	return nil, fmt.Errorf("%w: tried %s", ragErrors.ErrNoProviderAvailable, strings.Join(failed, ", "))
}
