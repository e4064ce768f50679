// Package llm wraps the external generation/embedding providers.
// Every call is fail-soft: a disabled provider, network error,
// non-success status or empty payload reports ok=false and never an
// error, so callers always fall back to deterministic replies.
package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/domain"
)

// Client is the generation-service contract consumed by the engine.
type Client interface {
	// Enabled reports whether the provider is configured at all.
	Enabled() bool
	// Complete answers a single system+user prompt pair.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, bool)
	// CompleteChat answers a role-tagged message window.
	CompleteChat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, bool)
	// Embed returns a vector for the text.
	Embed(ctx context.Context, text string) ([]float32, bool)
}

// Options configures a provider client.
type Options struct {
	Provider       string // openai, gemini or none
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	Timeout        time.Duration
}

// New builds the configured provider client. An empty API key or
// provider "none" yields the disabled client.
func New(opts Options, logger *zap.Logger) (Client, error) {
	if opts.APIKey == "" || opts.Provider == "" || opts.Provider == "none" {
		logger.Info("generation provider disabled, deterministic fallback only")
		return Disabled{}, nil
	}
	switch opts.Provider {
	case "openai":
		return NewOpenAIClient(opts, logger), nil
	case "gemini":
		return NewGeminiClient(opts, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// Disabled is the no-provider client; every call reports no result.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Complete(context.Context, string, string) (string, bool) { return "", false }

func (Disabled) CompleteChat(context.Context, string, []domain.ChatMessage) (string, bool) {
	return "", false
}

func (Disabled) Embed(context.Context, string) ([]float32, bool) { return nil, false }
