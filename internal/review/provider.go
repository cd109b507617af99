package review

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/XiaoConstantine/anthropic-go/anthropic"
	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/llms"

	"github.com/prwatch/prwatch/internal/config"
)

// AIReviewError indicates AI-review misconfiguration. It is raised at
// orchestrator construction, never at generation time.
type AIReviewError struct {
	Reason string
}

func (e *AIReviewError) Error() string {
	return "ai review: " + e.Reason
}

// Provider generates review text from a prompt. It is the single
// capability a concrete AI backend must offer.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Supported provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// llmProvider adapts a dspy-go LLM to the Provider capability. Generation
// parameters match the original review client (4096 max tokens, 0.7
// temperature).
type llmProvider struct {
	llm core.LLM
}

func (p *llmProvider) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := p.llm.Generate(ctx, prompt,
		core.WithMaxTokens(4096),
		core.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// NewProvider builds the configured AI backend. An unrecognized provider
// identifier or a missing credential is a configuration-time error.
func NewProvider(cfg config.AIReview) (Provider, error) {
	switch cfg.Provider {
	case ProviderClaude:
		key := firstNonEmpty(cfg.Claude.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key == "" {
			return nil, &AIReviewError{Reason: "claude API key not configured: set ANTHROPIC_API_KEY or ai_review.claude.api_key"}
		}
		llm, err := llms.NewAnthropicLLM(key, anthropic.ModelID(cfg.Claude.Model))
		if err != nil {
			return nil, &AIReviewError{Reason: fmt.Sprintf("failed to create claude client: %v", err)}
		}
		return &llmProvider{llm: llm}, nil

	case ProviderOpenAI:
		key := firstNonEmpty(cfg.OpenAI.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, &AIReviewError{Reason: "openai API key not configured: set ai_review.openai.api_key or OPENAI_API_KEY"}
		}
		llms.EnsureFactory()
		if err := core.ConfigureDefaultLLM(key, core.ModelID(cfg.OpenAI.Model)); err != nil {
			return nil, &AIReviewError{Reason: fmt.Sprintf("failed to configure openai client: %v", err)}
		}
		return &llmProvider{llm: core.GetDefaultLLM()}, nil

	default:
		return nil, &AIReviewError{Reason: fmt.Sprintf("unknown AI provider: %q", cfg.Provider)}
	}
}

// ModelName reports the configured model for the selected provider, for
// the review comment's metadata line.
func ModelName(cfg config.AIReview) string {
	switch cfg.Provider {
	case ProviderClaude:
		return cfg.Claude.Model
	case ProviderOpenAI:
		return cfg.OpenAI.Model
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
