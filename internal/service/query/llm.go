package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
)

const blockTypeText = "text"

// ProviderFactory creates LLM provider instances
type ProviderFactory struct {
	anthropicAPIKey string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(anthropicAPIKey string) *ProviderFactory {
	return &ProviderFactory{anthropicAPIKey: anthropicAPIKey}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "anthropic" - Claude models via Anthropic API
//   - "lorem" - Mock provider for testing (no API key required)
func (f *ProviderFactory) GetProvider(providerName string) (llmprovider.Provider, error) {
	switch providerName {
	case "anthropic":
		if f.anthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		provider, err := anthropic.NewProvider(f.anthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
		}
		return provider, nil

	case "lorem":
		return lorem.NewProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// Supports reports whether a provider can be created without error
func (f *ProviderFactory) Supports(providerName string) bool {
	switch providerName {
	case "anthropic":
		return f.anthropicAPIKey != ""
	case "lorem":
		return true
	}
	return false
}

// LLMAnalyzer answers queries through meridian-llm-go providers
type LLMAnalyzer struct {
	factory *ProviderFactory
	logger  *slog.Logger
}

var _ services.Analyzer = (*LLMAnalyzer)(nil)

// NewLLMAnalyzer creates a new LLM analyzer
func NewLLMAnalyzer(factory *ProviderFactory, logger *slog.Logger) *LLMAnalyzer {
	return &LLMAnalyzer{factory: factory, logger: logger}
}

// Analyze sends one user message carrying the instructions and the question
func (a *LLMAnalyzer) Analyze(ctx context.Context, req *services.AnalysisRequest) (*models.Analysis, error) {
	info, err := ParseModel(req.Model)
	if err != nil {
		return nil, err
	}
	provider, err := a.factory.GetProvider(info.Provider)
	if err != nil {
		return nil, err
	}

	text := systemPrompt + "\n\n" + buildPrompt(req)
	resp, err := provider.GenerateResponse(ctx, &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{{
			Role: "user",
			Blocks: []*llmprovider.Block{{
				BlockType:   blockTypeText,
				Sequence:    0,
				TextContent: &text,
			}},
		}},
		Model: info.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("%s generate: %w", provider.Name().String(), err)
	}

	var out strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType == blockTypeText && block.TextContent != nil {
			out.WriteString(*block.TextContent)
		}
	}

	a.logger.Debug("llm analysis received",
		"query_id", req.QueryID,
		"provider", provider.Name().String(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return parseAnalysis(out.String()), nil
}
