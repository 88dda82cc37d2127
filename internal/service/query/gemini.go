package query

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
)

// GeminiAnalyzer answers gemini-* models through the Gemini API
type GeminiAnalyzer struct {
	client *genai.Client
	logger *slog.Logger
}

var _ services.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer creates a Gemini client for apiKey
func NewGeminiAnalyzer(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client, logger: logger}, nil
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, req *services.AnalysisRequest) (*models.Analysis, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(buildPrompt(req)), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates for %s", req.Model)
	}

	g.logger.Debug("gemini analysis received", "query_id", req.QueryID, "model", req.Model)
	return parseAnalysis(result.Candidates[0].Content.Parts[0].Text), nil
}
