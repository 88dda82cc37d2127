package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
)

// FixtureAnalyzer answers offline with a canned analysis built from the prompt and topic.
type FixtureAnalyzer struct {
	// Delay simulates model latency; zero answers immediately
	Delay time.Duration
}

var _ services.Analyzer = (*FixtureAnalyzer)(nil)

// Analyze builds the canned analysis, or fails with ctx.Err() if ctx ends first
func (f *FixtureAnalyzer) Analyze(ctx context.Context, req *services.AnalysisRequest) (*models.Analysis, error) {
	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	topic := strings.ToLower(req.Topic)
	return &models.Analysis{
		Sections: models.QuerySections{
			Summary: fmt.Sprintf("Analysis of %s query with key legal considerations", topic),
			Issues: []string{
				"Regulatory compliance requirements",
				"Potential legal risks",
				"Documentation needs",
			},
			ClausesToWatch: []string{
				"Key contractual provisions",
				"Liability limitations",
				"Termination clauses",
			},
			Notes: fmt.Sprintf("Recommend consulting with %s specialist for implementation details.", topic),
		},
		FullAnswer: fmt.Sprintf("Based on your query regarding %s, here is a comprehensive legal analysis...", topic),
		Tags:       fixtureTags(req.Prompt, topic),
	}, nil
}

var promptKeywords = []string{"contract", "compliance", "risk", "employment"}

// fixtureTags returns at most five tags: the common ones, then keywords found in the prompt
func fixtureTags(prompt, topic string) []string {
	tags := []string{"legal advice", "analysis", topic}
	lower := strings.ToLower(prompt)
	for _, kw := range promptKeywords {
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}
	return tags[:min(len(tags), 5)]
}
