package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
)

const systemPrompt = `You are a legal research assistant supporting a practising lawyer.
Answer with a single JSON object and nothing else, using exactly these keys:
{"summary": string, "issues": [string], "clauses_to_watch": [string], "notes": string, "tags": [string], "full_answer": string}`

func buildPrompt(req *services.AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if req.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", req.ClientName)
	}
	fmt.Fprintf(&b, "Question:\n%s\n", req.Prompt)
	return b.String()
}

type analysisJSON struct {
	Summary        string   `json:"summary"`
	Issues         []string `json:"issues"`
	ClausesToWatch []string `json:"clauses_to_watch"`
	Notes          string   `json:"notes"`
	Tags           []string `json:"tags"`
	FullAnswer     string   `json:"full_answer"`
}

// parseAnalysis reads the model's JSON answer.
// Models that ignore the format instruction get their text kept as the full answer.
func parseAnalysis(text string) *models.Analysis {
	var a analysisJSON
	if err := json.Unmarshal([]byte(cleanJSON(text)), &a); err != nil || a.Summary == "" {
		return &models.Analysis{
			Sections: models.QuerySections{
				Summary:        firstWords(text, 30),
				Issues:         []string{},
				ClausesToWatch: []string{},
			},
			FullAnswer: strings.TrimSpace(text),
			Tags:       []string{},
		}
	}

	full := a.FullAnswer
	if full == "" {
		full = a.Summary
	}
	return &models.Analysis{
		Sections: models.QuerySections{
			Summary:        a.Summary,
			Issues:         nonNil(a.Issues),
			ClausesToWatch: nonNil(a.ClausesToWatch),
			Notes:          a.Notes,
		},
		FullAnswer: full,
		Tags:       nonNil(a.Tags),
	}
}

func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		return strings.Join(words[:n], " ") + "..."
	}
	return strings.Join(words, " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
