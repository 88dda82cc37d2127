package services

import (
	"context"

	"lexdesk/internal/domain/models"
)

// QueryService handles legal query submission and the analysis lifecycle.
type QueryService interface {
	// SubmitQuery stores a pending query and starts analysis in the background
	SubmitQuery(ctx context.Context, req *SubmitQueryRequest) (*models.LegalQuery, error)
	GetQuery(ctx context.Context, id string) (*models.LegalQuery, error)
	ListQueries(ctx context.Context, filter models.QueryFilter) ([]models.LegalQuery, error)

	// AnalyzeQuery re-runs analysis synchronously for a pending query.
	// Fails with domain.ErrQueryTimeout if the analyzer does not answer in time.
	AnalyzeQuery(ctx context.Context, id string) (*models.LegalQuery, error)

	ArchiveQuery(ctx context.Context, id string, ifMatch *int64) (*models.LegalQuery, error)

	// ListModels returns the selectable analysis models
	ListModels() []models.ModelOption
}

// SubmitQueryRequest represents a new legal query
type SubmitQueryRequest struct {
	ClientID    string   `json:"client_id"`
	Prompt      string   `json:"prompt"`
	Topic       string   `json:"topic"`
	Model       string   `json:"model"`
	Attachments []string `json:"attachments"`
}

// AnalysisRequest is what an Analyzer receives
type AnalysisRequest struct {
	QueryID    string
	ClientName string
	Prompt     string
	Topic      string
	Model      string
}

// Analyzer produces a structured analysis for a legal query.
// Implementations must honour ctx cancellation.
type Analyzer interface {
	Analyze(ctx context.Context, req *AnalysisRequest) (*models.Analysis, error)
}
