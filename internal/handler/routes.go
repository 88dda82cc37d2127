package handler

import "net/http"

// Handlers groups every HTTP handler the server mounts
type Handlers struct {
	Templates *TemplateHandler
	Documents *DocumentHandler
	Activity  *ActivityHandler
	Queries   *QueryHandler
	Alerts    *AlertHandler
	Practice  *PracticeHandler
	Search    *SearchHandler
	Display   *DisplayHandler
}

// Register mounts all routes on mux using Go 1.22 method and wildcard patterns
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Template library
	mux.HandleFunc("GET /api/templates", h.Templates.ListTemplates)
	mux.HandleFunc("POST /api/templates", h.Templates.CreateTemplate)
	mux.HandleFunc("GET /api/templates/{id}", h.Templates.GetTemplate)
	mux.HandleFunc("GET /api/templates/{id}/versions", h.Templates.ListVersions)
	mux.HandleFunc("POST /api/templates/{id}/versions", h.Templates.AppendVersion)
	mux.HandleFunc("POST /api/templates/{id}/share", h.Templates.ShareTemplate)

	// Negotiated documents
	mux.HandleFunc("GET /api/documents", h.Documents.ListDocuments)
	mux.HandleFunc("POST /api/documents", h.Documents.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", h.Documents.GetDocument)
	mux.HandleFunc("POST /api/documents/{id}/versions", h.Documents.AppendVersion)
	mux.HandleFunc("POST /api/documents/{id}/cancel", h.Documents.CancelDocument)
	mux.HandleFunc("GET /api/documents/{id}/compare", h.Documents.CompareVersions)
	mux.HandleFunc("GET /api/documents/{id}/archive", h.Documents.GetArchiveLink)

	// Activity feed
	mux.HandleFunc("GET /api/activity", h.Activity.ListFeed)
	mux.HandleFunc("POST /api/activity/{id}/thread", h.Activity.AttachThread)

	// Legal queries
	mux.HandleFunc("GET /api/queries", h.Queries.ListQueries)
	mux.HandleFunc("POST /api/queries", h.Queries.SubmitQuery)
	mux.HandleFunc("GET /api/queries/{id}", h.Queries.GetQuery)
	mux.HandleFunc("POST /api/queries/{id}/analyze", h.Queries.AnalyzeQuery)
	mux.HandleFunc("POST /api/queries/{id}/archive", h.Queries.ArchiveQuery)
	mux.HandleFunc("GET /api/models", h.Queries.ListModels)

	// Client alerts
	mux.HandleFunc("GET /api/alerts", h.Alerts.ListAlerts)
	mux.HandleFunc("POST /api/alerts", h.Alerts.CreateAlert)
	mux.HandleFunc("GET /api/alerts/{id}", h.Alerts.GetAlert)
	mux.HandleFunc("POST /api/alerts/{id}/audience", h.Alerts.SetAudience)
	mux.HandleFunc("POST /api/alerts/{id}/publish", h.Alerts.PublishAlert)
	mux.HandleFunc("POST /api/alerts/{id}/archive", h.Alerts.ArchiveAlert)
	mux.HandleFunc("POST /api/alerts/{id}/engagement", h.Alerts.RecordEngagement)

	// Practice
	mux.HandleFunc("GET /api/profile", h.Practice.GetProfile)
	mux.HandleFunc("PATCH /api/profile", h.Practice.UpdateProfile)
	mux.HandleFunc("GET /api/clients", h.Practice.ListClients)
	mux.HandleFunc("GET /api/insights", h.Practice.GetInsights)

	mux.HandleFunc("GET /api/search", h.Search.Search)
	mux.HandleFunc("GET /api/display", h.Display.Display)
	mux.HandleFunc("GET /api/badges", h.Display.Badges)
}
