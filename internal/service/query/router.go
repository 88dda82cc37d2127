package query

import (
	"context"
	"log/slog"

	"lexdesk/internal/capabilities"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
)

// Router picks an analyzer by the catalogue provider of the requested model.
// Models whose provider is not configured are answered by the fallback.
type Router struct {
	catalogue *capabilities.Registry
	routes    map[string]services.Analyzer
	fallback  services.Analyzer
	logger    *slog.Logger
}

var _ services.Analyzer = (*Router)(nil)

// NewRouter creates a router that answers through fallback until providers are added
func NewRouter(catalogue *capabilities.Registry, fallback services.Analyzer, logger *slog.Logger) *Router {
	return &Router{
		catalogue: catalogue,
		routes:    make(map[string]services.Analyzer),
		fallback:  fallback,
		logger:    logger,
	}
}

// Route registers the analyzer for a catalogue provider name
func (r *Router) Route(provider string, a services.Analyzer) *Router {
	r.routes[provider] = a
	return r
}

func (r *Router) Analyze(ctx context.Context, req *services.AnalysisRequest) (*models.Analysis, error) {
	return r.pick(req.Model).Analyze(ctx, req)
}

func (r *Router) pick(model string) services.Analyzer {
	provider := ""
	if opt, ok := r.catalogue.Get(model); ok {
		provider = opt.Provider
	} else if info, err := ParseModel(model); err == nil {
		provider = info.Provider
	}

	if a, ok := r.routes[provider]; ok {
		return a
	}
	r.logger.Debug("no analyzer configured, using fallback", "model", model, "provider", provider)
	return r.fallback
}
