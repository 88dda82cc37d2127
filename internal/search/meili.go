package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"lexdesk/internal/domain/models"
)

const (
	idxTemplates = "lexdesk_templates"
	idxDocuments = "lexdesk_documents"
	idxQueries   = "lexdesk_queries"
	idxAlerts    = "lexdesk_alerts"
)

var indexByType = map[models.SearchResultType]string{
	models.SearchTypeTemplate: idxTemplates,
	models.SearchTypeDocument: idxDocuments,
	models.SearchTypeQuery:    idxQueries,
	models.SearchTypeAlert:    idxAlerts,
}

// Meili implements search and indexing via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
	logger  *slog.Logger
}

// NewMeili creates a Meilisearch client and configures indexes.
// An unreachable server is not an error: the client reports unhealthy and keeps probing.
func NewMeili(url, apiKey string, logger *slog.Logger) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		done:   make(chan struct{}),
		logger: logger,
	}

	if _, err := m.client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	filterable := []interface{}{"type", "clientId", "status"}
	searchable := []string{"title", "body"}

	for _, uid := range []string{idxTemplates, idxDocuments, idxQueries, idxAlerts} {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: uid, PrimaryKey: "id"}); err != nil {
			m.logger.Debug("create index (may already exist)", "index", uid, "error", err)
		}

		index := m.client.Index(uid)
		if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
			m.logger.Warn("update filterable attributes", "index", uid, "error", err)
		}
		if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
			m.logger.Warn("update searchable attributes", "index", uid, "error", err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor
func (m *Meili) Close() error {
	close(m.done)
	return nil
}

// Healthy reports whether Meilisearch is reachable
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search runs one multi-search across the selected indexes
func (m *Meili) Search(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	for _, typ := range models.SearchTypes {
		if q.Type != "" && q.Type != typ {
			continue
		}
		queries = append(queries, &meili.SearchRequest{
			IndexUID:              indexByType[typ],
			Query:                 q.Text,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToCrop:      []string{"body"},
			CropLength:            30,
			AttributesToHighlight: []string{"title", "body"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
		})
	}
	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{Queries: queries})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []models.SearchResult
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit))
		}
	}
	return results, total, nil
}

func hitToResult(hit meili.Hit) models.SearchResult {
	return models.SearchResult{
		Type:     models.SearchResultType(decodeString(hit, "type")),
		ID:       decodeString(hit, "id"),
		Title:    firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title")),
		Snippet:  firstNonBlank(decodeFormattedString(hit, "body"), decodeString(hit, "body")),
		ClientID: decodeString(hit, "clientId"),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(formatted[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Index adds or replaces records, grouped by their index
func (m *Meili) Index(records ...Record) error {
	grouped := make(map[string][]Record)
	for _, r := range records {
		uid, ok := indexByType[models.SearchResultType(r.Type)]
		if !ok {
			return fmt.Errorf("no index for record type %q", r.Type)
		}
		grouped[uid] = append(grouped[uid], r)
	}
	for uid, batch := range grouped {
		if _, err := m.client.Index(uid).AddDocuments(batch, nil); err != nil {
			return fmt.Errorf("index %d records into %s: %w", len(batch), uid, err)
		}
	}
	return nil
}

// Delete removes one entity from its index
func (m *Meili) Delete(typ models.SearchResultType, id string) error {
	uid, ok := indexByType[typ]
	if !ok {
		return fmt.Errorf("no index for type %q", typ)
	}
	_, err := m.client.Index(uid).DeleteDocument(id, nil)
	return err
}
