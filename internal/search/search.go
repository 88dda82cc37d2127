// Package search indexes templates, documents, legal queries and client alerts for free-text lookup.
package search

import (
	"strings"
	"unicode"

	"lexdesk/internal/domain/models"
)

// Record is the flattened form of an entity pushed to an index
type Record struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
}

// Indexer can push entities into a search index
type Indexer interface {
	Index(records ...Record) error
	Delete(typ models.SearchResultType, id string) error
}

// TemplateRecord flattens a template; the body is its current version
func TemplateRecord(t *models.Template) Record {
	body := t.Description
	if v := t.CurrentVersion(); v != nil {
		body = strings.TrimSpace(t.Description + "\n" + v.Content)
	}
	return Record{
		ID:     t.ID,
		Type:   string(models.SearchTypeTemplate),
		Title:  t.Name,
		Body:   body,
		Status: string(t.Source),
	}
}

// DocumentRecord flattens a document; the body is its latest version
func DocumentRecord(d *models.Document) Record {
	body := ""
	if v := d.LatestVersion(); v != nil {
		body = v.Content
	}
	return Record{
		ID:       d.ID,
		Type:     string(models.SearchTypeDocument),
		Title:    d.TemplateName + " - " + d.ClientName,
		Body:     body,
		ClientID: d.ClientID,
		Status:   string(d.Status),
	}
}

// QueryRecord flattens a legal query
func QueryRecord(q *models.LegalQuery) Record {
	return Record{
		ID:       q.ID,
		Type:     string(models.SearchTypeQuery),
		Title:    q.Topic,
		Body:     strings.TrimSpace(q.Prompt + "\n" + q.Sections.Summary + "\n" + q.FullAnswer),
		ClientID: q.ClientID,
		Status:   string(q.Status),
	}
}

// AlertRecord flattens a client alert; tags are searchable alongside the summary
func AlertRecord(a *models.ClientAlert) Record {
	return Record{
		ID:     a.ID,
		Type:   string(models.SearchTypeAlert),
		Title:  a.Title,
		Body:   strings.TrimSpace(a.Summary + "\n" + strings.Join(a.Tags, " ") + "\n" + a.Content),
		Status: string(a.Status),
	}
}

// snippet returns up to n runes of body starting near the first match of text
func snippet(body, text string, n int) string {
	runes := []rune(body)
	start := 0
	if i := indexFold(runes, []rune(text)); i > 0 {
		start = max(0, i-n/4)
	}
	end := min(len(runes), start+n)
	return strings.TrimSpace(string(runes[start:end]))
}

// indexFold is a case-insensitive rune index; -1 if absent
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// containsFold reports whether any of fields contains text, ignoring case
func containsFold(text string, fields ...string) bool {
	needle := []rune(text)
	for _, f := range fields {
		if indexFold([]rune(f), needle) >= 0 {
			return true
		}
	}
	return false
}

func nonNil(r []models.SearchResult) []models.SearchResult {
	if r == nil {
		return []models.SearchResult{}
	}
	return r
}
