package activity

import (
	"context"
	"fmt"
	"strings"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/service/versionchain"
)

// Attach subscribes the aggregator to the events it turns into feed posts
func (a *Aggregator) Attach(bus events.Bus) {
	bus.Subscribe(events.TopicDocumentVersionAppended, "activity", a.HandleEvent)
	bus.Subscribe(events.TopicDocumentCancelled, "activity", a.HandleEvent)
	bus.Subscribe(events.TopicQuerySubmitted, "activity", a.HandleEvent)
	bus.Subscribe(events.TopicQueryCompleted, "activity", a.HandleEvent)
}

// HandleEvent records the feed post for one domain event. Unknown topics are ignored.
func (a *Aggregator) HandleEvent(ctx context.Context, e events.Event) error {
	switch e.Topic {
	case events.TopicDocumentVersionAppended:
		p, ok := e.Payload.(events.DocumentPayload)
		if !ok || p.Document == nil || p.Version == nil {
			return fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Topic)
		}
		_, err := a.RecordEvent(ctx, documentVersionPost(p.Document, p.Version))
		return err

	case events.TopicDocumentCancelled:
		p, ok := e.Payload.(events.DocumentPayload)
		if !ok || p.Document == nil {
			return fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Topic)
		}
		_, err := a.RecordEvent(ctx, cancelledPost(p.Document, p.Reason))
		return err

	case events.TopicQuerySubmitted:
		p, ok := e.Payload.(events.QueryPayload)
		if !ok || p.Query == nil {
			return fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Topic)
		}
		_, err := a.RecordEvent(ctx, queryPost(p.Query))
		return err

	case events.TopicQueryCompleted:
		p, ok := e.Payload.(events.QueryPayload)
		if !ok || p.Query == nil {
			return fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Topic)
		}
		return a.attachAnswer(ctx, p.Query)
	}
	return nil
}

func queryKey(queryID string) string {
	return "query:" + queryID + ":submitted"
}

func documentVersionPost(doc *models.Document, v *models.DocumentVersion) *services.RecordEventRequest {
	docID := doc.ID
	version := v.Version
	templateID := doc.TemplateID

	req := &services.RecordEventRequest{
		ClientID:        doc.ClientID,
		DocumentID:      &docID,
		DocumentVersion: &version,
		TemplateID:      &templateID,
		Content:         strings.Join(v.Changes, "\n"),
		OccurredAt:      v.CreatedAt,
	}

	switch v.Type {
	case models.VersionTypeTemplate:
		req.Type = models.ActivityTemplateUsed
		req.Title = "Template used: " + doc.TemplateName
		req.Description = fmt.Sprintf("Base template selected for %s engagement", doc.ClientName)
	case models.VersionTypeInitialDraft:
		req.Type = models.ActivityInitialDraft
		req.Title = fmt.Sprintf("%s generated", doc.TemplateName)
		req.Description = fmt.Sprintf("Initial draft created for %s", doc.ClientName)
	case models.VersionTypeNegotiationTurn:
		req.Type = models.ActivityNegotiationTurn
		req.Title = fmt.Sprintf("%s with %s", doc.TemplateName, doc.ClientName)
		req.Description = fmt.Sprintf("Negotiation turn received (v%d)", v.Version)
		if isFirstTurn(doc, v.Version) {
			req.Type = models.ActivityFirstTurn
			req.Description = "First negotiation turn received"
		}
		req.Flags = changeFlags(doc, v.Version)
	case models.VersionTypeFinal:
		req.Type = models.ActivityExecutedDocument
		req.Title = fmt.Sprintf("%s executed", doc.TemplateName)
		req.Description = fmt.Sprintf("Final version v%d signed with %s", v.Version, doc.ClientName)
	}
	return req
}

// isFirstTurn reports whether version n is the earliest negotiation turn in the chain
func isFirstTurn(doc *models.Document, n int) bool {
	for _, v := range doc.Versions {
		if v.Type == models.VersionTypeNegotiationTurn {
			return v.Version == n
		}
	}
	return false
}

// changeFlags summarises how much of the previous version a turn rewrote
func changeFlags(doc *models.Document, n int) []string {
	prev, ok := doc.Version(n - 1)
	if !ok {
		return nil
	}
	cur, ok := doc.Version(n)
	if !ok {
		return nil
	}

	_, ins, del := versionchain.DiffLines(prev.Content, cur.Content)
	total := len(strings.Split(strings.TrimSuffix(prev.Content, "\n"), "\n"))
	changed := max(ins, del)
	if changed == 0 {
		return nil
	}
	pct := min(100, changed*100/total)
	return []string{fmt.Sprintf("%d%% of lines changed", pct)}
}

func cancelledPost(doc *models.Document, reason string) *services.RecordEventRequest {
	docID := doc.ID
	templateID := doc.TemplateID
	desc := fmt.Sprintf("Negotiation with %s cancelled at v%d", doc.ClientName, doc.CurrentVersion)
	if reason != "" {
		desc += ": " + reason
	}
	return &services.RecordEventRequest{
		Type:        models.ActivityCancelled,
		Title:       fmt.Sprintf("%s cancelled", doc.TemplateName),
		Description: desc,
		ClientID:    doc.ClientID,
		DocumentID:  &docID,
		TemplateID:  &templateID,
		DedupKey:    "document:" + doc.ID + ":cancelled",
		OccurredAt:  doc.UpdatedAt,
	}
}

func queryPost(q *models.LegalQuery) *services.RecordEventRequest {
	queryID := q.ID
	return &services.RecordEventRequest{
		Type:        models.ActivityLegalQuery,
		Title:       "Legal query: " + q.Topic,
		Description: truncate(q.Prompt, 200),
		ClientID:    q.ClientID,
		QueryID:     &queryID,
		DedupKey:    queryKey(q.ID),
		OccurredAt:  q.CreatedAt,
	}
}

// attachAnswer threads the completed analysis under the query's feed post
func (a *Aggregator) attachAnswer(ctx context.Context, q *models.LegalQuery) error {
	parent, err := a.RecordEvent(ctx, queryPost(q))
	if err != nil {
		return err
	}
	for _, tp := range parent.ThreadPosts {
		if tp.Type == models.ActivityQueryAnswered && tp.QueryID != nil && *tp.QueryID == q.ID {
			return nil
		}
	}

	queryID := q.ID
	_, err = a.AttachThread(ctx, &services.AttachThreadRequest{
		ParentID:    parent.ID,
		Type:        models.ActivityQueryAnswered,
		Title:       "Analysis ready",
		Description: q.Sections.Summary,
		Content:     q.FullAnswer,
		Author:      q.Model,
		QueryID:     &queryID,
	})
	return err
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
