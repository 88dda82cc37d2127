package services

import (
	"context"
	"iter"
	"time"

	"lexdesk/internal/domain/models"
)

// ActivityService derives the activity feed and manages reply threads.
type ActivityService interface {
	// RecordEvent stores a feed post. Replaying an event for the same
	// (document, version) pair returns the post recorded the first time.
	RecordEvent(ctx context.Context, req *RecordEventRequest) (*models.ActivityPost, error)

	// AttachThread appends a reply to a top-level post
	AttachThread(ctx context.Context, req *AttachThreadRequest) (*models.ActivityPost, error)

	// ListFeed yields posts newest-first. The sequence is lazy and may be ranged over repeatedly;
	// each range takes a fresh snapshot.
	ListFeed(ctx context.Context, filter models.FeedFilter) iter.Seq2[models.ActivityPost, error]
}

// RecordEventRequest describes a domain event to turn into a feed post
type RecordEventRequest struct {
	Type            models.ActivityType `json:"type"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Content         string              `json:"content"`
	ClientID        string              `json:"client_id"`
	DocumentID      *string             `json:"document_id,omitempty"`
	DocumentVersion *int                `json:"document_version,omitempty"`
	QueryID         *string             `json:"query_id,omitempty"`
	TemplateID      *string             `json:"template_id,omitempty"`
	Flags           []string            `json:"flags"`
	Opportunities   []string            `json:"opportunities"`

	// DedupKey overrides the derived replay key. When empty, a post with both
	// DocumentID and DocumentVersion is keyed on that pair; anything else is never deduplicated.
	DedupKey string `json:"-"`

	// OccurredAt dates the post. Zero means now. Event consumers pass the
	// entity's own timestamp so the feed order does not depend on delivery order.
	OccurredAt time.Time `json:"-"`
}

// AttachThreadRequest describes a reply to a feed post
type AttachThreadRequest struct {
	ParentID    string              `json:"-"` // Set by handler from path
	Type        models.ActivityType `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Content     string              `json:"content"`
	Author      string              `json:"author"`
	DocumentID  *string             `json:"document_id,omitempty"`
	QueryID     *string             `json:"query_id,omitempty"`
	TemplateID  *string             `json:"template_id,omitempty"`
}
