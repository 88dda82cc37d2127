package models

import (
	"slices"
	"time"
)

// ActivityType classifies a feed entry
type ActivityType string

const (
	ActivityInitialDraft     ActivityType = "initial_draft"
	ActivityFirstTurn        ActivityType = "first_turn"
	ActivityNegotiationTurn  ActivityType = "negotiation_turn"
	ActivityLegalQuery       ActivityType = "legal_query"
	ActivityExecutedDocument ActivityType = "executed_document"
	ActivityTemplateUsed     ActivityType = "template_used"
	ActivityDraftSent        ActivityType = "draft_sent"
	ActivityTurnReceived     ActivityType = "turn_received"
	ActivityCancelled        ActivityType = "cancelled"
	ActivityQueryAnswered    ActivityType = "query_answered"
)

// PostFields are shared by top-level posts and thread replies.
// IDs are weak references; the feed never owns the referenced entities.
type PostFields struct {
	ID              string       `json:"id" yaml:"id"`
	Type            ActivityType `json:"type" yaml:"type"`
	Title           string       `json:"title" yaml:"title"`
	Description     string       `json:"description" yaml:"description"`
	Content         string       `json:"content,omitempty" yaml:"content"`
	ClientID        string       `json:"client_id" yaml:"client_id"`
	DocumentID      *string      `json:"document_id,omitempty" yaml:"document_id"`
	DocumentVersion *int         `json:"document_version,omitempty" yaml:"document_version"`
	QueryID         *string      `json:"query_id,omitempty" yaml:"query_id"`
	TemplateID      *string      `json:"template_id,omitempty" yaml:"template_id"`
	CreatedAt       time.Time    `json:"created_at" yaml:"created_at"`
}

// ThreadPost is a reply attached to an ActivityPost. It has no thread of its own,
// so feed threads are at most one level deep.
type ThreadPost struct {
	PostFields `yaml:",inline"`
	Author     string `json:"author,omitempty" yaml:"author"`
}

// ActivityPost is a top-level feed entry derived from a domain event.
type ActivityPost struct {
	PostFields    `yaml:",inline"`
	Flags         []string     `json:"flags" yaml:"flags"`
	Opportunities []string     `json:"opportunities" yaml:"opportunities"`
	ThreadPosts   []ThreadPost `json:"thread_posts" yaml:"thread_posts"`

	// DedupKey identifies the source event, e.g. "document:doc-1:v3".
	// Empty for posts that are not derived from a replayable event.
	DedupKey string `json:"-" yaml:"dedup_key"`
}

// Clone returns a deep copy so callers never alias stored slices.
func (p *ActivityPost) Clone() *ActivityPost {
	c := *p
	c.Flags = slices.Clone(p.Flags)
	c.Opportunities = slices.Clone(p.Opportunities)
	c.ThreadPosts = slices.Clone(p.ThreadPosts)
	return &c
}

// HasThread reports whether any replies are attached
func (p *ActivityPost) HasThread() bool {
	return len(p.ThreadPosts) > 0
}

// FeedFilter narrows the activity feed. Empty fields match everything.
type FeedFilter struct {
	ClientID   string
	DocumentID string
	Limit      int
}

// Matches reports whether the post passes the filter.
func (f FeedFilter) Matches(p *ActivityPost) bool {
	if f.ClientID != "" && p.ClientID != f.ClientID {
		return false
	}
	if f.DocumentID != "" && (p.DocumentID == nil || *p.DocumentID != f.DocumentID) {
		return false
	}
	return true
}
