package models

import (
	"slices"
	"time"
)

// AlertStatus is the publication state of a client alert
type AlertStatus string

const (
	AlertStatusDraft     AlertStatus = "draft"
	AlertStatusPublished AlertStatus = "published"
	AlertStatusArchived  AlertStatus = "archived"
)

// EngagementKind selects which alert counter to increment
type EngagementKind string

const (
	EngagementView     EngagementKind = "view"
	EngagementInteract EngagementKind = "engagement"
)

// ClientAlert is a bulletin published to a set of clients.
// Views and Engagement never decrease.
type ClientAlert struct {
	ID           string      `json:"id" yaml:"id"`
	Title        string      `json:"title" yaml:"title"`
	Summary      string      `json:"summary" yaml:"summary"`
	Content      string      `json:"content" yaml:"content"`
	Tags         []string    `json:"tags" yaml:"tags"`
	Audience     []string    `json:"audience" yaml:"audience"`
	Status       AlertStatus `json:"status" yaml:"status"`
	Views        int         `json:"views" yaml:"views"`
	Engagement   int         `json:"engagement" yaml:"engagement"`
	PublishedAt  *time.Time  `json:"published_at,omitempty" yaml:"published_at"`
	CreatedAt    time.Time   `json:"created_at" yaml:"created_at"`
	VersionStamp int64       `json:"version_stamp" yaml:"version_stamp"`
}

// Clone returns a deep copy so callers never alias stored slices.
func (a *ClientAlert) Clone() *ClientAlert {
	c := *a
	c.Tags = slices.Clone(a.Tags)
	c.Audience = slices.Clone(a.Audience)
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// AlertFilter narrows alert listings
type AlertFilter struct {
	Status   AlertStatus
	ClientID string // only alerts whose audience includes this client
}
