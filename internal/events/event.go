package events

import (
	"time"

	"github.com/google/uuid"

	"lexdesk/internal/domain/models"
)

// Topic names a kind of domain event
type Topic string

const (
	TopicDocumentVersionAppended Topic = "document.version_appended"
	TopicDocumentCancelled       Topic = "document.cancelled"
	TopicTemplateCreated         Topic = "template.created"
	TopicTemplateVersionAppended Topic = "template.version_appended"
	TopicTemplateShared          Topic = "template.shared"
	TopicQuerySubmitted          Topic = "query.submitted"
	TopicQueryCompleted          Topic = "query.completed"
	TopicQueryFailed             Topic = "query.failed"
	TopicQueryArchived           Topic = "query.archived"
	TopicAlertCreated            Topic = "alert.created"
	TopicAlertPublished          Topic = "alert.published"
	TopicAlertAudience           Topic = "alert.audience_changed"
	TopicAlertArchived           Topic = "alert.archived"
	TopicProfileUpdated          Topic = "profile.updated"

	// TopicAll subscribes to every topic
	TopicAll Topic = "*"
)

// Event is a change applied to one entity.
// Payload carries a snapshot of the entity after the change; it is never shared with the store.
type Event struct {
	ID        string            `json:"id"`
	Topic     Topic             `json:"topic"`
	EntityID  string            `json:"entity_id"`
	Version   int               `json:"version,omitempty"`
	Actor     string            `json:"actor,omitempty"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// New builds an event stamped with a fresh ID and the current time
func New(topic Topic, entityID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		EntityID:  entityID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Payload types, one per entity kind.

// DocumentPayload accompanies document.* events
type DocumentPayload struct {
	Document *models.Document        `json:"document"`
	Version  *models.DocumentVersion `json:"appended_version,omitempty"`
	Reason   string                  `json:"reason,omitempty"`
}

// TemplatePayload accompanies template.* events
type TemplatePayload struct {
	Template *models.Template `json:"template"`
	Added    []string         `json:"added_clients,omitempty"`
}

// QueryPayload accompanies query.* events
type QueryPayload struct {
	Query *models.LegalQuery `json:"query"`
	Error string             `json:"error,omitempty"`
}

// AlertPayload accompanies alert.* events
type AlertPayload struct {
	Alert *models.ClientAlert `json:"alert"`
}

// ProfilePayload accompanies profile.updated
type ProfilePayload struct {
	Profile *models.LawyerProfile `json:"profile"`
}
