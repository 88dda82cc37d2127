package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		kind  BadgeKind
		value string
		want  string
	}{
		{BadgeDocumentStatus, "in_negotiation", "In Negotiation"},
		{BadgeVersionType, "final", "Final Version"},
		{BadgeActivityType, "legal_query", "Legal Query"},
		{BadgeAlertStatus, "published", "Published"},
		{BadgeDocumentStatus, "shredded", "Unknown"},
		{"no_such_kind", "draft", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, BadgeFor(tt.kind, tt.value).Label)
		})
	}
}

// Every enumerated value has an entry, so clients never fall back to "Unknown".
func TestBadgesCoverEveryValue(t *testing.T) {
	table := Badges()

	for _, s := range []DocumentStatus{DocumentStatusDraft, DocumentStatusInNegotiation, DocumentStatusExecuted, DocumentStatusCancelled} {
		assert.Contains(t, table[BadgeDocumentStatus], string(s))
	}
	for _, vt := range []VersionType{VersionTypeTemplate, VersionTypeInitialDraft, VersionTypeNegotiationTurn, VersionTypeFinal} {
		assert.Contains(t, table[BadgeVersionType], string(vt))
	}
	for _, at := range []ActivityType{
		ActivityInitialDraft, ActivityFirstTurn, ActivityNegotiationTurn, ActivityLegalQuery, ActivityExecutedDocument,
		ActivityTemplateUsed, ActivityDraftSent, ActivityTurnReceived, ActivityCancelled, ActivityQueryAnswered,
	} {
		assert.Contains(t, table[BadgeActivityType], string(at))
	}

	table[BadgeAlertStatus]["draft"] = Badge{Label: "changed"}
	assert.Equal(t, "Draft", BadgeFor(BadgeAlertStatus, "draft").Label)
}
