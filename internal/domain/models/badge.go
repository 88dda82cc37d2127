package models

import "maps"

// Badge is how a status or type value is presented: a label, a colour tone and an icon name.
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
	Icon  string `json:"icon"`
}

// BadgeKind names one enumerated field that clients render as a badge
type BadgeKind string

const (
	BadgeDocumentStatus BadgeKind = "document_status"
	BadgeVersionType    BadgeKind = "version_type"
	BadgeActivityType   BadgeKind = "activity_type"
	BadgeAlertStatus    BadgeKind = "alert_status"
	BadgeQueryStatus    BadgeKind = "query_status"
	BadgeTemplateSource BadgeKind = "template_source"
)

var defaultBadge = Badge{Label: "Unknown", Tone: "gray", Icon: "file-text"}

// badges is the single presentation table for every enumerated value.
var badges = map[BadgeKind]map[string]Badge{
	BadgeDocumentStatus: {
		string(DocumentStatusDraft):         {"Draft", "blue", "edit"},
		string(DocumentStatusInNegotiation): {"In Negotiation", "orange", "clock"},
		string(DocumentStatusExecuted):      {"Executed", "green", "check-circle"},
		string(DocumentStatusCancelled):     {"Cancelled", "red", "x-circle"},
	},
	BadgeVersionType: {
		string(VersionTypeTemplate):        {"Template", "blue", "file-text"},
		string(VersionTypeInitialDraft):    {"Initial Draft", "green", "file-text"},
		string(VersionTypeNegotiationTurn): {"Negotiation Turn", "orange", "message-square"},
		string(VersionTypeFinal):           {"Final Version", "purple", "check-circle"},
	},
	BadgeActivityType: {
		string(ActivityInitialDraft):     {"Initial Draft", "blue", "file-text"},
		string(ActivityFirstTurn):        {"First Turn", "orange", "message-square"},
		string(ActivityNegotiationTurn):  {"Negotiation Turn", "orange", "message-square"},
		string(ActivityTurnReceived):     {"Turn Received", "orange", "message-square"},
		string(ActivityLegalQuery):       {"Legal Query", "yellow", "alert-circle"},
		string(ActivityQueryAnswered):    {"Query Answered", "yellow", "alert-circle"},
		string(ActivityExecutedDocument): {"Executed", "green", "check-circle"},
		string(ActivityTemplateUsed):     {"Template Used", "purple", "file-text"},
		string(ActivityDraftSent):        {"Draft Sent", "blue", "message-square"},
		string(ActivityCancelled):        {"Cancelled", "red", "x-circle"},
	},
	BadgeAlertStatus: {
		string(AlertStatusDraft):     {"Draft", "orange", "edit"},
		string(AlertStatusPublished): {"Published", "green", "send"},
		string(AlertStatusArchived):  {"Archived", "gray", "archive"},
	},
	BadgeQueryStatus: {
		string(QueryStatusPending):   {"Pending", "orange", "clock"},
		string(QueryStatusCompleted): {"Completed", "green", "check-circle"},
		string(QueryStatusArchived):  {"Archived", "gray", "archive"},
	},
	BadgeTemplateSource: {
		string(TemplateSourceFirm): {"Firm", "blue", "building"},
		string(TemplateSourceAI):   {"AI Generated", "purple", "sparkles"},
	},
}

// BadgeFor returns the badge for value, or a gray "Unknown" badge.
func BadgeFor(kind BadgeKind, value string) Badge {
	if b, ok := badges[kind][value]; ok {
		return b
	}
	return defaultBadge
}

// Badges returns a copy of the whole table
func Badges() map[BadgeKind]map[string]Badge {
	out := make(map[BadgeKind]map[string]Badge, len(badges))
	for k, v := range badges {
		out[k] = maps.Clone(v)
	}
	return out
}
