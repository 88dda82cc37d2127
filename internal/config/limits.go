package config

const (
	// MaxTemplateNameLength is the maximum length for template names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTemplateNameLength = 255

	// MaxAlertTitleLength is the maximum length for alert titles.
	MaxAlertTitleLength = 255

	// MaxCategoryLength bounds template categories ("Confidentiality", "Investment", ...)
	MaxCategoryLength = 100

	// MaxPromptLength is the maximum length of a legal query prompt.
	// Prompts are sent verbatim to the analysis model.
	MaxPromptLength = 10000

	// MaxTopicLength bounds the query topic label
	MaxTopicLength = 100

	// MaxShareClients caps how many clients one share call may add.
	MaxShareClients = 100

	// MaxVersionContentLength is the maximum size of a template or document version body (1MB).
	MaxVersionContentLength = 1 << 20

	// MaxProfileFieldLength bounds each lawyer profile field
	MaxProfileFieldLength = 255

	// MaxChangeNotes caps the change-note list on a document version
	MaxChangeNotes = 50
)
