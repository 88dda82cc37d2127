package models

// TemplateUsage counts how often a template has been instantiated
type TemplateUsage struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

// TopicCount counts legal queries per topic
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// ClientActivity counts activity per client
type ClientActivity struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

// Insights is the dashboard summary, derived on read.
type Insights struct {
	TopTemplates   []TemplateUsage  `json:"top_templates"`
	TopQueryTopics []TopicCount     `json:"top_query_topics"`
	ActiveClients  []ClientActivity `json:"active_clients"`
}

// StatusRow is one line of the operator status display
type StatusRow struct {
	Component string `json:"component"`
	State     string `json:"state"`
	Detail    string `json:"detail,omitempty"`
}
