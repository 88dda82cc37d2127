package services

import "encoding/json"

// Request bodies take the snake_case keys used in responses and also the
// camelCase keys dashboard clients send (clientIds, clientId, templateId, ...).
// When both spellings are present the snake_case value wins.

func (r *CreateTemplateRequest) UnmarshalJSON(data []byte) error {
	type plain CreateTemplateRequest
	var aux struct {
		plain
		SharedWithAlt []string `json:"sharedWith"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CreateTemplateRequest(aux.plain)
	r.SharedWith = firstSlice(r.SharedWith, aux.SharedWithAlt)
	return nil
}

func (r *ShareRequest) UnmarshalJSON(data []byte) error {
	type plain ShareRequest
	var aux struct {
		plain
		ClientIDsAlt []string `json:"clientIds"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ShareRequest(aux.plain)
	r.ClientIDs = firstSlice(r.ClientIDs, aux.ClientIDsAlt)
	return nil
}

func (r *CreateDocumentRequest) UnmarshalJSON(data []byte) error {
	type plain CreateDocumentRequest
	var aux struct {
		plain
		TemplateIDAlt string `json:"templateId"`
		ClientIDAlt   string `json:"clientId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CreateDocumentRequest(aux.plain)
	r.TemplateID = firstString(r.TemplateID, aux.TemplateIDAlt)
	r.ClientID = firstString(r.ClientID, aux.ClientIDAlt)
	return nil
}

func (r *SubmitQueryRequest) UnmarshalJSON(data []byte) error {
	type plain SubmitQueryRequest
	var aux struct {
		plain
		ClientIDAlt string `json:"clientId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = SubmitQueryRequest(aux.plain)
	r.ClientID = firstString(r.ClientID, aux.ClientIDAlt)
	return nil
}

func (r *AttachThreadRequest) UnmarshalJSON(data []byte) error {
	type plain AttachThreadRequest
	var aux struct {
		plain
		DocumentIDAlt *string `json:"documentId"`
		QueryIDAlt    *string `json:"queryId"`
		TemplateIDAlt *string `json:"templateId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = AttachThreadRequest(aux.plain)
	r.DocumentID = firstPtr(r.DocumentID, aux.DocumentIDAlt)
	r.QueryID = firstPtr(r.QueryID, aux.QueryIDAlt)
	r.TemplateID = firstPtr(r.TemplateID, aux.TemplateIDAlt)
	return nil
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstSlice(a, b []string) []string {
	if a != nil {
		return a
	}
	return b
}

func firstPtr[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}
