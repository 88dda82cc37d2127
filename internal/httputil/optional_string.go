package httputil

import (
	"bytes"
	"encoding/json"

	"lexdesk/internal/domain/models"
)

// OptionalString is a PATCH body field (RFC 7396): absent leaves the value alone,
// null clears it, a string sets it.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs for keys present in the body.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Field converts to the transport-free update field used by services
func (o OptionalString) Field() models.OptionalField {
	return models.OptionalField{Present: o.Present, Value: o.Value}
}
