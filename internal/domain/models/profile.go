package models

import "time"

// LawyerProfile is the signed-in lawyer's profile. There is exactly one per deployment.
type LawyerProfile struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Title        string    `json:"title" yaml:"title"`
	Email        string    `json:"email" yaml:"email"`
	Phone        string    `json:"phone" yaml:"phone"`
	FirmName     string    `json:"firm_name" yaml:"firm_name"`
	LastUpdated  time.Time `json:"last_updated" yaml:"last_updated"`
	VersionStamp int64     `json:"version_stamp" yaml:"version_stamp"`
}

// OptionalField tracks tri-state semantics for profile updates (RFC 7396 PATCH).
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalField struct {
	Present bool
	Value   *string
}

// UpdateProfileRequest is a partial profile update
type UpdateProfileRequest struct {
	Name     OptionalField
	Title    OptionalField
	Email    OptionalField
	Phone    OptionalField
	FirmName OptionalField
	IfMatch  *int64
}
