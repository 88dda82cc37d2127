package models

// ClientStatus is the onboarding state of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client is a firm client. Clients are seeded and read-mostly.
type Client struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Email         string       `json:"email" yaml:"email"`
	Status        ClientStatus `json:"status" yaml:"status"`
	ActivityCount int          `json:"activity_count" yaml:"activity_count"`
}
