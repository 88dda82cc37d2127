// Package versionchain holds the rules for appending to template and document
// version chains. Functions here mutate the value they are given; callers pass a
// copy read under the entity lock and persist it only when no error is returned.
package versionchain

import (
	"fmt"
	"time"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
)

// NextStatus returns the status a document moves to when a version of type vt is appended.
//
//	draft           + template | initial_draft -> draft
//	draft           + negotiation_turn         -> in_negotiation
//	in_negotiation  + negotiation_turn         -> in_negotiation
//	in_negotiation  + final                    -> executed
//
// Everything else fails with ErrInvalidVersionType, or ErrDocumentClosed for terminal documents.
func NextStatus(status models.DocumentStatus, vt models.VersionType) (models.DocumentStatus, error) {
	if status.IsTerminal() {
		return status, fmt.Errorf("%w: document is %s", domain.ErrDocumentClosed, status)
	}

	switch status {
	case models.DocumentStatusDraft:
		switch vt {
		case models.VersionTypeTemplate, models.VersionTypeInitialDraft:
			return models.DocumentStatusDraft, nil
		case models.VersionTypeNegotiationTurn:
			return models.DocumentStatusInNegotiation, nil
		}
	case models.DocumentStatusInNegotiation:
		switch vt {
		case models.VersionTypeNegotiationTurn:
			return models.DocumentStatusInNegotiation, nil
		case models.VersionTypeFinal:
			return models.DocumentStatusExecuted, nil
		}
	}

	return status, fmt.Errorf("%w: cannot append %s while document is %s", domain.ErrInvalidVersionType, vt, status)
}

// expectVersion resolves the requested version number against current.
// Zero means "next"; anything else must be exactly current+1.
func expectVersion(entityID string, current, requested int) (int, error) {
	want := current + 1
	if requested == 0 {
		return want, nil
	}
	if requested != want {
		return 0, &domain.VersionConflictError{EntityID: entityID, Expected: want, Got: requested}
	}
	return want, nil
}

// AppendDocumentVersion validates v against doc and appends it.
// Check order: closed document, version number, then type ordering.
// On error doc is left untouched.
func AppendDocumentVersion(doc *models.Document, v models.DocumentVersion, now time.Time) (*models.DocumentVersion, error) {
	if doc.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: document %s is %s", domain.ErrDocumentClosed, doc.ID, doc.Status)
	}

	n, err := expectVersion(doc.ID, doc.CurrentVersion, v.Version)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(doc.Status, v.Type)
	if err != nil {
		return nil, err
	}

	v.Version = n
	v.CreatedAt = now
	doc.Versions = append(doc.Versions, v)
	doc.CurrentVersion = n
	doc.Status = next
	doc.UpdatedAt = now
	doc.VersionStamp++

	return &doc.Versions[len(doc.Versions)-1], nil
}

// CancelDocument moves a non-terminal document to cancelled
func CancelDocument(doc *models.Document, now time.Time) error {
	if doc.Status.IsTerminal() {
		return fmt.Errorf("%w: document %s is %s", domain.ErrDocumentClosed, doc.ID, doc.Status)
	}
	doc.Status = models.DocumentStatusCancelled
	doc.UpdatedAt = now
	doc.VersionStamp++
	return nil
}

// AppendTemplateVersion validates v against t and appends it. On error t is left untouched.
func AppendTemplateVersion(t *models.Template, v models.TemplateVersion, now time.Time) (*models.TemplateVersion, error) {
	n, err := expectVersion(t.ID, t.Version, v.Version)
	if err != nil {
		return nil, err
	}

	v.Version = n
	v.CreatedAt = now
	t.Versions = append(t.Versions, v)
	t.Version = n
	t.UpdatedAt = now
	t.VersionStamp++

	return &t.Versions[len(t.Versions)-1], nil
}
