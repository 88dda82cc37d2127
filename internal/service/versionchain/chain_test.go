package versionchain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
)

func draftDocument() *models.Document {
	return &models.Document{
		ID:             "doc-1",
		Status:         models.DocumentStatusDraft,
		CurrentVersion: 1,
		Versions:       []models.DocumentVersion{{Version: 1, Type: models.VersionTypeTemplate, Content: "v1"}},
		VersionStamp:   1,
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  models.DocumentStatus
		vt      models.VersionType
		want    models.DocumentStatus
		wantErr error
	}{
		{"draft accepts initial draft", models.DocumentStatusDraft, models.VersionTypeInitialDraft, models.DocumentStatusDraft, nil},
		{"draft accepts template", models.DocumentStatusDraft, models.VersionTypeTemplate, models.DocumentStatusDraft, nil},
		{"first turn opens negotiation", models.DocumentStatusDraft, models.VersionTypeNegotiationTurn, models.DocumentStatusInNegotiation, nil},
		{"later turn stays in negotiation", models.DocumentStatusInNegotiation, models.VersionTypeNegotiationTurn, models.DocumentStatusInNegotiation, nil},
		{"final executes", models.DocumentStatusInNegotiation, models.VersionTypeFinal, models.DocumentStatusExecuted, nil},
		{"final before any turn", models.DocumentStatusDraft, models.VersionTypeFinal, "", domain.ErrInvalidVersionType},
		{"draft after negotiation started", models.DocumentStatusInNegotiation, models.VersionTypeInitialDraft, "", domain.ErrInvalidVersionType},
		{"executed is closed", models.DocumentStatusExecuted, models.VersionTypeNegotiationTurn, "", domain.ErrDocumentClosed},
		{"cancelled is closed", models.DocumentStatusCancelled, models.VersionTypeFinal, "", domain.ErrDocumentClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.status, tt.vt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppendDocumentVersionNegotiationTurn(t *testing.T) {
	doc := draftDocument()
	now := time.Date(2024, 9, 21, 14, 30, 0, 0, time.UTC)

	v, err := AppendDocumentVersion(doc, models.DocumentVersion{Version: 2, Type: models.VersionTypeNegotiationTurn, Content: "v2"}, now)
	require.NoError(t, err)

	assert.Equal(t, 2, v.Version)
	assert.Equal(t, models.DocumentStatusInNegotiation, doc.Status)
	assert.Equal(t, 2, doc.CurrentVersion)
	assert.Equal(t, int64(2), doc.VersionStamp)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestAppendDocumentVersionAssignsNextWhenZero(t *testing.T) {
	doc := draftDocument()

	v, err := AppendDocumentVersion(doc, models.DocumentVersion{Type: models.VersionTypeInitialDraft}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Version)
}

func TestAppendDocumentVersionConflictLeavesStateUnchanged(t *testing.T) {
	for _, requested := range []int{1, 3, 7, -1} {
		doc := draftDocument()
		before := doc.Clone()

		_, err := AppendDocumentVersion(doc, models.DocumentVersion{Version: requested, Type: models.VersionTypeNegotiationTurn}, time.Now())

		var conflict *domain.VersionConflictError
		require.ErrorAs(t, err, &conflict)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
		assert.Equal(t, 2, conflict.Expected)
		assert.Equal(t, before, doc)
	}
}

func TestFullNegotiationLifecycle(t *testing.T) {
	doc := draftDocument()
	steps := []models.VersionType{
		models.VersionTypeInitialDraft,
		models.VersionTypeNegotiationTurn,
		models.VersionTypeNegotiationTurn,
		models.VersionTypeFinal,
	}

	for _, vt := range steps {
		_, err := AppendDocumentVersion(doc, models.DocumentVersion{Version: doc.CurrentVersion + 1, Type: vt}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, doc.Versions[len(doc.Versions)-1].Version, doc.CurrentVersion)
	}
	assert.Equal(t, models.DocumentStatusExecuted, doc.Status)

	_, err := AppendDocumentVersion(doc, models.DocumentVersion{Version: doc.CurrentVersion + 1, Type: models.VersionTypeNegotiationTurn}, time.Now())
	assert.ErrorIs(t, err, domain.ErrDocumentClosed)

	assert.ErrorIs(t, CancelDocument(doc, time.Now()), domain.ErrDocumentClosed)
}

func TestClosedCheckedBeforeVersion(t *testing.T) {
	doc := draftDocument()
	require.NoError(t, CancelDocument(doc, time.Now()))

	// wrong version number on a closed document still reports closed
	_, err := AppendDocumentVersion(doc, models.DocumentVersion{Version: 9, Type: models.VersionTypeFinal}, time.Now())
	assert.ErrorIs(t, err, domain.ErrDocumentClosed)
}

func TestAppendTemplateVersion(t *testing.T) {
	tmpl := &models.Template{
		ID:           "template-1",
		Version:      1,
		Versions:     []models.TemplateVersion{{Version: 1, Changes: models.InitialTemplateChanges}},
		VersionStamp: 1,
	}

	v, err := AppendTemplateVersion(tmpl, models.TemplateVersion{Version: 2, Changes: "Updated indemnity", Content: "v2"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, v.Version)
	assert.Equal(t, 2, tmpl.Version)
	assert.Len(t, tmpl.Versions, 2)

	_, err = AppendTemplateVersion(tmpl, models.TemplateVersion{Version: 2}, time.Now())
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Len(t, tmpl.Versions, 2)
}

func TestLockerSerializesPerID(t *testing.T) {
	l := NewLocker()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("doc-1")
			defer unlock()
			c := counter
			time.Sleep(time.Microsecond)
			counter = c + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.held())
}

func TestLockerIndependentIDs(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestDiffLines(t *testing.T) {
	from := "Section 1\nIndemnity: full\nSection 3\n"
	to := "Section 1\nIndemnity: capped\nSection 3\nSection 4\n"

	lines, ins, del := DiffLines(from, to)

	assert.Equal(t, 2, ins)
	assert.Equal(t, 1, del)
	assert.Contains(t, lines, models.DiffLine{Op: models.DiffOpDelete, Text: "Indemnity: full"})
	assert.Contains(t, lines, models.DiffLine{Op: models.DiffOpInsert, Text: "Indemnity: capped"})
	assert.Contains(t, lines, models.DiffLine{Op: models.DiffOpEqual, Text: "Section 1"})
}
