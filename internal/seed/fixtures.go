package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/service/activity"
	"lexdesk/internal/service/versionchain"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the content of a seed file. Every section is optional.
type Fixtures struct {
	Profile   *models.LawyerProfile `yaml:"profile"`
	Clients   []models.Client       `yaml:"clients"`
	Templates []models.Template     `yaml:"templates"`
	Documents []models.Document     `yaml:"documents"`
	Activity  []models.ActivityPost `yaml:"activity"`
	Queries   []models.LegalQuery   `yaml:"queries"`
	Alerts    []models.ClientAlert  `yaml:"alerts"`
}

// Default returns the fixtures bundled with the binary
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

// Load reads fixtures from path. An empty path means the bundled set.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML fixtures and fills in derived fields
func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := fx.normalize(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// normalize derives chain heads, default stamps and empty slices so
// seeded records look like ones the services created.
func (fx *Fixtures) normalize() error {
	if fx.Profile != nil && fx.Profile.VersionStamp == 0 {
		fx.Profile.VersionStamp = 1
	}

	for i := range fx.Clients {
		c := &fx.Clients[i]
		if c.Status == "" {
			c.Status = models.ClientStatusActive
		}
	}

	for i := range fx.Templates {
		t := &fx.Templates[i]
		if len(t.Versions) == 0 {
			return fmt.Errorf("template %s: at least one version is required", t.ID)
		}
		if err := checkSequence("template", t.ID, len(t.Versions), func(j int) int { return t.Versions[j].Version }); err != nil {
			return err
		}
		t.Version = len(t.Versions)
		if t.SharedWith == nil {
			t.SharedWith = []string{}
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		stamp(&t.VersionStamp)
	}

	for i := range fx.Documents {
		d := &fx.Documents[i]
		if len(d.Versions) == 0 {
			return fmt.Errorf("document %s: at least one version is required", d.ID)
		}
		if err := checkSequence("document", d.ID, len(d.Versions), func(j int) int { return d.Versions[j].Version }); err != nil {
			return err
		}
		if err := checkDocumentStatus(d); err != nil {
			return err
		}
		d.CurrentVersion = len(d.Versions)
		for j := range d.Versions {
			if d.Versions[j].Changes == nil {
				d.Versions[j].Changes = []string{}
			}
		}
		if d.UpdatedAt.IsZero() {
			d.UpdatedAt = d.Versions[len(d.Versions)-1].CreatedAt
		}
		stamp(&d.VersionStamp)
	}

	for i := range fx.Activity {
		p := &fx.Activity[i]
		if p.Flags == nil {
			p.Flags = []string{}
		}
		if p.Opportunities == nil {
			p.Opportunities = []string{}
		}
		if p.ThreadPosts == nil {
			p.ThreadPosts = []models.ThreadPost{}
		}
		for j := range p.ThreadPosts {
			if p.ThreadPosts[j].ClientID == "" {
				p.ThreadPosts[j].ClientID = p.ClientID
			}
		}
		// seeded document posts take the same replay key the aggregator derives
		if p.DedupKey == "" && p.DocumentID != nil && p.DocumentVersion != nil {
			p.DedupKey = activity.DocumentKey(*p.DocumentID, *p.DocumentVersion)
		}
	}

	for i := range fx.Queries {
		q := &fx.Queries[i]
		if q.Status == "" {
			q.Status = models.QueryStatusCompleted
		}
		q.Tags = orEmpty(q.Tags)
		q.Attachments = orEmpty(q.Attachments)
		q.Sections.Issues = orEmpty(q.Sections.Issues)
		q.Sections.ClausesToWatch = orEmpty(q.Sections.ClausesToWatch)
		stamp(&q.VersionStamp)
	}

	for i := range fx.Alerts {
		a := &fx.Alerts[i]
		if a.Status == "" {
			a.Status = models.AlertStatusDraft
		}
		a.Tags = orEmpty(a.Tags)
		a.Audience = orEmpty(a.Audience)
		stamp(&a.VersionStamp)
	}
	return nil
}

// checkSequence requires version numbers to run 1..n in list order, the only
// shape an append-only chain can have.
func checkSequence(kind, id string, n int, version func(int) int) error {
	for j := 0; j < n; j++ {
		if got := version(j); got != j+1 {
			return fmt.Errorf("%s %s: version %d at position %d, want %d", kind, id, got, j+1, j+1)
		}
	}
	return nil
}

// checkDocumentStatus replays the chain's version types through the append
// rules. A declared status must be the replayed one, or cancelled when the
// replay ends non-terminal. An empty status takes the replayed one.
func checkDocumentStatus(d *models.Document) error {
	status := models.DocumentStatusDraft
	for _, v := range d.Versions {
		next, err := versionchain.NextStatus(status, v.Type)
		if err != nil {
			return fmt.Errorf("document %s: version %d: %w", d.ID, v.Version, err)
		}
		status = next
	}

	switch {
	case d.Status == "":
		d.Status = status
	case d.Status == status:
	case d.Status == models.DocumentStatusCancelled && !status.IsTerminal():
	default:
		return fmt.Errorf("document %s: status %s does not follow from its versions (chain ends %s)", d.ID, d.Status, status)
	}
	return nil
}

func stamp(s *int64) {
	if *s == 0 {
		*s = 1
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
