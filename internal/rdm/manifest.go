// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rdm

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Source is one row of the source table: a printed or manuscript lute book.
type Source struct {
	ID         string `yaml:"id"`
	Shelfmark  string `yaml:"shelfmark"`
	Title      string `yaml:"title"`
	SourceLink string `yaml:"source_link"`
	RISMLink   string `yaml:"rism_link"`
	VD16       string `yaml:"vd16"`
}

// Key returns the source id, falling back to the shelfmark.
func (s Source) Key() string {
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	return strings.TrimSpace(s.Shelfmark)
}

// Links returns the non-empty external links in table order.
func (s Source) Links() []string {
	var links []string
	for _, l := range []string{s.SourceLink, s.RISMLink, s.VD16} {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	return links
}

// Sources indexes the source table by Key.
type Sources map[string]Source

// Lookup returns the source with the given id.
func (s Sources) Lookup(id string) (Source, error) {
	src, ok := s[id]
	if !ok {
		return Source{}, fmt.Errorf("unknown source id %q", id)
	}
	return src, nil
}

// NewSources indexes rows. Rows without id or shelfmark are rejected, as are
// duplicate keys.
func NewSources(rows []Source) (Sources, error) {
	idx := make(Sources, len(rows))
	for i, row := range rows {
		key := row.Key()
		if key == "" {
			return nil, fmt.Errorf("source row %d has neither id nor shelfmark", i+1)
		}
		if _, dup := idx[key]; dup {
			return nil, fmt.Errorf("duplicate source id %q", key)
		}
		idx[key] = row
	}
	return idx, nil
}

// LoadSources reads the YAML source table at path.
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source table: %w", err)
	}
	var rows []Source
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing source table: %w", err)
	}
	return NewSources(rows)
}

// Recording describes one audio recording of a work.
type Recording struct {
	Title              string `yaml:"title"`
	WorkID             string `yaml:"work_id"`
	SourceID           string `yaml:"source_id"`
	FolOrP             string `yaml:"fol_or_p"`
	Date               string `yaml:"date"`
	PerformerFirstname string `yaml:"performer_firstname"`
	PerformerLastname  string `yaml:"performer_lastname"`
	Producer           string `yaml:"producer"`
	ProducerFirstname  string `yaml:"producer_firstname"`
	ProducerLastname   string `yaml:"producer_lastname"`
}

// WorkNumber is the last underscore-separated segment of WorkID.
func (r Recording) WorkNumber() string {
	parts := strings.Split(r.WorkID, "_")
	return parts[len(parts)-1]
}

// Validate checks the fields every record needs.
func (r Recording) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", r.Title},
		{"work_id", r.WorkID},
		{"source_id", r.SourceID},
		{"date", r.Date},
		{"performer_lastname", r.PerformerLastname},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("recording %q: missing %s", r.Title, strings.Join(missing, ", "))
	}
	return nil
}

// LoadRecordings reads the YAML recordings manifest at path.
func LoadRecordings(path string) ([]Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recordings manifest: %w", err)
	}
	var recs []Recording
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing recordings manifest: %w", err)
	}
	return recs, nil
}
