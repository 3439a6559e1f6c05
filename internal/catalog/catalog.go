// Package catalog holds the read-only collection of marketed projects and
// resolves project identifiers against it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyID is returned when a catalog document contains a project without an id.
	ErrEmptyID = errors.New("catalog: project id is required")

	// ErrDuplicateID is returned when two projects share an id.
	ErrDuplicateID = errors.New("catalog: duplicate project id")
)

// Member is a team member shown on the landing page.
type Member struct {
	Name  string `yaml:"name" json:"name"`
	Role  string `yaml:"role" json:"role"`
	Image string `yaml:"image" json:"image"`
}

// Catalog is built once at start-up and never written afterwards, so any
// number of goroutines may read it without locking.
type Catalog struct {
	projects []Project
	team     []Member
}

type document struct {
	Projects []projectDoc `yaml:"projects"`
	Team     []Member     `yaml:"team"`
}

// New validates projects and freezes them into a catalog.
func New(projects []Project, team []Member) (*Catalog, error) {
	seen := make(map[string]struct{}, len(projects))
	for i, p := range projects {
		if p.ID == "" {
			return nil, fmt.Errorf("%w (entry %d, %q)", ErrEmptyID, i, p.Title)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return &Catalog{
		projects: append([]Project(nil), projects...),
		team:     append([]Member(nil), team...),
	}, nil
}

// Decode parses a YAML (or JSON) catalog document.
func Decode(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil, nil)
		}
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	projects := make([]Project, 0, len(doc.Projects))
	for _, d := range doc.Projects {
		projects = append(projects, d.project())
	}
	return New(projects, doc.Team)
}

// Load reads and decodes the catalog document behind src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", src, err)
	}
	defer rc.Close()
	return Decode(rc)
}

// Lookup returns the project whose id equals id exactly. Projects are scanned
// in catalog order and the first match wins. A miss is reported through the
// boolean, never as an error.
func (c *Catalog) Lookup(id string) (*Project, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.projects {
		if c.projects[i].ID == id {
			return &c.projects[i], true
		}
	}
	return nil, false
}

// All returns the projects in catalog order.
func (c *Catalog) All() []Project {
	if c == nil {
		return nil
	}
	return append([]Project(nil), c.projects...)
}

// Team returns the landing page team roster.
func (c *Catalog) Team() []Member {
	if c == nil {
		return nil
	}
	return append([]Member(nil), c.team...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.projects)
}
