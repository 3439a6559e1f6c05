package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/whrealtors/realty-web/internal/geo"
)

// Project is one marketed property. Records are immutable once the catalog
// is built; callers receive shared references and must not modify them.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	WhatsApp    string     `json:"whatsapp,omitempty"`
	Advantages  []Entry    `json:"advantages"`
	Features    []Entry    `json:"features"`
	Gallery     Gallery    `json:"gallery_covers"`
	Location    *geo.Point `json:"location,omitempty"`

	// Assistant is nil for projects without a sales assistant.
	Assistant *AssistantProfile `json:"-"`
}

// AssistantProfile is the sales assistant configuration for one project.
// Knowledge entries are the passages retrieval ranks against a question.
type AssistantProfile struct {
	Persona   string
	Greeting  string
	Knowledge []string
}

// GalleryCover is one category label with its cover image.
type GalleryCover struct {
	Category string `json:"category"`
	Image    string `json:"image"`
}

// Gallery keeps covers in document order.
type Gallery []GalleryCover

// UnmarshalYAML reads a category -> image mapping without losing key order.
func (g *Gallery) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("catalog: galleryCovers at line %d must be a mapping", node.Line)
	}
	covers := make(Gallery, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var category, image string
		if err := node.Content[i].Decode(&category); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&image); err != nil {
			return err
		}
		covers = append(covers, GalleryCover{Category: category, Image: image})
	}
	*g = covers
	return nil
}

// Image returns the cover for category.
func (g Gallery) Image(category string) (string, bool) {
	for _, c := range g {
		if c.Category == category {
			return c.Image, true
		}
	}
	return "", false
}

// projectDoc is the on-disk shape of a project.
type projectDoc struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	WhatsApp    string   `yaml:"whatsapp"`
	Advantages  []Entry  `yaml:"advantages"`
	Features    []Entry  `yaml:"features"`
	Gallery     Gallery  `yaml:"galleryCovers"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`

	Assistant *assistantDoc `yaml:"assistant"`
}

type assistantDoc struct {
	Persona   string   `yaml:"persona"`
	Greeting  string   `yaml:"greeting"`
	Knowledge []string `yaml:"knowledge"`
}

func (d projectDoc) project() Project {
	p := Project{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		WhatsApp:    strings.TrimSpace(d.WhatsApp),
		Advantages:  d.Advantages,
		Features:    d.Features,
		Gallery:     d.Gallery,
	}
	if d.Latitude != nil && d.Longitude != nil {
		p.Location = &geo.Point{Lat: *d.Latitude, Lng: *d.Longitude}
	}
	if a := d.Assistant; a != nil && strings.TrimSpace(a.Persona) != "" {
		profile := &AssistantProfile{
			Persona:  strings.TrimSpace(a.Persona),
			Greeting: strings.TrimSpace(a.Greeting),
		}
		for _, k := range a.Knowledge {
			if k = strings.TrimSpace(k); k != "" {
				profile.Knowledge = append(profile.Knowledge, k)
			}
		}
		p.Assistant = profile
	}
	return p
}

// ContactLink builds the WhatsApp deep link for p, falling back to
// defaultNumber when the project has no routing value.
func ContactLink(p *Project, defaultNumber string) string {
	number := defaultNumber
	if p != nil && p.WhatsApp != "" {
		number = p.WhatsApp
	}
	number = strings.TrimPrefix(strings.ReplaceAll(number, " ", ""), "+")
	return "https://wa.me/" + url.PathEscape(number)
}

// MarshalJSON keeps nil collections as empty arrays for API clients.
func (p Project) MarshalJSON() ([]byte, error) {
	type alias Project
	out := alias(p)
	if out.Advantages == nil {
		out.Advantages = []Entry{}
	}
	if out.Features == nil {
		out.Features = []Entry{}
	}
	if out.Gallery == nil {
		out.Gallery = Gallery{}
	}
	return json.Marshal(out)
}
