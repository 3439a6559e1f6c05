package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntryKind tags the two shapes an advantage or feature can take.
type EntryKind int

const (
	// TextOnly is a bare string entry.
	TextOnly EntryKind = iota
	// Titled is a {title, description} pair.
	Titled
)

// Entry is one advantage or feature line. The shape is fixed when the catalog
// is decoded so templates never inspect raw document values.
type Entry struct {
	kind        EntryKind
	title       string
	description string
}

// Text builds a TextOnly entry.
func Text(s string) Entry {
	return Entry{kind: TextOnly, description: s}
}

// TitledEntry builds a Titled entry.
func TitledEntry(title, description string) Entry {
	return Entry{kind: Titled, title: title, description: description}
}

func (e Entry) Kind() EntryKind { return e.kind }

// Title is empty for TextOnly entries.
func (e Entry) Title() string { return e.title }

// Description is the body text; for TextOnly entries it is the whole string.
func (e Entry) Description() string { return e.description }

// Card is the heading/body pair a template renders for an entry.
type Card struct {
	Heading string
	Body    string
}

// AdvantageCard renders a TextOnly advantage under a generic "Feature" heading.
func AdvantageCard(e Entry) Card {
	heading := e.title
	if heading == "" {
		heading = "Feature"
	}
	return Card{Heading: heading, Body: e.description}
}

// FeatureCard uses the text as heading for TextOnly features and fills the
// body with blurb when the entry carries none.
func FeatureCard(e Entry, blurb string) Card {
	card := Card{Heading: e.title, Body: e.description}
	if e.kind == TextOnly {
		card = Card{Heading: e.description}
	}
	if card.Heading == "" {
		card.Heading = "Feature"
	}
	if card.Body == "" {
		card.Body = blurb
	}
	return card
}

// UnmarshalYAML accepts either a scalar string or a mapping with title and
// desc (or description).
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*e = Text(strings.TrimSpace(s))
		return nil
	case yaml.MappingNode:
		var raw struct {
			Title       string `yaml:"title"`
			Desc        string `yaml:"desc"`
			Description string `yaml:"description"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		desc := raw.Desc
		if desc == "" {
			desc = raw.Description
		}
		*e = TitledEntry(strings.TrimSpace(raw.Title), strings.TrimSpace(desc))
		return nil
	default:
		return fmt.Errorf("catalog: entry at line %d must be a string or a title/desc mapping", node.Line)
	}
}

// MarshalJSON mirrors the document shape: a string or {title, desc}.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.kind == TextOnly {
		return json.Marshal(e.description)
	}
	return json.Marshal(struct {
		Title string `json:"title"`
		Desc  string `json:"desc"`
	}{Title: e.title, Desc: e.description})
}
