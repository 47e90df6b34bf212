package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// SkillGroup is one category of the skills section.
type SkillGroup struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Skills is either a list of categories (decoded from an object, keeping
// key order) or a flat list of skill names. Exactly one of Groups and Items
// is populated after decoding.
type Skills struct {
	Groups []SkillGroup
	Items  []string
}

// IsGrouped reports whether the skills came in as a category mapping.
func (s Skills) IsGrouped() bool {
	return len(s.Groups) > 0
}

// IsEmpty reports whether there is nothing to render.
func (s Skills) IsEmpty() bool {
	return len(s.Groups) == 0 && len(s.Items) == 0
}

func (s *Skills) set(category string, items []string) {
	for i := range s.Groups {
		if s.Groups[i].Category == category {
			s.Groups[i].Items = items
			return
		}
	}
	s.Groups = append(s.Groups, SkillGroup{Category: category, Items: items})
}

// UnmarshalJSON accepts an object of category -> []string or a []string.
// Object key order is preserved; a repeated key replaces the earlier value
// in place.
func (s *Skills) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*s = Skills{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("skills list must contain strings: %w", err)
		}
		s.Items = items
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			category, ok := tok.(string)
			if !ok {
				return fmt.Errorf("unexpected skills key %v", tok)
			}
			var items []string
			if err := dec.Decode(&items); err != nil {
				return fmt.Errorf("skills category %q must be a list of strings: %w", category, err)
			}
			s.set(category, items)
		}
		_, err := dec.Token()
		return err
	default:
		return fmt.Errorf("skills must be an object or an array")
	}
}

// MarshalJSON writes groups back as an ordered object and flat skills as an array.
func (s Skills) MarshalJSON() ([]byte, error) {
	if s.IsGrouped() {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, g := range s.Groups {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(g.Category)
			if err != nil {
				return nil, err
			}
			items := g.Items
			if items == nil {
				items = []string{}
			}
			value, err := json.Marshal(items)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	if s.Items != nil {
		return json.Marshal(s.Items)
	}
	return []byte("null"), nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (s *Skills) UnmarshalYAML(value *yaml.Node) error {
	*s = Skills{}
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("skills list must contain strings: %w", err)
		}
		s.Items = items
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			category := value.Content[i].Value
			var items []string
			if err := value.Content[i+1].Decode(&items); err != nil {
				return fmt.Errorf("skills category %q must be a list of strings: %w", category, err)
			}
			s.set(category, items)
		}
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
	}
	return fmt.Errorf("line %d: skills must be a mapping or a sequence", value.Line)
}

// JSONSchema describes both accepted shapes.
func (Skills) JSONSchema() *jsonschema.Schema {
	list := func() *jsonschema.Schema {
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	}
	return &jsonschema.Schema{
		Description: "Skills grouped by category or given as a flat list",
		OneOf: []*jsonschema.Schema{
			{Type: "object", AdditionalProperties: list()},
			list(),
			{Type: "null"},
		},
	}
}
