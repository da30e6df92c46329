package persona

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Persona is the uniform surface over the heterogeneous participant
// representations accepted at session creation. Callers resolve the wire
// representation once, up front, and only ever see this interface.
type Persona interface {
	// DisplayName returns a short label for transcripts and analytics.
	DisplayName() string
	// PromptContext returns the profile text injected into generation prompts.
	PromptContext() string
}

// FreeText is a participant described by a single free-form line, typically
// "Sarah Mitchell, 32, Digital Marketing Manager, Manchester, ...".
type FreeText struct {
	Description string `json:"description"`
}

// DisplayName returns the first comma-separated segment of the description.
func (p FreeText) DisplayName() string {
	name := p.Description
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "Participant"
	}
	return name
}

// PromptContext resolves the description into the structured profile shape,
// so free-text and record personas prompt identically.
func (p FreeText) PromptContext() string {
	return ParseDescription(p.Description).PromptContext()
}

// Structured is a participant backed by a demographic record.
type Structured struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Occupation  string `json:"occupation"`
	Income      string `json:"income"`
	Region      string `json:"region"`
	Description string `json:"description"`
}

// DisplayName prefers the record's name, falling back to the description.
func (p Structured) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return FreeText{Description: p.Description}.DisplayName()
}

// PromptContext renders the description plus a demographics line, with
// "Unknown" standing in for absent fields.
func (p Structured) PromptContext() string {
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		desc = "A focus group participant"
	}

	age := "Unknown"
	if p.Age > 0 {
		age = fmt.Sprintf("%d", p.Age)
	}
	return fmt.Sprintf("%s\nAge: %s, Occupation: %s, Income: %s, Region: %s",
		desc, age, orUnknown(p.Occupation), orUnknown(p.Income), orUnknown(p.Region))
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Unknown"
	}
	return v
}

// wirePersona mirrors the structured JSON shape, including the nested
// demographics object some audience suppliers send.
type wirePersona struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Occupation   string `json:"occupation"`
	Income       string `json:"income"`
	Region       string `json:"region"`
	Description  string `json:"description"`
	Demographics *struct {
		Age        int    `json:"age"`
		Occupation string `json:"occupation"`
		Income     string `json:"income"`
		Region     string `json:"region"`
	} `json:"demographics"`
}

// Decode resolves one persona from its wire form: a JSON string becomes a
// FreeText persona, a JSON object a Structured one.
func Decode(raw json.RawMessage) (Persona, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("persona: empty payload")
	}

	if trimmed[0] == '"' {
		var desc string
		if err := json.Unmarshal(raw, &desc); err != nil {
			return nil, fmt.Errorf("persona: decode description: %w", err)
		}
		if strings.TrimSpace(desc) == "" {
			return nil, fmt.Errorf("persona: description is empty")
		}
		return FreeText{Description: desc}, nil
	}

	var wire wirePersona
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("persona: decode record: %w", err)
	}

	p := Structured{
		Name:        wire.Name,
		Age:         wire.Age,
		Occupation:  wire.Occupation,
		Income:      wire.Income,
		Region:      wire.Region,
		Description: wire.Description,
	}
	if wire.Demographics != nil {
		if p.Age == 0 {
			p.Age = wire.Demographics.Age
		}
		if p.Occupation == "" {
			p.Occupation = wire.Demographics.Occupation
		}
		if p.Income == "" {
			p.Income = wire.Demographics.Income
		}
		if p.Region == "" {
			p.Region = wire.Demographics.Region
		}
	}
	if p.Name == "" && p.Description == "" {
		return nil, fmt.Errorf("persona: record needs a name or description")
	}
	return p, nil
}

// DecodeAll resolves a batch of personas, failing on the first bad entry.
func DecodeAll(raw []json.RawMessage) ([]Persona, error) {
	personas := make([]Persona, 0, len(raw))
	for i, r := range raw {
		p, err := Decode(r)
		if err != nil {
			return nil, fmt.Errorf("persona %d: %w", i, err)
		}
		personas = append(personas, p)
	}
	return personas, nil
}
