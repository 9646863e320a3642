package catalog

import (
	"encoding/json"
	"fmt"
)

// ModuleType discriminates the module variants.
type ModuleType string

// Known module types. Any other value decodes into Unknown.
const (
	TypeGitHubStats  ModuleType = "github_stats"
	TypeTechStack    ModuleType = "tech_stack"
	TypeProjectChart ModuleType = "project_chart"
	TypePetProject   ModuleType = "pet_project"
)

// DefaultIcon is used when a module definition has no icon.
const DefaultIcon = "extension"

// Data is the variant-shaped payload of a module definition.
// The set of implementations is closed: GitHubStats, TechStack,
// ProjectChart, PetProject and Unknown.
type Data interface {
	moduleType() ModuleType
}

// GitHubStats holds contribution counters and language shares.
type GitHubStats struct {
	Contributions int             `json:"contributions"`
	Stars         int             `json:"stars"`
	Repositories  int             `json:"repositories"`
	TopLanguages  []LanguageShare `json:"top_languages"`
}

// LanguageShare is one language bar; Percent is the bar width.
type LanguageShare struct {
	Lang    string  `json:"lang"`
	Percent float64 `json:"percent"`
}

// TechStack is an ordered list of tag chips.
type TechStack struct {
	Tags []string `json:"tags"`
}

// ProjectChart references the projects shown when the module is placed.
type ProjectChart struct {
	DefaultProjects []string `json:"default_projects"`
}

// PetProject is a single project card.
type PetProject struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Unknown keeps the payload of a module whose type is not recognized.
type Unknown struct {
	Type ModuleType
	Raw  json.RawMessage
}

func (GitHubStats) moduleType() ModuleType  { return TypeGitHubStats }
func (TechStack) moduleType() ModuleType    { return TypeTechStack }
func (ProjectChart) moduleType() ModuleType { return TypeProjectChart }
func (PetProject) moduleType() ModuleType   { return TypePetProject }
func (u Unknown) moduleType() ModuleType    { return u.Type }

// ModuleDefinition describes one reusable module available in the toolbox.
type ModuleDefinition struct {
	ID             string
	Title          string
	Icon           string
	Type           ModuleType
	IsConfigurable bool
	Data           Data
}

// IconOrDefault returns the module icon, falling back to DefaultIcon.
func (m ModuleDefinition) IconOrDefault() string {
	if m.Icon == "" {
		return DefaultIcon
	}
	return m.Icon
}

type moduleWire struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Icon           string          `json:"icon,omitempty"`
	Type           ModuleType      `json:"type"`
	IsConfigurable bool            `json:"is_configurable"`
	Data           json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the data payload according to the module type.
func (m *ModuleDefinition) UnmarshalJSON(b []byte) error {
	var w moduleWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	data, err := decodeData(w.Type, w.Data)
	if err != nil {
		return fmt.Errorf("module %q: %w", w.ID, err)
	}

	*m = ModuleDefinition{
		ID:             w.ID,
		Title:          w.Title,
		Icon:           w.Icon,
		Type:           w.Type,
		IsConfigurable: w.IsConfigurable,
		Data:           data,
	}
	return nil
}

// MarshalJSON writes the module in the catalog document shape.
func (m ModuleDefinition) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	switch d := m.Data.(type) {
	case Unknown:
		raw = d.Raw
	case nil:
		raw = json.RawMessage("{}")
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	return json.Marshal(moduleWire{
		ID:             m.ID,
		Title:          m.Title,
		Icon:           m.Icon,
		Type:           m.Type,
		IsConfigurable: m.IsConfigurable,
		Data:           raw,
	})
}

func decodeData(t ModuleType, raw json.RawMessage) (Data, error) {
	switch t {
	case TypeGitHubStats:
		var d GitHubStats
		return d, unmarshalData(raw, &d)
	case TypeTechStack:
		var d TechStack
		return d, unmarshalData(raw, &d)
	case TypeProjectChart:
		var d ProjectChart
		return d, unmarshalData(raw, &d)
	case TypePetProject:
		var d PetProject
		return d, unmarshalData(raw, &d)
	default:
		return Unknown{Type: t, Raw: raw}, nil
	}
}

func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing data")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	return nil
}

// ProjectRecord is one of the user's projects shown by chart modules.
type ProjectRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stars int    `json:"stars"`
	Forks int    `json:"forks"`
}

// Document is the inbound catalog contract.
type Document struct {
	Modules      []ModuleDefinition `json:"modules"`
	UserProjects []ProjectRecord    `json:"user_projects"`
}
