package output

import "time"

// ModuleInfo is one catalog module in JSON output.
type ModuleInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Icon         string `json:"icon"`
	Configurable bool   `json:"is_configurable"`
}

// ProjectInfo is one project in JSON output.
type ProjectInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stars int    `json:"stars"`
	Forks int    `json:"forks"`
}

// ModulesOutput is the JSON shape of the modules command.
type ModulesOutput struct {
	Source   string        `json:"source"`
	Modules  []ModuleInfo  `json:"modules"`
	Projects []ProjectInfo `json:"user_projects"`
}

// Issue is a single validation finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateOutput is the JSON shape of the validate command.
type ValidateOutput struct {
	Path     string  `json:"path"`
	Valid    bool    `json:"valid"`
	Modules  int     `json:"modules"`
	Projects int     `json:"projects"`
	Issues   []Issue `json:"issues,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// PreviewOutput is the JSON shape of the preview command.
type PreviewOutput struct {
	Module   string `json:"module"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
}

// SeedOutput is the JSON shape of the seed command.
type SeedOutput struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Store      string    `json:"store"`
	Modules    int       `json:"modules"`
	Projects   int       `json:"projects"`
	ImportedAt time.Time `json:"imported_at"`
}
