// Package catalog models the declarative tool catalog: one metadata entry
// per analysis tool, parsed once from a YAML document at load time. The
// catalog is read-only; nothing in this module mutates an entry after Load.
package catalog

// Tool is one catalog entry. ID is the stable identifier used by every
// lookup: category resolution, registration-name resolution, and artifact
// location all key off it.
type Tool struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Labels      []string    `yaml:"labels,omitempty" json:"labels,omitempty"`
	Parameters  []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	InputTypes  []string    `yaml:"input_types,omitempty" json:"input_types,omitempty"`
	OutputTypes []string    `yaml:"output_types,omitempty" json:"output_types,omitempty"`
}

// Parameter describes one declared tool parameter. Arity drives UI
// complexity scoring, which lives outside this module; the validator only
// carries the descriptors through.
type Parameter struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}
