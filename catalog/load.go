package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors distinguishing the two fatal catalog failures. Both abort
// a validation run before any per-tool work is attempted.
var (
	ErrNotFound  = errors.New("catalog not found")
	ErrMalformed = errors.New("catalog malformed")
)

// document is the expected top-level shape. Tools is a pointer so a missing
// `tools` key can be told apart from an empty `tools: []`.
type document struct {
	Tools *[]Tool `yaml:"tools"`
}

// Load reads and parses the catalog document at path. It returns the tool
// entries in document order. A missing file wraps ErrNotFound; content that
// does not parse, or that lacks a `tools` sequence, wraps ErrMalformed.
func Load(path string) ([]Tool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("catalog: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog bytes. Unknown top-level keys are tolerated (the
// document is shared with the UI layer, which carries extra fields), but the
// `tools` sequence itself is mandatory.
func Parse(data []byte) ([]Tool, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: %w: %v", ErrMalformed, err)
	}
	if doc.Tools == nil {
		return nil, fmt.Errorf("catalog: %w: missing tools sequence", ErrMalformed)
	}
	tools := *doc.Tools
	seen := make(map[string]struct{}, len(tools))
	for i, t := range tools {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog: %w: tools[%d] has no id", ErrMalformed, i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("catalog: %w: duplicate tool id %q", ErrMalformed, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return tools, nil
}
