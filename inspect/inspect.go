package inspect

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultNamespace is the shared global the stock bundle registers into.
// Artifacts bind themselves at <namespace>.tools.<registrationName>.
const DefaultNamespace = "App"

// Markers is the outcome of inspecting one artifact. Found false implies
// both marker flags are false: there is nothing to inspect without a file.
type Markers struct {
	Found         bool
	Encapsulation bool
	Registration  bool
}

// SourceInspector checks an artifact for the structural markers. The
// substring contract below is the compatibility surface; this interface
// exists so a stricter syntactic checker can replace it without touching
// the report runner.
type SourceInspector interface {
	// Inspect examines the artifact at path for encapsulation and for a
	// registration binding under registrationName. A missing file is a
	// normal all-false result; an error is returned only for I/O failure
	// on a path that exists (permission denied and the like).
	Inspect(path, registrationName string) (Markers, error)
}

// Accepted encapsulation idioms. The check is intentionally permissive:
// any syntactic form yielding immediate, isolated execution qualifies, and
// both the classic and the arrow IIFE prefix count.
const (
	markerClassicIIFE = "(function"
	markerArrowIIFE   = "(() =>"
)

// MarkerInspector is the documented substring-presence implementation.
// Absence of a marker is a plain false, never an error; a marker inside a
// comment still counts, exactly as the historical check behaved.
type MarkerInspector struct {
	// Namespace is the shared-namespace root; DefaultNamespace when empty.
	Namespace string
}

var _ SourceInspector = MarkerInspector{}

// RegistrationRef returns the literal an artifact must contain to count as
// registered under name.
func (m MarkerInspector) RegistrationRef(name string) string {
	ns := m.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return ns + ".tools." + name
}

// Inspect implements SourceInspector.
func (m MarkerInspector) Inspect(path, registrationName string) (Markers, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path derived from artifact root
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Markers{}, nil
		}
		return Markers{}, fmt.Errorf("inspect: reading %s: %w", path, err)
	}

	text := string(data)
	return Markers{
		Found:         true,
		Encapsulation: hasEncapsulation(text),
		Registration:  strings.Contains(text, m.RegistrationRef(registrationName)),
	}, nil
}

func hasEncapsulation(text string) bool {
	return strings.Contains(text, markerClassicIIFE) || strings.Contains(text, markerArrowIIFE)
}
