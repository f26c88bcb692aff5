// Package inspect locates implementation artifacts and checks them for the
// two structural markers the registry contract requires: scope-isolated
// (IIFE) encapsulation and a self-registration binding under the shared
// tools namespace.
package inspect

import (
	"path/filepath"
	"strings"
)

// ArtifactExt is the fixed source extension for bundle artifacts.
const ArtifactExt = ".js"

// ArtifactPath computes the expected artifact location for a tool:
// root/category/<id>.js. The path is returned unconditionally — existence is
// the inspector's concern, so a missing file surfaces as its own diagnostic
// rather than a path error.
func ArtifactPath(root, category, id string) string {
	return filepath.Join(root, category, id+ArtifactExt)
}

// WithinRoot reports whether path stays inside root. A category or id
// carrying ".." segments can otherwise walk the computed artifact path out
// of the artifact tree, and a marker-bearing file out there must never
// validate clean.
func WithinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
