// Package resolve maps catalog entries to the names the rest of the system
// derives from them: the storage category an artifact lives under, and the
// registration name the artifact must bind into the shared namespace.
//
// Both mappings are override-table-first with a deterministic fallback. The
// tables are explicit configuration passed in at construction, so onboarding
// a tool whose naming diverges from its id is a data change, not a code
// change.
package resolve

import "github.com/petal-labs/bundlecheck/catalog"

// CategoryUnknown is returned when a tool has no category override and no
// labels to fall back on. It is a reachable value, not an error.
const CategoryUnknown = "unknown"

// Tables holds the two override maps. Both are read-only after construction.
type Tables struct {
	// Categories maps tool id to the storage category its artifact lives
	// under, when that differs from the tool's first label.
	Categories map[string]string
	// RegistrationNames maps tool id to the exact name the implementation
	// binds into the shared namespace, when that differs from the id.
	RegistrationNames map[string]string
}

// Resolver answers category and registration-name lookups for catalog
// entries. Both methods are pure: same tool and tables, same answer.
type Resolver struct {
	tables Tables
}

// New returns a Resolver over the given tables. Nil maps are valid and mean
// "no overrides".
func New(tables Tables) *Resolver {
	return &Resolver{tables: tables}
}

// Category resolves the storage category for a tool. First match wins:
// the override table, then the tool's first label, then CategoryUnknown.
func (r *Resolver) Category(tool catalog.Tool) string {
	if cat, ok := r.tables.Categories[tool.ID]; ok {
		return cat
	}
	if len(tool.Labels) > 0 {
		return tool.Labels[0]
	}
	return CategoryUnknown
}

// RegistrationName resolves the name the tool's implementation must register
// under: the override value if one exists, else the id verbatim.
func (r *Resolver) RegistrationName(tool catalog.Tool) string {
	if name, ok := r.tables.RegistrationNames[tool.ID]; ok {
		return name
	}
	return tool.ID
}
