// Package report runs the full catalog through resolution and inspection and
// aggregates the outcome into a single deterministic verdict. CI consumes
// the rendered diagnostics and the process exit status only, so rendering is
// kept free of run metadata: an unchanged catalog and artifact tree always
// renders byte-identical output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Result is the per-tool validation outcome. Valid is the conjunction of the
// three checks; Error carries a per-tool I/O failure (for example permission
// denied on an existing artifact), which degrades the tool without aborting
// the run.
type Result struct {
	ID                  string `json:"id"`
	Category            string `json:"category"`
	RegistrationName    string `json:"registration_name"`
	ArtifactPath        string `json:"artifact_path"`
	ImplementationFound bool   `json:"implementation_found"`
	HasEncapsulation    bool   `json:"has_encapsulation"`
	HasRegistration     bool   `json:"has_registration"`
	Valid               bool   `json:"valid"`
	Error               string `json:"error,omitempty"`
}

// Report is the aggregate outcome of one validation run. Results order
// matches catalog order. RunID, Started, and Elapsed exist for logging and
// history; they are excluded from rendered diagnostics to keep output
// reproducible.
type Report struct {
	RunID        string        `json:"-"`
	Started      time.Time     `json:"-"`
	Elapsed      time.Duration `json:"-"`
	OverallValid bool          `json:"overall_valid"`
	Results      []Result      `json:"results"`
}

// InvalidIDs returns the ids of failing tools, in catalog order.
func (r Report) InvalidIDs() []string {
	var ids []string
	for _, res := range r.Results {
		if !res.Valid {
			ids = append(ids, res.ID)
		}
	}
	return ids
}

// RenderText writes one line per tool plus a final verdict. Failure lines
// name the first unmet expectation, so "file missing" reads differently from
// "file present but malformed".
func (r Report) RenderText(w io.Writer) {
	for _, res := range r.Results {
		fmt.Fprint(w, renderResultLine(res))
	}
	if r.OverallValid {
		fmt.Fprintf(w, "\n%d tools validated, all valid\n", len(r.Results))
	} else {
		fmt.Fprintf(w, "\n%d tools validated, %d invalid\n", len(r.Results), len(r.InvalidIDs()))
	}
}

func renderResultLine(res Result) string {
	switch {
	case res.Valid:
		return fmt.Sprintf("PASS %s\n", res.ID)
	case res.Error != "":
		return fmt.Sprintf("FAIL %s: %s\n", res.ID, res.Error)
	case !res.ImplementationFound:
		return fmt.Sprintf("FAIL %s: artifact missing (%s)\n", res.ID, res.ArtifactPath)
	case !res.HasEncapsulation && !res.HasRegistration:
		return fmt.Sprintf("FAIL %s: encapsulation marker missing; registration %s missing\n",
			res.ID, res.RegistrationName)
	case !res.HasEncapsulation:
		return fmt.Sprintf("FAIL %s: encapsulation marker missing\n", res.ID)
	default:
		return fmt.Sprintf("FAIL %s: registration %s missing\n", res.ID, res.RegistrationName)
	}
}

// RenderJSON writes the report as indented JSON. Results is always an array,
// never null.
func (r Report) RenderJSON(w io.Writer) error {
	out := r
	if out.Results == nil {
		out.Results = []Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
