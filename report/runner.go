package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petal-labs/bundlecheck/catalog"
	"github.com/petal-labs/bundlecheck/inspect"
	"github.com/petal-labs/bundlecheck/resolve"
)

// ErrArtifactRootNotFound aborts a run before any per-tool validation: with
// no artifact tree every tool would trivially fail, which would bury the
// actual problem.
var ErrArtifactRootNotFound = errors.New("artifact root not found")

// DefaultWorkers bounds the inspection pool when RunnerConfig leaves
// Workers unset.
const DefaultWorkers = 4

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Tables are the resolver override tables; resolve.DefaultTables()
	// when zero.
	Tables resolve.Tables
	// Inspector checks artifacts for structural markers. Defaults to the
	// substring MarkerInspector with Namespace.
	Inspector inspect.SourceInspector
	// Namespace is the shared-namespace root used by the default
	// inspector; inspect.DefaultNamespace when empty. Ignored when a
	// custom Inspector is supplied.
	Namespace string
	// Workers bounds concurrent artifact inspection; DefaultWorkers when
	// <= 0. Tool validations are independent, so only the reassembly
	// order is fixed, never the execution order.
	Workers int
	// Logger receives per-run progress; slog.Default() when nil.
	Logger *slog.Logger
}

// Runner orchestrates one validation pass: load the catalog, resolve every
// entry, inspect every artifact, and reassemble results in catalog order.
type Runner struct {
	resolver  *resolve.Resolver
	inspector inspect.SourceInspector
	workers   int
	log       *slog.Logger
}

// NewRunner builds a Runner from cfg, applying defaults for zero fields.
func NewRunner(cfg RunnerConfig) *Runner {
	tables := cfg.Tables
	if tables.Categories == nil && tables.RegistrationNames == nil {
		tables = resolve.DefaultTables()
	}
	inspector := cfg.Inspector
	if inspector == nil {
		inspector = inspect.MarkerInspector{Namespace: cfg.Namespace}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		resolver:  resolve.New(tables),
		inspector: inspector,
		workers:   workers,
		log:       log,
	}
}

// Run validates every catalog entry against the artifact tree rooted at
// artifactRoot. A missing or malformed catalog and a missing artifact root
// are run-fatal: the error is returned and no partial report is produced.
// Per-tool failures never abort the run; they lower the overall verdict and
// surface as one Result each.
func (r *Runner) Run(ctx context.Context, catalogPath, artifactRoot string) (Report, error) {
	started := time.Now().UTC()

	tools, err := catalog.Load(catalogPath)
	if err != nil {
		return Report{}, err
	}

	info, err := os.Stat(artifactRoot)
	if err != nil || !info.IsDir() {
		return Report{}, fmt.Errorf("report: %s: %w", artifactRoot, ErrArtifactRootNotFound)
	}

	results := make([]Result, len(tools))

	// Each worker writes only to its own catalog index, so the report
	// order never depends on scheduling.
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = r.validateTool(tools[i], artifactRoot)
			}
		}()
	}

feed:
	for i := range tools {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rep := Report{
		RunID:        uuid.NewString(),
		Started:      started,
		Elapsed:      time.Since(started),
		OverallValid: true,
		Results:      results,
	}
	for _, res := range results {
		if !res.Valid {
			rep.OverallValid = false
		}
	}

	r.log.Debug("validation run finished",
		"run_id", rep.RunID,
		"tools", len(rep.Results),
		"invalid", len(rep.InvalidIDs()),
		"overall_valid", rep.OverallValid,
		"elapsed", rep.Elapsed,
	)
	return rep, nil
}

// validateTool produces the Result for a single catalog entry.
func (r *Runner) validateTool(tool catalog.Tool, artifactRoot string) Result {
	category := r.resolver.Category(tool)
	name := r.resolver.RegistrationName(tool)
	path := inspect.ArtifactPath(artifactRoot, category, tool.ID)

	res := Result{
		ID:               tool.ID,
		Category:         category,
		RegistrationName: name,
		ArtifactPath:     path,
	}

	// A resolved category (or id) containing ".." would walk the path out
	// of the artifact tree; treat it like any other per-tool I/O failure.
	if !inspect.WithinRoot(artifactRoot, path) {
		r.log.Warn("artifact path escapes root", "tool", tool.ID, "path", path)
		res.Error = fmt.Sprintf("artifact path %s escapes artifact root", path)
		return res
	}

	markers, err := r.inspector.Inspect(path, name)
	if err != nil {
		// Fatal to this tool only; the run carries on.
		r.log.Warn("artifact inspection failed", "tool", tool.ID, "path", path, "error", err)
		res.ImplementationFound = true
		res.Error = err.Error()
		return res
	}

	res.ImplementationFound = markers.Found
	res.HasEncapsulation = markers.Encapsulation
	res.HasRegistration = markers.Registration
	res.Valid = markers.Found && markers.Encapsulation && markers.Registration
	return res
}
