package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/petal-labs/bundlecheck/history"
	bundleotel "github.com/petal-labs/bundlecheck/otel"
	"github.com/petal-labs/bundlecheck/report"
)

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// ParseSchedule parses a UTC-only 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

// Watcher re-runs bundle validation on a cron schedule, records history,
// and emits metrics and a span per run. Store, Metrics, and Tracer are all
// optional.
type Watcher struct {
	Runner       *report.Runner
	Catalog      string
	ArtifactRoot string
	Schedule     cron.Schedule
	Store        *history.Store
	Metrics      *bundleotel.RunMetrics
	Tracer       *bundleotel.RunTracer
	Logger       *slog.Logger
}

// Run validates once immediately, then on every schedule tick until ctx is
// cancelled. Run-fatal validation errors are logged and do not stop the
// watcher; the next tick retries.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}
	w.runOnce(ctx, log)

	for {
		next := w.Schedule.Next(time.Now().UTC())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		w.runOnce(ctx, log)
	}
}

func (w *Watcher) runOnce(ctx context.Context, log *slog.Logger) {
	var endSpan func(report.Report, error)
	if w.Tracer != nil {
		spanCtx, span := w.Tracer.StartRun(ctx, w.Catalog, w.ArtifactRoot)
		ctx = spanCtx
		endSpan = func(rep report.Report, err error) { bundleotel.EndRun(span, rep, err) }
	}

	rep, err := w.Runner.Run(ctx, w.Catalog, w.ArtifactRoot)
	if endSpan != nil {
		endSpan(rep, err)
	}
	if err != nil {
		log.Error("validation run failed", "catalog", w.Catalog, "error", err)
		return
	}

	log.Info("validation run finished",
		"run_id", rep.RunID,
		"tools", len(rep.Results),
		"invalid", len(rep.InvalidIDs()),
		"overall_valid", rep.OverallValid,
	)

	if w.Metrics != nil {
		w.Metrics.Record(ctx, rep)
	}
	if w.Store != nil {
		if err := w.Store.Record(ctx, history.Summarize(rep)); err != nil {
			log.Warn("recording run history failed", "run_id", rep.RunID, "error", err)
		}
	}
}
