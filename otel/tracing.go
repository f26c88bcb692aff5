package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/bundlecheck/report"
)

// RunTracer wraps a validation run in a single span carrying the catalog
// location, catalog size, and final verdict.
type RunTracer struct {
	tracer trace.Tracer
}

// NewRunTracer creates a RunTracer over the given tracer.
func NewRunTracer(tracer trace.Tracer) *RunTracer {
	return &RunTracer{tracer: tracer}
}

// StartRun opens the run span. The returned context carries the span for
// any child instrumentation.
func (rt *RunTracer) StartRun(ctx context.Context, catalogPath, artifactRoot string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "bundlecheck.run",
		trace.WithAttributes(
			attribute.String("bundlecheck.catalog", catalogPath),
			attribute.String("bundlecheck.artifact_root", artifactRoot),
		),
	)
}

// EndRun closes the run span with the report outcome. A run-fatal error
// takes precedence over the verdict.
func EndRun(span trace.Span, rep report.Report, err error) {
	defer span.End()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("bundlecheck.run_id", rep.RunID),
		attribute.Int("bundlecheck.tools", len(rep.Results)),
		attribute.Int("bundlecheck.invalid", len(rep.InvalidIDs())),
		attribute.Bool("bundlecheck.overall_valid", rep.OverallValid),
	)
	if rep.OverallValid {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "bundle validation failed")
	}
}
