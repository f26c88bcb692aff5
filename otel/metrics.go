// Package otel provides OpenTelemetry instrumentation for validation runs:
// counters and histograms around the aggregator, spans per run, and OTLP
// exporter setup for the watch daemon.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/petal-labs/bundlecheck/report"
)

// RunMetrics records validation-run metrics: run counts, invalid-tool
// counts, and run durations.
type RunMetrics struct {
	runs         metric.Int64Counter
	invalidTools metric.Int64Counter
	runDuration  metric.Float64Histogram
}

// NewRunMetrics creates a RunMetrics that uses the given meter to create
// its instruments.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	runs, err := meter.Int64Counter("bundlecheck.runs",
		metric.WithDescription("Number of validation runs"),
	)
	if err != nil {
		return nil, err
	}

	invalid, err := meter.Int64Counter("bundlecheck.invalid_tools",
		metric.WithDescription("Number of invalid tools observed across runs"),
	)
	if err != nil {
		return nil, err
	}

	runDur, err := meter.Float64Histogram("bundlecheck.run.duration",
		metric.WithDescription("Duration of a validation run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		runs:         runs,
		invalidTools: invalid,
		runDuration:  runDur,
	}, nil
}

// Record translates one finished report into metric updates.
func (m *RunMetrics) Record(ctx context.Context, rep report.Report) {
	attrs := metric.WithAttributes(
		attribute.Bool("overall_valid", rep.OverallValid),
	)
	m.runs.Add(ctx, 1, attrs)
	m.invalidTools.Add(ctx, int64(len(rep.InvalidIDs())), attrs)
	m.runDuration.Record(ctx, rep.Elapsed.Seconds(), attrs)
}
