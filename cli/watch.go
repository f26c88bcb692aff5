package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/petal-labs/bundlecheck/daemon"
	"github.com/petal-labs/bundlecheck/history"
	bundleotel "github.com/petal-labs/bundlecheck/otel"
	"github.com/petal-labs/bundlecheck/report"
)

// NewWatchCmd creates the "watch" subcommand: scheduled re-validation driven
// by bundlecheck.yaml.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the bundle on a cron schedule",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}

	cmd.Flags().String("config", "", "Path to bundlecheck.yaml (default: discovery)")
	cmd.Flags().String("schedule", "", "Cron schedule override (UTC, 5 fields)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	configFlag, _ := cmd.Flags().GetString("config")
	scheduleFlag, _ := cmd.Flags().GetString("schedule")
	ctx := cmd.Context()
	log := slog.Default()

	configPath, found, err := daemon.DiscoverConfigPath(configFlag)
	if err != nil {
		return exitError(exitRunFailure, "%v", err)
	}
	if !found {
		return exitError(exitFileNotFound, "no bundlecheck.yaml found (use --config)")
	}

	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return exitError(exitRunFailure, "%v", err)
	}
	if scheduleFlag != "" {
		cfg.Schedule = scheduleFlag
	}

	schedule, err := daemon.ParseSchedule(cfg.Schedule)
	if err != nil {
		return exitError(exitRunFailure, "schedule: %v", err)
	}

	shutdown, err := bundleotel.InitTracing(ctx, bundleotel.TracingConfig{
		Endpoint: cfg.OTLPEndpoint,
		Insecure: true,
	})
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}
	defer func() { _ = shutdown(ctx) }()

	metrics, err := bundleotel.NewRunMetrics(otel.Meter("bundlecheck"))
	if err != nil {
		return fmt.Errorf("metrics setup: %w", err)
	}

	var store *history.Store
	if cfg.HistoryDSN != "" {
		store, err = history.Open(cfg.HistoryDSN)
		if err != nil {
			return exitError(exitRunFailure, "%v", err)
		}
		defer store.Close()
	}

	w := &daemon.Watcher{
		Runner: report.NewRunner(report.RunnerConfig{
			Tables:    cfg.Tables(),
			Namespace: cfg.Namespace,
			Workers:   cfg.Workers,
			Logger:    log,
		}),
		Catalog:      cfg.Catalog,
		ArtifactRoot: cfg.Artifacts,
		Schedule:     schedule,
		Store:        store,
		Metrics:      metrics,
		Tracer:       bundleotel.NewRunTracer(otel.Tracer("bundlecheck")),
		Logger:       log,
	}

	log.Info("watching bundle",
		"config", configPath,
		"catalog", cfg.Catalog,
		"artifacts", cfg.Artifacts,
		"schedule", cfg.Schedule,
	)
	return w.Run(ctx)
}
