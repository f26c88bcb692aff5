package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/bundlecheck/catalog"
	"github.com/petal-labs/bundlecheck/report"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Cross-validate the tool catalog against its implementation artifacts",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}

	cmd.Flags().String("catalog", "catalog.yaml", "Path to the catalog document")
	cmd.Flags().String("artifacts", "src", "Root of the artifact tree")
	cmd.Flags().String("namespace", "", "Shared namespace root artifacts register into (default App)")
	cmd.Flags().Int("workers", 0, "Concurrent artifact inspections (default 4)")
	cmd.Flags().String("format", "text", "Output format: text | json")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	artifactRoot, _ := cmd.Flags().GetString("artifacts")
	namespace, _ := cmd.Flags().GetString("namespace")
	workers, _ := cmd.Flags().GetInt("workers")
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	runner := report.NewRunner(report.RunnerConfig{
		Namespace: namespace,
		Workers:   workers,
	})

	rep, err := runner.Run(cmd.Context(), catalogPath, artifactRoot)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			return exitError(exitFileNotFound, "catalog not found: %s", catalogPath)
		case errors.Is(err, catalog.ErrMalformed):
			return exitError(exitRunFailure, "catalog malformed: %v", err)
		case errors.Is(err, report.ErrArtifactRootNotFound):
			return exitError(exitFileNotFound, "artifact root not found: %s", artifactRoot)
		default:
			return fmt.Errorf("validation run: %w", err)
		}
	}

	if format == "json" {
		if err := rep.RenderJSON(out); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		rep.RenderText(out)
	}

	if !rep.OverallValid {
		return exitError(exitValidation, "bundle validation failed")
	}
	return nil
}
