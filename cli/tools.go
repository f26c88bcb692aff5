package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/bundlecheck/catalog"
	"github.com/petal-labs/bundlecheck/resolve"
)

// NewToolsCmd creates the "tools" subcommand, which lists catalog entries
// with their resolved category and registration name. Useful for spotting a
// tool that fell through to the "unknown" category.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List catalog tools with resolved category and registration name",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}

	cmd.Flags().String("catalog", "catalog.yaml", "Path to the catalog document")
	cmd.Flags().String("format", "text", "Output format: text | json")

	return cmd
}

// toolListing is the JSON shape for one resolved catalog entry.
type toolListing struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	RegistrationName string   `json:"registration_name"`
	Labels           []string `json:"labels,omitempty"`
	Parameters       int      `json:"parameters"`
}

func runTools(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	tools, err := catalog.Load(catalogPath)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return exitError(exitFileNotFound, "catalog not found: %s", catalogPath)
		}
		return exitError(exitRunFailure, "loading catalog: %v", err)
	}

	resolver := resolve.New(resolve.DefaultTables())
	listings := make([]toolListing, 0, len(tools))
	for _, t := range tools {
		listings = append(listings, toolListing{
			ID:               t.ID,
			Name:             t.Name,
			Category:         resolver.Category(t),
			RegistrationName: resolver.RegistrationName(t),
			Labels:           t.Labels,
			Parameters:       len(t.Parameters),
		})
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tREGISTERS AS\tLABELS\tPARAMS")
	for _, l := range listings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			l.ID, l.Category, l.RegistrationName, strings.Join(l.Labels, ","), l.Parameters)
	}
	return w.Flush()
}
