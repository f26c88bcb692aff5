package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRoot creates a fresh cobra root command wired to all subcommands.
// Each test gets an isolated command tree to avoid shared flag state.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "bundlecheck",
		SilenceUsage: true,
	}
	root.AddCommand(NewValidateCmd())
	root.AddCommand(NewToolsCmd())
	root.AddCommand(NewWatchCmd())
	return root
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeBundle lays out a catalog and artifact tree; artifacts maps
// "category/file.js" to content.
func writeBundle(t *testing.T, catalogYAML string, artifacts map[string]string) (catalogPath, root string) {
	t.Helper()
	dir := t.TempDir()
	catalogPath = filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(catalogPath, []byte(catalogYAML), 0644); err != nil {
		t.Fatal(err)
	}
	root = filepath.Join(dir, "src")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	for rel, content := range artifacts {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return catalogPath, root
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	return exitErr.Code
}

func TestValidateValidBundleExitsZero(t *testing.T) {
	catalogPath, root := writeBundle(t,
		"tools:\n  - id: translate\n    labels: [transform]\n",
		map[string]string{
			"transform/translate.js": "(function () {\n  App.tools.translate = function (img) { return img; };\n})();\n",
		},
	)

	stdout, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "PASS translate\n") {
		t.Fatalf("stdout missing pass line:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1 tools validated, all valid") {
		t.Fatalf("stdout missing verdict:\n%s", stdout)
	}
}

func TestValidateInvalidBundleExitsValidationCode(t *testing.T) {
	catalogPath, root := writeBundle(t,
		"tools:\n  - id: flip-horizontal\n    labels: [transform]\n",
		map[string]string{
			// Registers under the raw id; the built-in override demands
			// flipHorizontal.
			"transform/flip-horizontal.js": "(function () {\n  App.tools['flip-horizontal'] = fn;\n})();\n",
		},
	)

	stdout, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root)
	if code := exitCode(t, err); code != exitValidation {
		t.Fatalf("exit code = %d, want %d", code, exitValidation)
	}
	if !strings.Contains(stdout, "FAIL flip-horizontal: registration flipHorizontal missing\n") {
		t.Fatalf("stdout missing failure line:\n%s", stdout)
	}
}

func TestValidateMissingArtifactReportsDistinctLine(t *testing.T) {
	catalogPath, root := writeBundle(t,
		"tools:\n  - id: ghost\n    labels: [transform]\n", nil)

	stdout, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root)
	if code := exitCode(t, err); code != exitValidation {
		t.Fatalf("exit code = %d, want %d", code, exitValidation)
	}
	if !strings.Contains(stdout, "FAIL ghost: artifact missing") {
		t.Fatalf("stdout missing artifact-missing line:\n%s", stdout)
	}
}

func TestValidateMissingCatalogExitsFileNotFound(t *testing.T) {
	dir := t.TempDir()
	_, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", filepath.Join(dir, "absent.yaml"), "--artifacts", dir)
	if code := exitCode(t, err); code != exitFileNotFound {
		t.Fatalf("exit code = %d, want %d", code, exitFileNotFound)
	}
}

func TestValidateMalformedCatalogExitsRunFailure(t *testing.T) {
	catalogPath, root := writeBundle(t, "tools: [unclosed", nil)
	_, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root)
	if code := exitCode(t, err); code != exitRunFailure {
		t.Fatalf("exit code = %d, want %d", code, exitRunFailure)
	}
}

func TestValidateMissingArtifactRootExitsFileNotFound(t *testing.T) {
	catalogPath, root := writeBundle(t, "tools: []\n", nil)
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	_, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root)
	if code := exitCode(t, err); code != exitFileNotFound {
		t.Fatalf("exit code = %d, want %d", code, exitFileNotFound)
	}
}

func TestValidateJSONOutput(t *testing.T) {
	catalogPath, root := writeBundle(t,
		"tools:\n  - id: translate\n    labels: [transform]\n",
		map[string]string{
			"transform/translate.js": "(() => {\n  App.tools.translate = fn;\n})();\n",
		},
	)

	stdout, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root, "--format", "json")
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(stdout, `"overall_valid": true`) {
		t.Fatalf("stdout missing overall_valid:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"id": "translate"`) {
		t.Fatalf("stdout missing result entry:\n%s", stdout)
	}
}

func TestValidateCustomNamespace(t *testing.T) {
	catalogPath, root := writeBundle(t,
		"tools:\n  - id: translate\n    labels: [transform]\n",
		map[string]string{
			"transform/translate.js": "(() => { ImageLab.tools.translate = fn; })();\n",
		},
	)

	// Default namespace fails.
	_, _, err := executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root)
	if code := exitCode(t, err); code != exitValidation {
		t.Fatalf("exit code = %d, want %d", code, exitValidation)
	}

	// Matching namespace passes.
	_, _, err = executeCommand(newTestRoot(),
		"validate", "--catalog", catalogPath, "--artifacts", root, "--namespace", "ImageLab")
	if err != nil {
		t.Fatalf("validate with namespace error = %v", err)
	}
}

func TestToolsListsResolvedNames(t *testing.T) {
	catalogPath, _ := writeBundle(t,
		"tools:\n  - id: flip-horizontal\n    name: Flip\n    labels: [transform]\n  - id: plain\n    name: Plain\n", nil)

	stdout, _, err := executeCommand(newTestRoot(), "tools", "--catalog", catalogPath)
	if err != nil {
		t.Fatalf("tools error = %v", err)
	}
	if !strings.Contains(stdout, "flipHorizontal") {
		t.Fatalf("stdout missing resolved registration name:\n%s", stdout)
	}
	// No override and no labels: the unknown category must be visible.
	if !strings.Contains(stdout, "unknown") {
		t.Fatalf("stdout missing unknown category:\n%s", stdout)
	}
}

func TestToolsJSONOutput(t *testing.T) {
	catalogPath, _ := writeBundle(t,
		"tools:\n  - id: translate\n    name: Translate\n    labels: [transform]\n    parameters:\n      - name: dx\n        type: number\n", nil)

	stdout, _, err := executeCommand(newTestRoot(), "tools", "--catalog", catalogPath, "--format", "json")
	if err != nil {
		t.Fatalf("tools error = %v", err)
	}
	if !strings.Contains(stdout, `"registration_name": "translate"`) {
		t.Fatalf("stdout missing registration_name:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"parameters": 1`) {
		t.Fatalf("stdout missing parameter count:\n%s", stdout)
	}
}

func TestWatchMissingConfigExitsFileNotFound(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, _, err := executeCommand(newTestRoot(), "watch")
	if code := exitCode(t, err); code != exitFileNotFound {
		t.Fatalf("exit code = %d, want %d", code, exitFileNotFound)
	}
}
