package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cellsolve/pkg/exchange"
)

const rowYAML = `
root:
  name: top
  children:
    - {ref: a, name: a, layer: m1}
    - {ref: b, name: b, layer: m2}
  constraints:
    - {kind: absolute, subject: a, expr: "x1=0, y1=0, width=20, height=10"}
    - {kind: relative, subject: b, other: a, expr: "sx1=ox2+5, sy1=oy1, swidth=owidth, sheight=oheight"}
`

// isolate points the config and cache locations at fresh directories.
func isolate(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return configHome, cacheHome
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun runs the CLI and fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestSolveWritesArtifacts(t *testing.T) {
	isolate(t)
	input := writeDoc(t, "row.yaml", rowYAML)

	mustRun(t, "solve", input, "-f", "json,floorplan")

	base := strings.TrimSuffix(input, ".yaml")
	doc, err := exchange.ReadFile(base + ".solved.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if doc.Root.Box == nil {
		t.Fatal("root box missing from solved document")
	}
	if want := (exchange.Box{X1: 0, Y1: 0, X2: 45, Y2: 10}); *doc.Root.Box != want {
		t.Errorf("root box = %v, want %v", *doc.Root.Box, want)
	}

	svg, err := os.ReadFile(base + ".floorplan.svg")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n := strings.Count(string(svg), "<rect"); n != 2 {
		t.Errorf("floorplan has %d rects, want 2", n)
	}
}

func TestSolveToStdout(t *testing.T) {
	isolate(t)
	input := writeDoc(t, "row.yaml", rowYAML)

	out := mustRun(t, "solve", input, "-f", "dot", "-o", "-", "--no-cache")
	if !strings.HasPrefix(out, "digraph cells {") {
		t.Errorf("stdout = %q, want DOT source", out)
	}

	if _, err := runCLI(t, "solve", input, "-f", "dot,json", "-o", "-"); err == nil {
		t.Error("stdout output with two formats should fail")
	}
}

func TestSolveFlagsOverrideConfig(t *testing.T) {
	configHome, _ := isolate(t)
	cfgPath := filepath.Join(configHome, "cellsolve", "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfgPath, []byte("[solver]\nbackend = \"cp-sat\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	input := writeDoc(t, "row.yaml", rowYAML)

	_, err := runCLI(t, "solve", input, "-o", "-")
	if err == nil || !strings.Contains(err.Error(), "cp-sat") {
		t.Errorf("solve with unknown configured backend: err = %v, want mention of cp-sat", err)
	}

	mustRun(t, "solve", input, "-o", "-", "--backend", "ilp")
}

func TestSolveErrors(t *testing.T) {
	isolate(t)
	input := writeDoc(t, "row.yaml", rowYAML)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"solve", input, "-f", "png"}},
		{"missing input", []string{"solve", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"domain too small", []string{"solve", input, "--domain-max", "30", "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	isolate(t)
	good := writeDoc(t, "row.yaml", rowYAML)
	mustRun(t, "validate", good)

	bad := writeDoc(t, "bad.yaml", strings.Replace(rowYAML, "sx1=ox2+5", "sx1=ox2+5, x1=0", 1))
	out, err := runCLI(t, "validate", bad)
	if err == nil {
		t.Fatal("validate of a bad document should fail")
	}
	for _, want := range []string{"root > top", "^"} {
		if !strings.Contains(out, want) {
			t.Errorf("validate output missing %q:\n%s", want, out)
		}
	}
}

func TestFlattenCommand(t *testing.T) {
	isolate(t)
	input := writeDoc(t, "row.yaml", rowYAML)

	out := mustRun(t, "flatten", input, "--json")
	var shapes []exchange.Shape
	if err := json.Unmarshal([]byte(out), &shapes); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, out)
	}
	if len(shapes) != 2 {
		t.Fatalf("len(shapes) = %d, want 2", len(shapes))
	}
	if shapes[0].Path != "top/a" {
		t.Errorf("shapes[0].Path = %q, want top/a", shapes[0].Path)
	}
	if shapes[1].Box.X1 != 25 {
		t.Errorf("shapes[1].Box.X1 = %d, want 25", shapes[1].Box.X1)
	}

	out = mustRun(t, "flatten", input, "--layer", "m2")
	if !strings.Contains(out, "top/b") || strings.Contains(out, "top/a") {
		t.Errorf("layer filter output:\n%s", out)
	}
	if !strings.Contains(out, "1 shapes") {
		t.Errorf("missing shape count:\n%s", out)
	}
}

func TestConvertCommand(t *testing.T) {
	isolate(t)
	input := writeDoc(t, "row.yaml", rowYAML)

	if out := mustRun(t, "convert", input, "--to", "toml"); !strings.Contains(out, "[root]") {
		t.Errorf("toml output missing [root]:\n%s", out)
	}

	target := filepath.Join(t.TempDir(), "row.json")
	mustRun(t, "convert", input, "-o", target)
	converted, err := exchange.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile(converted): %v", err)
	}
	original, err := exchange.ReadFile(input)
	if err != nil {
		t.Fatalf("ReadFile(original): %v", err)
	}

	a, _ := exchange.Canonical(original)
	b, _ := exchange.Canonical(converted)
	if !bytes.Equal(a, b) {
		t.Errorf("converted document differs:\n%s\nwant\n%s", b, a)
	}
}

func TestConfigCommands(t *testing.T) {
	configHome, _ := isolate(t)

	out := mustRun(t, "config", "path")
	if want := filepath.Join(configHome, "cellsolve", "config.toml"); strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), want)
	}

	mustRun(t, "config", "init")
	if _, err := runCLI(t, "config", "init"); err == nil {
		t.Error("init must not overwrite without --force")
	}
	mustRun(t, "config", "init", "--force")

	if out := mustRun(t, "config", "show"); !strings.Contains(out, `backend = "ilp"`) {
		t.Errorf("config show:\n%s", out)
	}

	custom := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(custom, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := mustRun(t, "--config", custom, "config", "show"); !strings.Contains(out, `addr = ":9090"`) {
		t.Errorf("config show --config:\n%s", out)
	}

	if _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "config", "show"); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	_, cacheHome := isolate(t)

	out := mustRun(t, "cache", "path")
	if want := filepath.Join(cacheHome, "cellsolve"); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}

	input := writeDoc(t, "row.yaml", rowYAML)
	mustRun(t, "solve", input, "-o", "-")

	pattern := filepath.Join(cacheHome, "cellsolve", "*", "*.json")
	if entries, _ := filepath.Glob(pattern); len(entries) == 0 {
		t.Error("solve should populate the cache")
	}

	mustRun(t, "cache", "clear")
	if entries, _ := filepath.Glob(pattern); len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	if out := mustRun(t, "completion", "bash"); !strings.Contains(out, "cellsolve") {
		t.Error("bash completion should mention cellsolve")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}
