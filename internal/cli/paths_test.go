package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellsolve/pkg/cache"
	"github.com/matzehuels/cellsolve/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if expected := filepath.Join(custom, appName); dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "designs/inv.yaml", "designs/inv"},
		{"", "inv.toml", "inv"},
		{"out/inv", "inv.yaml", "out/inv"},
		{"out/inv.floorplan.svg", "inv.yaml", "out/inv"},
		{"out/inv.solved.json", "inv.yaml", "out/inv"},
		{"out/inv.json", "inv.yaml", "out/inv"},
		{"out/inv.svg", "inv.yaml", "out/inv"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		format, output string
		single         bool
		want           string
	}{
		{"json", "", true, "inv.solved.json"},
		{"floorplan", "", false, "inv.floorplan.svg"},
		{"dot", "plan.gv", true, "plan.gv"},
		{"hierarchy", "out/plan", false, "out/plan.hierarchy.svg"},
	}
	for _, tt := range tests {
		if got := artifactPath(tt.format, "inv.yaml", tt.output, tt.single); got != tt.want {
			t.Errorf("artifactPath(%q, %q, %v) = %q, want %q", tt.format, tt.output, tt.single, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"json"}},
		{"floorplan", []string{"floorplan"}},
		{"json, dot,floorplan", []string{"json", "dot", "floorplan"}},
		{"dot,,", []string{"dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNewRunnerScope(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	c := New(io.Discard, log.InfoLevel)

	r, err := c.newRunner(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newRunner() error: %v", err)
	}
	if key := r.Keyer.LayoutKey("h", cache.LayoutKeyOpts{}); strings.HasPrefix(key, "team:") {
		t.Errorf("unscoped key = %q", key)
	}

	cfg.Cache.Scope = "team:analog:"
	r, err = c.newRunner(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newRunner() error: %v", err)
	}
	if key := r.Keyer.LayoutKey("h", cache.LayoutKeyOpts{}); !strings.HasPrefix(key, "team:analog:") {
		t.Errorf("scoped key = %q, want prefix team:analog:", key)
	}
}
