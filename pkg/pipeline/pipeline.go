// Package pipeline runs layout documents through import, solve and render.
//
// The pipeline is shared by the CLI and the API server so both resolve
// documents the same way and share one cache:
//
//  1. Solve: import the document (solving and freezing blocks on the way),
//     solve the root, export the solved tree
//  2. Render: produce artifacts (solved JSON, DOT, hierarchy SVG, floorplan
//     SVG) from the solved tree
//
// Each stage is cached by content: the solve stage by the hash of the
// canonical document plus every option that changes the solve, the render
// stage by the hash of the solved document plus the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, _ := exchange.ReadFile("inverter.yaml")
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{pipeline.FormatFloorplan},
//	})
//	svg := result.Artifacts[pipeline.FormatFloorplan]
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellsolve/pkg/cache"
	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/config"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	"github.com/matzehuels/cellsolve/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultBackend is the solver backend used when Options.Backend is empty.
const DefaultBackend = config.DefaultBackend

// Format constants for output artifacts.
const (
	FormatJSON      = "json"      // solved document
	FormatDOT       = "dot"       // hierarchy as Graphviz source
	FormatHierarchy = "hierarchy" // hierarchy rendered to SVG
	FormatFloorplan = "floorplan" // leaf rectangles as SVG
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON:      true,
	FormatDOT:       true,
	FormatHierarchy: true,
	FormatFloorplan: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	Backend      string `json:"backend,omitempty"`
	NoFootprint  bool   `json:"no_footprint,omitempty"` // disable the default footprint of unconstrained leaves
	MinFootprint int64  `json:"min_footprint,omitempty"`
	DomainMin    int64  `json:"domain_min,omitempty"`
	DomainMax    int64  `json:"domain_max,omitempty"`
	TimeBudgetMS int64  `json:"time_budget_ms,omitempty"`
	Resolve      bool   `json:"resolve,omitempty"` // re-solve documents that already carry every box
	Refresh      bool   `json:"refresh,omitempty"` // ignore cached results

	// Render options
	Formats    []string `json:"formats,omitempty"`
	ShowBoxes  bool     `json:"show_boxes,omitempty"`
	ShowLayers bool     `json:"show_layers,omitempty"`
	Labels     bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// FromConfig derives options from a configuration file.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Backend:      cfg.Solver.Backend,
		NoFootprint:  !cfg.Layout.DefaultFootprint,
		MinFootprint: cfg.Layout.MinFootprint,
		DomainMin:    cfg.Solver.DomainMin,
		DomainMax:    cfg.Solver.DomainMax,
		TimeBudgetMS: cfg.Solver.TimeBudget.Milliseconds(),
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the solved cell tree.
	Root *cell.Cell

	// Document is the solved tree exported with boxes and reuse states.
	Document *exchange.Document

	// DocumentHash is the content hash of the input document.
	DocumentHash string

	// LayoutHash is the content hash of the solved document.
	LayoutHash string

	// Shapes lists the resolved leaf rectangles.
	Shapes []exchange.Shape

	// Solve describes the root solve. It is nil when the layout came from
	// the cache or the document was already resolved.
	Solve *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells      int
	Shapes     int
	SolveTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the solved document came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		names := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			names = append(names, f)
		}
		sort.Strings(names)
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.TimeBudgetMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "time budget must not be negative")
	}
	lo := o.LayoutOptions()
	if err := lo.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.MinFootprint, o.DomainMin, o.DomainMax = lo.MinFootprint, lo.DomainMin, lo.DomainMax
	o.TimeBudgetMS = lo.TimeBudget.Milliseconds()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutOptions converts the solve options to engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		DefaultFootprint: !o.NoFootprint,
		MinFootprint:     o.MinFootprint,
		DomainMin:        o.DomainMin,
		DomainMax:        o.DomainMax,
		TimeBudget:       time.Duration(o.TimeBudgetMS) * time.Millisecond,
	}
}

// LayoutKeyOpts returns cache key options for the solve stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Backend:          o.Backend,
		DefaultFootprint: !o.NoFootprint,
		MinFootprint:     o.MinFootprint,
		DomainMin:        o.DomainMin,
		DomainMax:        o.DomainMax,
		TimeBudgetMillis: o.TimeBudgetMS,
	}
}

// RenderKeyOpts returns cache key options for one artifact.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:     format,
		ShowBoxes:  o.ShowBoxes,
		ShowLayers: o.ShowLayers,
		Labels:     o.Labels,
	}
}

// String summarizes the solve options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("backend=%s footprint=%t domain=[%d,%d] budget=%dms",
		o.Backend, !o.NoFootprint, o.DomainMin, o.DomainMax, o.TimeBudgetMS)
}
