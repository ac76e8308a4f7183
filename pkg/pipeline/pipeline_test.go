package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellsolve/pkg/cache"
	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/config"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	_ "github.com/matzehuels/cellsolve/pkg/solver/ilp"
)

const inverterYAML = `
blocks:
  - ref: inv
    name: inverter
    reuse: freeze
    children:
      - {ref: p, name: pmos, layer: diff}
      - {ref: n, name: nmos, layer: diff}
    constraints:
      - {kind: absolute, subject: p, expr: "x1=0, y1=0, width=10, height=4"}
      - {kind: relative, subject: n, other: p, expr: "sx1=ox1, sy1=oy2+2, swidth=owidth, sheight=oheight"}
root:
  name: top
  children:
    - {ref: u1, instance: inv}
    - {ref: u2, instance: inv, name: inv2}
  constraints:
    - {kind: relative, subject: u2, other: u1, expr: "sx1 = ox2 + 5, sy1 = oy1"}
`

func inverterDoc(t *testing.T) *exchange.Document {
	t.Helper()
	doc, err := exchange.Unmarshal([]byte(inverterYAML), exchange.FormatYAML)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return doc
}

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"hierarchy", false},
		{"floorplan", false},
		{"svg", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}

	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Backend != DefaultBackend {
		t.Errorf("Backend = %v, want %v", opts.Backend, DefaultBackend)
	}
	if opts.DomainMin != 0 || opts.DomainMax != 10000 {
		t.Errorf("domain = [%d, %d], want [0, 10000]", opts.DomainMin, opts.DomainMax)
	}
	if opts.TimeBudgetMS != 10000 {
		t.Errorf("TimeBudgetMS = %v, want 10000", opts.TimeBudgetMS)
	}
	if !opts.LayoutOptions().DefaultFootprint {
		t.Error("default footprint should be on")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"empty domain", Options{DomainMin: 5, DomainMax: 5}},
		{"negative budget", Options{TimeBudgetMS: -1}},
		{"bad format", Options{Formats: []string{"png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ValidateAndSetDefaults() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.DefaultFootprint = false
	cfg.Solver.DomainMax = 640
	opts := FromConfig(cfg)
	if !opts.NoFootprint || opts.DomainMax != 640 || opts.Backend != "ilp" || opts.TimeBudgetMS != 10000 {
		t.Errorf("FromConfig = %+v", opts)
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t, nil)
	res, err := r.Execute(context.Background(), inverterDoc(t), Options{
		Formats: []string{FormatJSON, FormatDOT, FormatFloorplan},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Solve == nil || !res.Solve.OK {
		t.Fatalf("Solve = %+v, want a successful solve", res.Solve)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("NullCache run reported a cache hit")
	}
	if res.Stats.Shapes != 4 {
		t.Errorf("Shapes = %d, want 4", res.Stats.Shapes)
	}
	if b, _ := res.Root.Box(); b != (cell.Box{X1: 0, Y1: 0, X2: 25, Y2: 10}) {
		t.Errorf("root box = %v, want (0,0)-(25,10)", b)
	}

	var doc exchange.Document
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.Root.Box == nil || doc.Root.Box.X2 != 25 {
		t.Errorf("json artifact root box = %+v", doc.Root.Box)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph cells {") {
		t.Errorf("dot artifact = %.40s", res.Artifacts[FormatDOT])
	}
	if strings.Count(string(res.Artifacts[FormatFloorplan]), "<rect") != 4 {
		t.Errorf("floorplan should draw 4 rectangles")
	}
}

func TestExecuteCacheHit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, fc)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatFloorplan}}

	first, err := r.Execute(ctx, inverterDoc(t), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := r.Execute(ctx, inverterDoc(t), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v, want both hits", second.CacheInfo)
	}
	if second.Solve != nil {
		t.Error("cached layout should not be re-solved")
	}
	if first.DocumentHash != second.DocumentHash || first.LayoutHash != second.LayoutHash {
		t.Error("hashes differ between runs of the same document")
	}
	for i := range first.Shapes {
		if first.Shapes[i].Box != second.Shapes[i].Box || first.Shapes[i].Path != second.Shapes[i].Path {
			t.Errorf("shape %d = %+v, want %+v", i, second.Shapes[i], first.Shapes[i])
		}
	}
	if !second.Root.Children()[0].Frozen() {
		t.Error("cached import lost the frozen state of instances")
	}

	refreshed, err := r.Execute(ctx, inverterDoc(t), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if refreshed.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the cache")
	}

	other, err := r.Execute(ctx, inverterDoc(t), Options{DomainMax: 5000})
	if err != nil {
		t.Fatalf("Execute with other options: %v", err)
	}
	if other.CacheInfo.LayoutHit {
		t.Error("different solve options must not share a cache entry")
	}
}

func TestExecuteResolvedDocumentSkipsSolve(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()
	first, err := r.Execute(ctx, inverterDoc(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	again, err := r.Execute(ctx, first.Document, Options{})
	if err != nil {
		t.Fatalf("Execute(solved doc): %v", err)
	}
	if again.Solve != nil {
		t.Error("fully resolved document was re-solved")
	}

	forced, err := r.Execute(ctx, first.Document, Options{Resolve: true})
	if err != nil {
		t.Fatalf("Execute(Resolve): %v", err)
	}
	if forced.Solve == nil {
		t.Error("Resolve should force a solve")
	}
}

func TestExecuteErrors(t *testing.T) {
	infeasible := &exchange.Document{Root: exchange.Node{
		Name:     "top",
		Children: []exchange.Node{{Ref: "a", Name: "a", Layer: "m1"}},
		Constraints: []exchange.Constraint{
			{Kind: "absolute", Subject: "a", Expr: "x1 > 5, x1 < 3"},
		},
	}}
	badGrammar := &exchange.Document{Root: exchange.Node{
		Name:        "top",
		Constraints: []exchange.Constraint{{Expr: "x1 ~ 5"}},
	}}

	tests := []struct {
		name string
		doc  *exchange.Document
		opts Options
		code errors.Code
	}{
		{"infeasible", infeasible, Options{}, errors.ErrCodeInfeasible},
		{"grammar", badGrammar, Options{}, errors.ErrCodeInvalidGrammar},
		{"unknown backend", infeasible, Options{Backend: "cp-sat"}, errors.ErrCodeMissingBackend},
		{"nil document", nil, Options{}, errors.ErrCodeInvalidInput},
	}
	r := newTestRunner(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.doc, tt.opts)
			if !errors.Has(err, tt.code) {
				t.Errorf("Execute error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	ctx := context.Background()
	if issues := ValidateDocument(ctx, inverterDoc(t)); len(issues) != 0 {
		t.Errorf("clean document has issues: %v", issues)
	}

	doc := inverterDoc(t)
	doc.Root.Constraints = append(doc.Root.Constraints,
		exchange.Constraint{Kind: "relative", Subject: "u2", Other: "u1", Expr: "sx1 = ox2 + 5, x1 = 3"},
		exchange.Constraint{Kind: "self", Expr: "width * height = 100"},
	)
	issues := ValidateDocument(ctx, doc)
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %v", len(issues), issues)
	}
	for _, is := range issues {
		if is.Code != errors.ErrCodeInvalidGrammar {
			t.Errorf("issue %v has code %v, want INVALID_GRAMMAR", is, is.Code)
		}
		if is.Where != "root > top" {
			t.Errorf("issue location = %q, want %q", is.Where, "root > top")
		}
	}

	broken := inverterDoc(t)
	broken.Root.Children[1].Instance = "nand"
	issues = ValidateDocument(ctx, broken)
	if len(issues) != 1 || issues[0].Code != errors.ErrCodeNotFound {
		t.Errorf("unknown instance issues = %v, want one NOT_FOUND", issues)
	}
}
