package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellsolve/pkg/cache"
	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	"github.com/matzehuels/cellsolve/pkg/layout"
	"github.com/matzehuels/cellsolve/pkg/solver"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different documents;
// every run builds its own cell tree.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// LayoutTTL is how long solved documents stay cached. Zero means
	// cache.TTLLayout.
	LayoutTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The cache is wrapped so lookups reach the observability hooks.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Solved is the outcome of the solve stage.
type Solved struct {
	Root     *cell.Cell
	Document *exchange.Document
	Data     []byte // Document as JSON
	DocHash  string
	Result   *layout.Result
}

// Execute runs the solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, doc *exchange.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	solveStart := time.Now()
	solved, hit, err := r.SolveWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	shapes, err := exchange.Flatten(solved.Root)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Root:         solved.Root,
		Document:     solved.Document,
		DocumentHash: solved.DocHash,
		LayoutHash:   cache.Hash(solved.Data),
		Shapes:       shapes,
		Solve:        solved.Result,
		Artifacts:    make(map[string][]byte),
	}
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.Cells = len(solved.Root.Descendants()) + 1
	result.Stats.Shapes = len(shapes)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("solved document",
		"cells", result.Stats.Cells,
		"shapes", result.Stats.Shapes,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, solved, shapes, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo resolves doc and reports whether the solved document
// came from the cache. A cached entry is imported as-is and never re-solved.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, doc *exchange.Document, opts Options) (*Solved, bool, error) {
	if doc == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "nil document")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	canonical, err := exchange.Canonical(doc)
	if err != nil {
		return nil, false, fmt.Errorf("canonicalize document: %w", err)
	}
	docHash := cache.Hash(canonical)
	cacheKey := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if solved, err := importSolved(ctx, data); err == nil {
				solved.DocHash = docHash
				return solved, true, nil
			}
			opts.Logger.Debug("discarding unreadable cache entry", "key", cacheKey)
		} else if err != nil {
			opts.Logger.Warn("cache lookup failed", "error", err)
		}
	}

	solved, err := Solve(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}
	solved.DocHash = docHash

	ttl := r.LayoutTTL
	if ttl == 0 {
		ttl = cache.TTLLayout
	}
	if err := r.Cache.Set(ctx, cacheKey, solved.Data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
	}
	return solved, false, nil
}

// Solve imports and solves doc without caching.
//
// Blocks are solved and frozen or fixed by the engine as they are imported.
// The root is then solved unless every cell already carries a box and
// opts.Resolve is false. An unsolvable root is an INFEASIBLE (or TIMEOUT)
// error.
func Solve(ctx context.Context, doc *exchange.Document, opts Options) (*Solved, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	backend, err := solver.Lookup(opts.Backend)
	if err != nil {
		return nil, err
	}
	engine, err := layout.New(backend, opts.LayoutOptions(), opts.Logger)
	if err != nil {
		return nil, err
	}

	tree, err := exchange.Import(ctx, doc, engine)
	if err != nil {
		return nil, err
	}

	solved := &Solved{Root: tree.Root}
	if opts.Resolve || !fullyResolved(tree.Root) {
		res, err := engine.MustSolve(ctx, tree.Root)
		if err != nil {
			return nil, err
		}
		solved.Result = res
	} else {
		opts.Logger.Debug("document already resolved, skipping solve", "root", tree.Root.Key())
	}

	if solved.Document, err = exchange.Export(tree.Root); err != nil {
		return nil, err
	}
	if solved.Data, err = exchange.Marshal(solved.Document, exchange.FormatJSON); err != nil {
		return nil, err
	}
	return solved, nil
}

func importSolved(ctx context.Context, data []byte) (*Solved, error) {
	doc, err := exchange.Read(bytes.NewReader(data), exchange.FormatJSON)
	if err != nil {
		return nil, err
	}
	tree, err := exchange.Import(ctx, doc, nil)
	if err != nil {
		return nil, err
	}
	return &Solved{Root: tree.Root, Document: doc, Data: data}, nil
}

func fullyResolved(root *cell.Cell) bool {
	if !root.Resolved() {
		return false
	}
	for _, d := range root.Descendants() {
		if !d.Resolved() {
			return false
		}
	}
	return true
}

// RenderWithCacheInfo produces every requested artifact and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, solved *Solved, shapes []exchange.Shape, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(solved.Data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
			continue
		}
		allCached = false

		data, err := Render(ctx, format, solved, shapes, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLRender)
	}
	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
