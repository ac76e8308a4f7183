package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/observability"
	"github.com/matzehuels/cellsolve/pkg/solver"
)

// Engine solves cell trees against a solver backend.
//
// An Engine holds no per-solve state; one Engine may serve many trees.
// Solves on the same tree must be serialized by the caller.
type Engine struct {
	Backend solver.Backend
	Options Options
	Logger  *log.Logger
}

// New creates an engine. A nil backend is accepted here and reported as
// MISSING_BACKEND by the first solve. Zero options fields take defaults.
func New(backend solver.Backend, opts Options, logger *log.Logger) (*Engine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Backend: backend, Options: opts, Logger: logger}, nil
}

// Result describes one solve.
type Result struct {
	// OK is true when boxes were written. When false, Status says why and
	// no box of the tree was changed.
	OK     bool
	Status solver.Status

	Cells       int
	Variables   int
	Constraints int
	Aggregates  int
	Objective   int64
	Elapsed     time.Duration
}

// Solve resolves the box of every cell reachable from root.
//
// It returns an error for grammar errors, relations that reference cells
// outside the model, a missing backend and backend failures. Infeasibility
// and an exhausted time budget without a solution are reported through
// Result.OK and Result.Status.
func (e *Engine) Solve(ctx context.Context, root *cell.Cell) (*Result, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "solve: nil root")
	}
	if e.Backend == nil {
		return nil, errors.New(errors.ErrCodeMissingBackend, "solve %s: no solver backend configured", root.Key())
	}
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}

	start := time.Now()
	hooks := observability.Solve()
	cells := root.Reachable()
	hooks.OnSolveStart(ctx, root.Key(), len(cells))

	b := newBuilder(e.Options, e.Backend.NewModel(), cells)
	if err := b.build(); err != nil {
		hooks.OnSolveComplete(ctx, root.Key(), "", time.Since(start), err)
		return nil, err
	}
	logger.Debug("built model",
		"root", root.Key(),
		"backend", e.Backend.Name(),
		"cells", len(cells),
		"variables", b.model.NumVars(),
		"constraints", b.model.NumConstraints(),
		"aggregates", b.aggregates)

	sol, err := b.model.Solve(ctx, solver.Params{TimeBudget: e.Options.TimeBudget})
	if err != nil {
		hooks.OnSolveComplete(ctx, root.Key(), "", time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "solve %s: backend %s", root.Key(), e.Backend.Name())
	}

	res := &Result{
		Status:      sol.Status,
		Cells:       len(cells),
		Variables:   b.model.NumVars(),
		Constraints: b.model.NumConstraints(),
		Aggregates:  b.aggregates,
	}
	if !sol.Status.HasSolution() {
		res.Elapsed = time.Since(start)
		logger.Warn("layout not solved", "root", root.Key(), "status", sol.Status, "duration", res.Elapsed)
		hooks.OnSolveComplete(ctx, root.Key(), string(sol.Status), res.Elapsed, nil)
		return res, nil
	}
	if sol.Status == solver.StatusFeasible {
		logger.Warn("time budget exhausted, keeping best layout found", "root", root.Key(), "budget", e.Options.TimeBudget)
	}

	if err := b.writeBack(sol); err != nil {
		hooks.OnSolveComplete(ctx, root.Key(), string(sol.Status), time.Since(start), err)
		return nil, err
	}
	tighten(root)

	res.OK = true
	res.Objective = sol.Objective
	res.Elapsed = time.Since(start)
	logger.Info("solved layout",
		"root", root.Key(),
		"status", sol.Status,
		"cells", res.Cells,
		"duration", res.Elapsed)
	hooks.OnSolveComplete(ctx, root.Key(), string(sol.Status), res.Elapsed, nil)
	return res, nil
}

// MustSolve is like Solve but turns an unsolved outcome into an INFEASIBLE
// error. It is what reuse operations and the pipeline use.
func (e *Engine) MustSolve(ctx context.Context, root *cell.Cell) (*Result, error) {
	res, err := e.Solve(ctx, root)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		code := errors.ErrCodeInfeasible
		if res.Status == solver.StatusUnknown {
			code = errors.ErrCodeTimeout
		}
		return res, errors.New(code, "solve %s: %s", root.Key(), res.Status)
	}
	return res, nil
}
