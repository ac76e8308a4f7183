package layout

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/observability"
)

// Freeze solves c if any part of its subtree is unresolved, then freezes it.
// A failed solve is returned as an INFEASIBLE (or TIMEOUT) error and leaves
// every cell unfrozen. Freezing a fixed cell is an INVALID_STATE error.
func (e *Engine) Freeze(ctx context.Context, c *cell.Cell) error {
	err := e.reuse(ctx, c, "freeze", c.Frozen, c.Freeze)
	observability.Solve().OnReuse(ctx, "freeze", c.Key(), err)
	return err
}

// Fix solves c if any part of its subtree is unresolved, then records the
// offsets of every descendant. Fixing a frozen cell is an INVALID_STATE
// error.
func (e *Engine) Fix(ctx context.Context, c *cell.Cell) error {
	err := e.reuse(ctx, c, "fix", c.Fixed, c.Fix)
	observability.Solve().OnReuse(ctx, "fix", c.Key(), err)
	return err
}

func (e *Engine) reuse(ctx context.Context, c *cell.Cell, op string, already func() bool, apply func() error) error {
	if already() {
		return nil
	}
	if c.Frozen() || c.Fixed() {
		return errors.Wrap(errors.ErrCodeInvalidState, cell.ErrReuseConflict, "%s %s: cell is %s", op, c.Key(), c.Reuse())
	}
	if !subtreeResolved(c) {
		if _, err := e.MustSolve(ctx, c); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "%s %s", op, c.Key())
		}
	}
	if err := apply(); err != nil {
		return CellError(err)
	}
	if e.Logger != nil {
		e.Logger.Debug("reuse state changed", "cell", c.Key(), "state", c.Reuse())
	}
	return nil
}

func subtreeResolved(c *cell.Cell) bool {
	if !c.Resolved() {
		return false
	}
	for _, d := range c.Descendants() {
		if !d.Resolved() {
			return false
		}
	}
	return true
}

// CellError maps the cell package's sentinel errors onto coded errors.
func CellError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, cell.ErrUnresolved):
		return errors.Wrap(errors.ErrCodeUnresolved, err, "cell not resolved")
	case stderrors.Is(err, cell.ErrReuseConflict),
		stderrors.Is(err, cell.ErrLeafParent),
		stderrors.Is(err, cell.ErrCycle),
		stderrors.Is(err, cell.ErrDuplicateChild),
		stderrors.Is(err, cell.ErrNilCell):
		return errors.Wrap(errors.ErrCodeInvalidState, err, "invalid tree operation")
	case stderrors.Is(err, cell.ErrInvalidBox):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid box")
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "cell operation failed")
}
