package ilp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/cellsolve/pkg/solver"
)

// maxMagnitude bounds variable domains so they stay exact in float64.
const maxMagnitude = 1 << 40

var (
	// ErrEmptyAggregate is returned for a min/max aggregate with no members.
	ErrEmptyAggregate = errors.New("aggregate has no members")
	// ErrUnknownVar is returned when an expression references a variable
	// that was not created by the model.
	ErrUnknownVar = errors.New("unknown variable")
	// ErrDomainTooLarge is returned for bounds outside ±2^40.
	ErrDomainTooLarge = errors.New("variable domain too large")
)

type variable struct {
	lo, hi int64
	name   string
}

type linearConstraint struct {
	expr  solver.Expr
	sense solver.Sense
	rhs   int64
}

type aggregate struct {
	max    bool
	target solver.Var
	vars   []solver.Var
}

// Model implements solver.Model.
type Model struct {
	vars      []variable
	linear    []linearConstraint
	aggs      []aggregate
	objective solver.Expr
	nodeLimit int
}

// NewIntVar implements solver.Model.
func (m *Model) NewIntVar(lo, hi int64, name string) solver.Var {
	m.vars = append(m.vars, variable{lo: lo, hi: hi, name: name})
	return solver.Var(len(m.vars) - 1)
}

// AddLinear implements solver.Model.
func (m *Model) AddLinear(expr solver.Expr, sense solver.Sense, rhs int64) {
	m.linear = append(m.linear, linearConstraint{expr: append(solver.Expr(nil), expr...), sense: sense, rhs: rhs})
}

// AddMinEquality implements solver.Model.
func (m *Model) AddMinEquality(target solver.Var, vars []solver.Var) {
	m.aggs = append(m.aggs, aggregate{target: target, vars: append([]solver.Var(nil), vars...)})
}

// AddMaxEquality implements solver.Model.
func (m *Model) AddMaxEquality(target solver.Var, vars []solver.Var) {
	m.aggs = append(m.aggs, aggregate{max: true, target: target, vars: append([]solver.Var(nil), vars...)})
}

// Minimize implements solver.Model.
func (m *Model) Minimize(expr solver.Expr) {
	m.objective = append(solver.Expr(nil), expr...)
}

// NumVars implements solver.Model.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints implements solver.Model.
func (m *Model) NumConstraints() int { return len(m.linear) + len(m.aggs) }

// VarName returns the name v was created with.
func (m *Model) VarName(v solver.Var) string {
	if int(v) < 0 || int(v) >= len(m.vars) {
		return fmt.Sprintf("v%d", v)
	}
	return m.vars[v].name
}

// Solve implements solver.Model.
func (m *Model) Solve(ctx context.Context, p solver.Params) (*solver.Result, error) {
	start := time.Now()
	res := &solver.Result{Status: solver.StatusUnknown}
	finish := func(s solver.Status) *solver.Result {
		res.Status = s
		res.Elapsed = time.Since(start)
		return res
	}

	if err := m.validate(); err != nil {
		return finish(solver.StatusModelInvalid), err
	}
	if !m.constantsHold() {
		return finish(solver.StatusInfeasible), nil
	}
	for _, v := range m.vars {
		if v.lo > v.hi {
			return finish(solver.StatusInfeasible), nil
		}
	}

	deadline, hasDeadline := ctx.Deadline()
	if p.TimeBudget > 0 {
		if d := start.Add(p.TimeBudget); !hasDeadline || d.Before(deadline) {
			deadline, hasDeadline = d, true
		}
	}
	stop := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return hasDeadline && time.Now().After(deadline)
	}

	s := newSearch(m, stop)
	s.run()
	res.Nodes = s.nodes

	if errors.Is(ctx.Err(), context.Canceled) {
		return finish(solver.StatusUnknown), ctx.Err()
	}
	if s.err != nil {
		return finish(solver.StatusModelInvalid), s.err
	}
	if s.best != nil {
		res.Values = s.best
		res.Objective = s.bestObj
		if s.expired || s.inexact {
			return finish(solver.StatusFeasible), nil
		}
		return finish(solver.StatusOptimal), nil
	}
	if s.expired || s.inexact {
		return finish(solver.StatusUnknown), nil
	}
	return finish(solver.StatusInfeasible), nil
}

func (m *Model) validate() error {
	n := solver.Var(len(m.vars))
	check := func(v solver.Var) error {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: %d", ErrUnknownVar, v)
		}
		return nil
	}
	for _, v := range m.vars {
		if v.lo < -maxMagnitude || v.hi > maxMagnitude {
			return fmt.Errorf("%s [%d, %d]: %w", v.name, v.lo, v.hi, ErrDomainTooLarge)
		}
	}
	for _, c := range m.linear {
		for _, t := range c.expr {
			if err := check(t.Var); err != nil {
				return err
			}
		}
	}
	for _, a := range m.aggs {
		if len(a.vars) == 0 {
			return fmt.Errorf("%s: %w", m.VarName(a.target), ErrEmptyAggregate)
		}
		if err := check(a.target); err != nil {
			return err
		}
		for _, v := range a.vars {
			if err := check(v); err != nil {
				return err
			}
		}
	}
	for _, t := range m.objective {
		if err := check(t.Var); err != nil {
			return err
		}
	}
	return nil
}

// constantsHold checks constraints whose terms all have zero coefficients.
func (m *Model) constantsHold() bool {
	for _, c := range m.linear {
		if !isConstant(c.expr) {
			continue
		}
		if !compare(0, c.sense, c.rhs) {
			return false
		}
	}
	return true
}

func isConstant(e solver.Expr) bool {
	for _, t := range e {
		if t.Coef != 0 {
			return false
		}
	}
	return true
}

func compare(lhs int64, s solver.Sense, rhs int64) bool {
	switch s {
	case solver.LE:
		return lhs <= rhs
	case solver.GE:
		return lhs >= rhs
	default:
		return lhs == rhs
	}
}

func eval(e solver.Expr, vals []int64) int64 {
	var sum int64
	for _, t := range e {
		sum += t.Coef * vals[t.Var]
	}
	return sum
}

// satisfied checks an integer assignment against every constraint exactly.
func (m *Model) satisfied(vals []int64) bool {
	for i, v := range m.vars {
		if vals[i] < v.lo || vals[i] > v.hi {
			return false
		}
	}
	for _, c := range m.linear {
		if !compare(eval(c.expr, vals), c.sense, c.rhs) {
			return false
		}
	}
	for _, a := range m.aggs {
		if vals[a.target] != extreme(a, vals) {
			return false
		}
	}
	return true
}

// extreme returns the min (or max) of an aggregate's members under vals.
func extreme(a aggregate, vals []int64) int64 {
	out := vals[a.vars[0]]
	for _, v := range a.vars[1:] {
		x := vals[v]
		if (a.max && x > out) || (!a.max && x < out) {
			out = x
		}
	}
	return out
}
