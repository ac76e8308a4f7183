// Package solver defines the integer optimization backend the layout engine
// builds its models against.
//
// A [Backend] creates empty [Model] values. A model holds bounded integer
// variables, linear constraints, min/max aggregates and a linear objective
// to minimize. Backends are selected by handle, not by a global capability
// flag: the engine is constructed with a backend and fails with
// MISSING_BACKEND when it has none.
//
// Backends register themselves by name so configuration can choose one:
//
//	import _ "github.com/matzehuels/cellsolve/pkg/solver/ilp"
//
//	b, err := solver.Lookup("ilp")
package solver

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Var identifies a variable inside one model. Vars are dense indices in
// creation order.
type Var int

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef int64
}

// Expr is a linear expression: the sum of its terms.
type Expr []Term

// Sense is the comparison of a linear constraint.
type Sense int

const (
	LE Sense = iota // expr <= rhs
	GE              // expr >= rhs
	EQ              // expr == rhs
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Status is the outcome of a solve, using the conventional solver spellings.
type Status string

const (
	StatusOptimal      Status = "OPTIMAL"
	StatusFeasible     Status = "FEASIBLE"
	StatusInfeasible   Status = "INFEASIBLE"
	StatusUnknown      Status = "UNKNOWN"
	StatusModelInvalid Status = "MODEL_INVALID"
)

// HasSolution reports whether values are available for this status.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Params tunes a single solve.
type Params struct {
	// TimeBudget bounds the solve. Zero means no limit. When the budget
	// runs out the best solution found so far is returned as FEASIBLE, or
	// UNKNOWN if there is none.
	TimeBudget time.Duration
}

// Result is what a model solve produced.
type Result struct {
	Status    Status
	Objective int64
	Values    []int64 // indexed by Var; nil unless Status.HasSolution()
	Elapsed   time.Duration
	Nodes     int // search nodes explored, when the backend reports it
}

// Value returns the solved value of v.
func (r *Result) Value(v Var) int64 { return r.Values[v] }

// Model is one optimization problem under construction.
//
// Models are not safe for concurrent use.
type Model interface {
	// NewIntVar adds an integer variable with inclusive bounds.
	NewIntVar(lo, hi int64, name string) Var

	// AddLinear adds expr sense rhs.
	AddLinear(expr Expr, sense Sense, rhs int64)

	// AddMinEquality constrains target to equal the minimum of vars.
	AddMinEquality(target Var, vars []Var)

	// AddMaxEquality constrains target to equal the maximum of vars.
	AddMaxEquality(target Var, vars []Var)

	// Minimize sets the objective. A model without objective is a pure
	// feasibility problem.
	Minimize(expr Expr)

	// NumVars and NumConstraints report the model size as built by the
	// caller. Aggregates count as one constraint each.
	NumVars() int
	NumConstraints() int

	// Solve runs the backend. Infeasibility is reported through Status,
	// not as an error; errors are reserved for malformed models and
	// backend failures.
	Solve(ctx context.Context, p Params) (*Result, error)
}

// Backend creates models.
type Backend interface {
	Name() string
	NewModel() Model
}

// Format renders expr using the given variable names.
func Format(expr Expr, name func(Var) string) string {
	if len(expr) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range expr {
		c := t.Coef
		switch {
		case i == 0 && c < 0:
			sb.WriteString("-")
			c = -c
		case i > 0 && c < 0:
			sb.WriteString(" - ")
			c = -c
		case i > 0:
			sb.WriteString(" + ")
		}
		if c != 1 {
			fmt.Fprintf(&sb, "%d*", c)
		}
		sb.WriteString(name(t.Var))
	}
	return sb.String()
}
