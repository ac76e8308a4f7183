package ilp

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/matzehuels/cellsolve/pkg/solver"
)

const (
	// lpTol is the reduced-cost tolerance handed to the simplex.
	lpTol  = 1e-10
	intTol = 1e-6
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
	// lpFailed means the simplex gave up for numerical reasons. The node is
	// dropped, so the search can no longer claim optimality.
	lpFailed
)

// row is a dense linear constraint over the model variables.
type row struct {
	coef  []float64
	sense solver.Sense
	rhs   float64
}

type lpSolution struct {
	status lpStatus
	x      []float64
	obj    float64
}

// solveLP minimizes cost·x subject to rows and lo <= x <= hi.
//
// The problem is brought into the standard form A·z = b, z >= 0 that
// lp.Simplex expects: variables are shifted to y = x - lo, every row
// becomes one or two "<=" rows (equalities are split), each variable gets
// an upper-bound row, and every row gets its own slack. The slack identity
// keeps A at full row rank however redundant the input rows are.
func solveLP(rows []row, lo, hi, cost []float64) lpSolution {
	nv := len(lo)
	if nv == 0 {
		for _, r := range rows {
			if !compareFloat(0, r.sense, r.rhs) {
				return lpSolution{status: lpInfeasible}
			}
		}
		return lpSolution{status: lpOptimal}
	}

	var le []row
	for _, r := range rows {
		b := r.rhs
		for j, c := range r.coef {
			b -= c * lo[j]
		}
		switch r.sense {
		case solver.LE:
			le = append(le, row{coef: r.coef, rhs: b})
		case solver.GE:
			le = append(le, row{coef: negate(r.coef), rhs: -b})
		default:
			le = append(le, row{coef: r.coef, rhs: b}, row{coef: negate(r.coef), rhs: -b})
		}
	}
	for j := 0; j < nv; j++ {
		coef := make([]float64, nv)
		coef[j] = 1
		le = append(le, row{coef: coef, rhs: hi[j] - lo[j]})
	}

	m, n := len(le), nv+len(le)
	a := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	for i, r := range le {
		for j, c := range r.coef {
			if c != 0 {
				a.Set(i, j, c)
			}
		}
		a.Set(i, nv+i, 1)
		b[i] = r.rhs
	}
	c := make([]float64, n)
	copy(c, cost)

	_, z, err := lp.Simplex(c, a, b, lpTol, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return lpSolution{status: lpInfeasible}
	case errors.Is(err, lp.ErrUnbounded):
		return lpSolution{status: lpUnbounded}
	case err != nil:
		return lpSolution{status: lpFailed}
	}

	x := make([]float64, nv)
	obj := 0.0
	for j := range x {
		x[j] = z[j] + lo[j]
		obj += cost[j] * x[j]
	}
	return lpSolution{status: lpOptimal, x: x, obj: obj}
}

func negate(coef []float64) []float64 {
	out := make([]float64, len(coef))
	for j, c := range coef {
		out[j] = -c
	}
	return out
}

func compareFloat(lhs float64, s solver.Sense, rhs float64) bool {
	switch s {
	case solver.LE:
		return lhs <= rhs
	case solver.GE:
		return lhs >= rhs
	default:
		return lhs == rhs
	}
}
