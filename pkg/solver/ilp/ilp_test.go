package ilp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cellsolve/pkg/solver"
)

func solve(t *testing.T, m *Model) *solver.Result {
	t.Helper()
	res, err := m.Solve(context.Background(), solver.Params{TimeBudget: 10 * time.Second})
	require.NoError(t, err)
	return res
}

func term(v solver.Var, c int64) solver.Term { return solver.Term{Var: v, Coef: c} }

func TestRegistered(t *testing.T) {
	b, err := solver.Lookup(Name)
	require.NoError(t, err)
	assert.Equal(t, Name, b.Name())
	assert.IsType(t, &Model{}, b.NewModel())
}

func TestIntegralLP(t *testing.T) {
	m := &Model{}
	x1 := m.NewIntVar(0, 10000, "x1")
	x2 := m.NewIntVar(0, 10000, "x2")
	m.AddLinear(solver.Expr{term(x2, 1), term(x1, -1)}, solver.EQ, 5)
	m.AddLinear(solver.Expr{term(x1, 1)}, solver.GE, 11)
	m.Minimize(solver.Expr{term(x2, 1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(11), res.Value(x1))
	assert.Equal(t, int64(16), res.Value(x2))
	assert.Equal(t, int64(16), res.Objective)
}

func TestBranchingOnFractionalRelaxation(t *testing.T) {
	m := &Model{}
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")
	m.AddLinear(solver.Expr{term(x, 2), term(y, 2)}, solver.LE, 5)
	m.Minimize(solver.Expr{term(x, -1), term(y, -1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(-2), res.Objective)
	assert.Equal(t, int64(2), res.Value(x)+res.Value(y))
}

func TestDiophantineEquality(t *testing.T) {
	m := &Model{}
	x := m.NewIntVar(0, 5, "x")
	y := m.NewIntVar(0, 5, "y")
	m.AddLinear(solver.Expr{term(x, 3), term(y, 2)}, solver.EQ, 7)
	m.Minimize(solver.Expr{term(x, 1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(1), res.Value(x))
	assert.Equal(t, int64(2), res.Value(y))
}

func TestNegativeDomains(t *testing.T) {
	m := &Model{}
	x := m.NewIntVar(-50, 50, "x")
	m.AddLinear(solver.Expr{term(x, 1)}, solver.GE, -7)
	m.Minimize(solver.Expr{term(x, 1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(-7), res.Value(x))
}

func TestMinEquality(t *testing.T) {
	m := &Model{}
	a := m.NewIntVar(0, 10, "a")
	b := m.NewIntVar(0, 10, "b")
	c := m.NewIntVar(0, 10, "c")
	lo := m.NewIntVar(0, 10, "lo")
	m.AddLinear(solver.Expr{term(a, 1)}, solver.EQ, 3)
	m.AddLinear(solver.Expr{term(b, 1)}, solver.EQ, 7)
	m.AddLinear(solver.Expr{term(c, 1)}, solver.EQ, 5)
	m.AddMinEquality(lo, []solver.Var{a, b, c})
	m.Minimize(solver.Expr{term(lo, -1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(3), res.Value(lo))
}

func TestMaxEquality(t *testing.T) {
	m := &Model{}
	a := m.NewIntVar(0, 10, "a")
	b := m.NewIntVar(0, 10, "b")
	c := m.NewIntVar(0, 10, "c")
	hi := m.NewIntVar(0, 10, "hi")
	m.AddLinear(solver.Expr{term(a, 1)}, solver.EQ, 3)
	m.AddLinear(solver.Expr{term(b, 1)}, solver.EQ, 7)
	m.AddLinear(solver.Expr{term(c, 1)}, solver.EQ, 5)
	m.AddMaxEquality(hi, []solver.Var{a, b, c})
	m.Minimize(solver.Expr{term(hi, 1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(7), res.Value(hi))
}

func TestMinEqualityWithFreeMembers(t *testing.T) {
	m := &Model{}
	a := m.NewIntVar(2, 9, "a")
	b := m.NewIntVar(2, 9, "b")
	lo := m.NewIntVar(0, 20, "lo")
	m.AddMinEquality(lo, []solver.Var{a, b})
	m.Minimize(solver.Expr{term(a, 1), term(b, 1), term(lo, -3)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(-9), res.Objective)
	assert.Equal(t, int64(9), res.Value(lo))
	assert.Equal(t, res.Value(lo), min(res.Value(a), res.Value(b)))
}

func TestInfeasible(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *Model)
	}{
		{"contradicting equalities", func(m *Model) {
			x := m.NewIntVar(0, 10, "x")
			m.AddLinear(solver.Expr{term(x, 1)}, solver.EQ, 1)
			m.AddLinear(solver.Expr{term(x, 1)}, solver.EQ, 2)
		}},
		{"empty domain", func(m *Model) {
			m.NewIntVar(5, 4, "x")
		}},
		{"false constant", func(m *Model) {
			m.NewIntVar(0, 1, "x")
			m.AddLinear(nil, solver.GE, 1)
		}},
		{"no integer point", func(m *Model) {
			x := m.NewIntVar(0, 10, "x")
			m.AddLinear(solver.Expr{term(x, 2)}, solver.EQ, 3)
		}},
		{"out of domain", func(m *Model) {
			x := m.NewIntVar(0, 10, "x")
			m.AddLinear(solver.Expr{term(x, 1)}, solver.GE, 11)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Model{}
			tt.build(m)
			res := solve(t, m)
			assert.Equal(t, solver.StatusInfeasible, res.Status)
			assert.Nil(t, res.Values)
		})
	}
}

func TestModelInvalid(t *testing.T) {
	m := &Model{}
	x := m.NewIntVar(0, 10, "x")
	m.AddMinEquality(x, nil)
	res, err := m.Solve(context.Background(), solver.Params{})
	assert.ErrorIs(t, err, ErrEmptyAggregate)
	assert.Equal(t, solver.StatusModelInvalid, res.Status)

	m = &Model{}
	m.NewIntVar(0, 10, "x")
	m.AddLinear(solver.Expr{term(7, 1)}, solver.LE, 1)
	_, err = m.Solve(context.Background(), solver.Params{})
	assert.ErrorIs(t, err, ErrUnknownVar)

	m = &Model{}
	m.NewIntVar(0, 1<<50, "x")
	_, err = m.Solve(context.Background(), solver.Params{})
	assert.ErrorIs(t, err, ErrDomainTooLarge)
}

func TestExpiredBudget(t *testing.T) {
	m := &Model{}
	x := m.NewIntVar(0, 10, "x")
	m.AddLinear(solver.Expr{term(x, 1)}, solver.GE, 3)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	res, err := m.Solve(ctx, solver.Params{})
	require.NoError(t, err)
	assert.Equal(t, solver.StatusUnknown, res.Status)
}

func TestCanceledContext(t *testing.T) {
	m := &Model{}
	m.NewIntVar(0, 10, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Solve(ctx, solver.Params{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNodeLimit(t *testing.T) {
	m := Backend{NodeLimit: 1}.NewModel()
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")
	m.AddLinear(solver.Expr{term(x, 2), term(y, 2)}, solver.LE, 5)
	m.Minimize(solver.Expr{term(x, -1), term(y, -1)})

	res, err := m.Solve(context.Background(), solver.Params{})
	require.NoError(t, err)
	assert.Contains(t, []solver.Status{solver.StatusFeasible, solver.StatusUnknown}, res.Status)
	assert.Equal(t, 1, res.Nodes)
}

func TestSizeAccounting(t *testing.T) {
	m := &Model{}
	a := m.NewIntVar(0, 1, "a")
	b := m.NewIntVar(0, 1, "b")
	m.AddLinear(solver.Expr{term(a, 1)}, solver.LE, 1)
	m.AddMaxEquality(b, []solver.Var{a})
	assert.Equal(t, 2, m.NumVars())
	assert.Equal(t, 2, m.NumConstraints())
	assert.Equal(t, "b", m.VarName(b))
}

func TestRedundantEqualities(t *testing.T) {
	m := &Model{}
	x := m.NewIntVar(0, 100, "x")
	y := m.NewIntVar(0, 100, "y")
	m.AddLinear(solver.Expr{term(x, 1)}, solver.EQ, 5)
	m.AddLinear(solver.Expr{term(x, 1)}, solver.EQ, 5)
	m.AddLinear(solver.Expr{term(x, 1), term(y, 1)}, solver.EQ, 8)
	m.AddLinear(solver.Expr{term(y, 2)}, solver.EQ, 6)
	m.Minimize(solver.Expr{term(x, 1), term(y, 1)})

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, int64(5), res.Value(x))
	assert.Equal(t, int64(3), res.Value(y))
}

func TestSolveLPShiftsBounds(t *testing.T) {
	// minimize x - y with 2 <= x <= 9, -4 <= y <= 6, x + y >= 5
	rows := []row{{coef: []float64{1, 1}, sense: solver.GE, rhs: 5}}
	sol := solveLP(rows, []float64{2, -4}, []float64{9, 6}, []float64{1, -1})
	require.Equal(t, lpOptimal, sol.status)
	assert.InDelta(t, 2, sol.x[0], 1e-9)
	assert.InDelta(t, 6, sol.x[1], 1e-9)
	assert.InDelta(t, -4, sol.obj, 1e-9)

	rows = append(rows, row{coef: []float64{1, 1}, sense: solver.LE, rhs: 4})
	assert.Equal(t, lpInfeasible, solveLP(rows, []float64{2, -4}, []float64{9, 6}, []float64{1, -1}).status)

	assert.Equal(t, lpOptimal, solveLP(nil, nil, nil, nil).status)
}
