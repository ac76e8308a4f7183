package ilp

import (
	"errors"
	"math"
	"sort"

	"github.com/matzehuels/cellsolve/pkg/solver"
)

var errUnbounded = errors.New("linear relaxation is unbounded")

// node is an open subproblem: the base rows plus branching rows.
type node struct {
	extra []row
	bound float64 // lower bound inherited from the parent relaxation
}

func (n node) with(r row) node {
	extra := make([]row, len(n.extra), len(n.extra)+1)
	copy(extra, n.extra)
	return node{extra: append(extra, r), bound: n.bound}
}

type search struct {
	m      *Model
	base   []row
	lo, hi []float64
	cost   []float64
	stop   func() bool

	best    []int64
	bestObj int64
	nodes   int
	expired bool
	inexact bool // a relaxation failed numerically and its node was dropped
	err     error
}

func newSearch(m *Model, stop func() bool) *search {
	nv := len(m.vars)
	s := &search{
		m:    m,
		lo:   make([]float64, nv),
		hi:   make([]float64, nv),
		cost: make([]float64, nv),
		stop: stop,
	}
	for i, v := range m.vars {
		s.lo[i], s.hi[i] = float64(v.lo), float64(v.hi)
	}
	for _, t := range m.objective {
		s.cost[t.Var] += float64(t.Coef)
	}
	for _, c := range m.linear {
		if isConstant(c.expr) {
			continue
		}
		s.base = append(s.base, s.dense(c.expr, c.sense, float64(c.rhs)))
	}
	for _, a := range m.aggs {
		sense := solver.LE
		if a.max {
			sense = solver.GE
		}
		if len(a.vars) == 1 {
			sense = solver.EQ
		}
		for _, v := range a.vars {
			if v == a.target {
				continue
			}
			s.base = append(s.base, s.dense(solver.Expr{{Var: a.target, Coef: 1}, {Var: v, Coef: -1}}, sense, 0))
		}
	}
	return s
}

func (s *search) dense(e solver.Expr, sense solver.Sense, rhs float64) row {
	coef := make([]float64, len(s.lo))
	for _, t := range e {
		coef[t.Var] += float64(t.Coef)
	}
	return row{coef: coef, sense: sense, rhs: rhs}
}

// run explores the tree depth first, keeping the best verified solution.
func (s *search) run() {
	stack := []node{{bound: math.Inf(-1)}}
	for len(stack) > 0 {
		if s.stop() || (s.m.nodeLimit > 0 && s.nodes >= s.m.nodeLimit) {
			s.expired = true
			return
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.pruned(nd.bound) {
			continue
		}
		s.nodes++

		rows := make([]row, 0, len(s.base)+len(nd.extra))
		rows = append(append(rows, s.base...), nd.extra...)
		sol := solveLP(rows, s.lo, s.hi, s.cost)
		switch sol.status {
		case lpFailed:
			s.inexact = true
			continue
		case lpInfeasible:
			continue
		case lpUnbounded:
			s.err = errUnbounded
			return
		}
		bound := math.Ceil(sol.obj - intTol)
		if s.pruned(bound) {
			continue
		}
		nd.bound = bound

		if j, ok := fractional(sol.x); ok {
			v := sol.x[j]
			down := nd.with(s.dense(solver.Expr{{Var: solver.Var(j), Coef: 1}}, solver.LE, math.Floor(v)))
			up := nd.with(s.dense(solver.Expr{{Var: solver.Var(j), Coef: 1}}, solver.GE, math.Ceil(v)))
			if v-math.Floor(v) < 0.5 {
				stack = append(stack, up, down)
			} else {
				stack = append(stack, down, up)
			}
			continue
		}

		vals := make([]int64, len(sol.x))
		for i, x := range sol.x {
			vals[i] = int64(math.Round(x))
		}
		if children := s.splitAggregate(nd, vals); children != nil {
			stack = append(stack, children...)
			continue
		}
		if !s.m.satisfied(vals) {
			continue
		}
		obj := eval(s.m.objective, vals)
		if s.best == nil || obj < s.bestObj {
			s.best, s.bestObj = vals, obj
		}
	}
}

func (s *search) pruned(bound float64) bool {
	return s.best != nil && bound >= float64(s.bestObj)
}

func fractional(x []float64) (int, bool) {
	for j, v := range x {
		if math.Abs(v-math.Round(v)) > intTol {
			return j, true
		}
	}
	return 0, false
}

// splitAggregate returns the children for the first aggregate vals violates,
// in stack order (preferred child last), or nil if all hold.
func (s *search) splitAggregate(nd node, vals []int64) []node {
	for _, a := range s.m.aggs {
		if vals[a.target] == extreme(a, vals) {
			continue
		}
		members := make([]solver.Var, 0, len(a.vars))
		for _, v := range a.vars {
			if v != a.target {
				members = append(members, v)
			}
		}
		// Most preferred member first: smallest for min, largest for max.
		sort.SliceStable(members, func(i, j int) bool {
			if a.max {
				return vals[members[i]] > vals[members[j]]
			}
			return vals[members[i]] < vals[members[j]]
		})
		children := make([]node, 0, len(members))
		for i := len(members) - 1; i >= 0; i-- {
			eq := s.dense(solver.Expr{{Var: a.target, Coef: 1}, {Var: members[i], Coef: -1}}, solver.EQ, 0)
			children = append(children, nd.with(eq))
		}
		return children
	}
	return nil
}
