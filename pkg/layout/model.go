package layout

import (
	"fmt"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/constraint"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/solver"
)

// slot holds the four corner variables of one cell, in constraint.Edge
// order.
type slot struct {
	cell *cell.Cell
	v    [4]solver.Var
}

func (s *slot) x1() solver.Var { return s.v[constraint.X1] }
func (s *slot) y1() solver.Var { return s.v[constraint.Y1] }
func (s *slot) x2() solver.Var { return s.v[constraint.X2] }
func (s *slot) y2() solver.Var { return s.v[constraint.Y2] }

// edgeSet is a bit set indexed by constraint.Edge.
type edgeSet uint8

func (e edgeSet) has(edges ...constraint.Edge) bool {
	for _, x := range edges {
		if e&(1<<x) == 0 {
			return false
		}
	}
	return true
}

// builder translates a reachable cell set into a solver model.
type builder struct {
	opts  Options
	model solver.Model
	cells []*cell.Cell

	slots map[cell.ID]*slot
	order []*slot

	// anchor maps a cell to the outermost fixed ancestor whose cached
	// offsets place it.
	anchor map[cell.ID]*cell.Cell

	// mentioned holds, per cell, a bit for every edge some emitted
	// relation refers to.
	mentioned map[cell.ID]edgeSet

	relations  []constraint.Bound
	aggregates int
}

func newBuilder(opts Options, m solver.Model, cells []*cell.Cell) *builder {
	return &builder{
		opts:      opts,
		model:     m,
		cells:     cells,
		slots:     make(map[cell.ID]*slot, len(cells)),
		anchor:    make(map[cell.ID]*cell.Cell),
		mentioned: make(map[cell.ID]edgeSet),
	}
}

func (b *builder) build() error {
	b.allocate()
	b.findAnchors()
	if err := b.collectRelations(); err != nil {
		return err
	}
	b.structural()
	b.footprints()
	b.frozen()
	b.replay()
	b.containment()
	b.userRelations()
	b.objective()
	return nil
}

func (b *builder) allocate() {
	for _, c := range b.cells {
		s := &slot{cell: c}
		for e, name := range []string{"x1", "y1", "x2", "y2"} {
			s.v[e] = b.model.NewIntVar(b.opts.DomainMin, b.opts.DomainMax, c.Key()+"."+name)
		}
		b.slots[c.ID()] = s
		b.order = append(b.order, s)
	}
}

// findAnchors assigns every cell below a fixed cell to that fixed cell,
// following the same first-visit order as cell.Reachable.
func (b *builder) findAnchors() {
	root := b.cells[0]
	seen := make(map[cell.ID]bool)
	var visit func(n, anchor *cell.Cell)
	visit = func(n, anchor *cell.Cell) {
		if seen[n.ID()] {
			return
		}
		seen[n.ID()] = true
		if anchor != nil {
			if _, ok := anchor.Offset(n.ID()); ok {
				b.anchor[n.ID()] = anchor
			}
		}
		if n.Frozen() {
			return
		}
		next := anchor
		if next == nil && n.Fixed() {
			next = n
		}
		for _, ch := range n.Children() {
			visit(ch, next)
		}
	}
	visit(root, nil)
}

// collectRelations compiles the constraints of every reachable cell, so a
// grammar error is fatal wherever it sits. Cells placed by offset replay
// emit nothing. Frozen and fixed cells emit only their self-constraints;
// the relations they own on their interior are already baked into the
// cached box or offsets.
func (b *builder) collectRelations() error {
	for _, owner := range b.cells {
		_, anchored := b.anchor[owner.ID()]
		reused := owner.Frozen() || owner.Fixed()
		for _, k := range owner.Constraints() {
			bound, err := constraint.Bind(owner, k)
			if err != nil {
				return err
			}
			if anchored || (reused && k.Kind != cell.KindSelf) {
				continue
			}
			for _, r := range bound {
				if err := b.emit(owner, r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// emit checks that r only references cells of this solve and records it.
func (b *builder) emit(owner *cell.Cell, r constraint.Bound) error {
	for _, role := range []constraint.Role{constraint.Subject, constraint.Other} {
		if !r.Uses(role) {
			continue
		}
		operand := r.Operand(role)
		if operand == nil {
			return errors.New(errors.ErrCodeInvalidConstraint,
				"cell %s: relation %q has no %s operand", owner.Key(), r.Text, roleName(role))
		}
		if _, ok := b.slots[operand.ID()]; !ok {
			return errors.New(errors.ErrCodeInvalidConstraint,
				"cell %s: relation %q references %s, which is not part of this solve", owner.Key(), r.Text, operand.Key())
		}
	}
	for _, t := range r.Terms {
		id := r.Operand(t.Coord.Role).ID()
		b.mentioned[id] |= 1 << t.Coord.Edge
	}
	b.relations = append(b.relations, r)
	return nil
}

func roleName(r constraint.Role) string {
	if r == constraint.Other {
		return "other"
	}
	return "subject"
}

func (b *builder) add(expr solver.Expr, sense solver.Sense, rhs int64) {
	b.model.AddLinear(expr, sense, rhs)
}

func diff(hi, lo solver.Var) solver.Expr {
	return solver.Expr{{Var: hi, Coef: 1}, {Var: lo, Coef: -1}}
}

func single(v solver.Var) solver.Expr {
	return solver.Expr{{Var: v, Coef: 1}}
}

func (b *builder) structural() {
	for _, s := range b.order {
		b.add(diff(s.x2(), s.x1()), solver.GE, 1)
		b.add(diff(s.y2(), s.y1()), solver.GE, 1)
	}
}

// footprints keeps leaves visible that nothing sizes. Each axis is
// handled on its own: a leaf whose relations mention both of its x edges
// (for example through width) gets no minimum width, and likewise for y.
// A leaf that no relation mentions on an axis is also kept at or above 0
// on that axis.
func (b *builder) footprints() {
	if !b.opts.DefaultFootprint {
		return
	}
	for _, s := range b.order {
		c := s.cell
		if !c.IsLeaf() || c.Frozen() {
			continue
		}
		if _, anchored := b.anchor[c.ID()]; anchored {
			continue
		}
		m := b.mentioned[c.ID()]
		b.footprintAxis(m, s.x1(), s.x2(), constraint.X1, constraint.X2)
		b.footprintAxis(m, s.y1(), s.y2(), constraint.Y1, constraint.Y2)
	}
}

func (b *builder) footprintAxis(m edgeSet, lo, hi solver.Var, loEdge, hiEdge constraint.Edge) {
	if !m.has(loEdge) && !m.has(hiEdge) {
		b.add(single(lo), solver.GE, 0)
	}
	if !m.has(loEdge, hiEdge) {
		b.add(diff(hi, lo), solver.GE, b.opts.MinFootprint)
	}
}

// frozen pins the size of frozen cells; their position stays free.
func (b *builder) frozen() {
	for _, s := range b.order {
		fb, ok := s.cell.FrozenBox()
		if !ok {
			continue
		}
		b.add(diff(s.x2(), s.x1()), solver.EQ, fb.Width())
		b.add(diff(s.y2(), s.y1()), solver.EQ, fb.Height())
	}
}

// replay places every anchored cell at its cached offset from the anchor.
func (b *builder) replay() {
	for _, s := range b.order {
		f, ok := b.anchor[s.cell.ID()]
		if !ok {
			continue
		}
		off, _ := f.Offset(s.cell.ID())
		fs := b.slots[f.ID()]
		b.add(diff(s.x1(), fs.x1()), solver.EQ, off.DX)
		b.add(diff(s.y1(), fs.y1()), solver.EQ, off.DY)
		b.add(diff(s.x2(), s.x1()), solver.EQ, off.W)
		b.add(diff(s.y2(), s.y1()), solver.EQ, off.H)
	}
}

// containment adds four aggregates per container with visible children and
// requires the container to enclose them.
func (b *builder) containment() {
	for _, s := range b.order {
		c := s.cell
		if c.IsLeaf() || c.Frozen() || c.NumChildren() == 0 {
			continue
		}
		var x1s, y1s, x2s, y2s []solver.Var
		for _, ch := range c.Children() {
			cs := b.slots[ch.ID()]
			x1s = append(x1s, cs.x1())
			y1s = append(y1s, cs.y1())
			x2s = append(x2s, cs.x2())
			y2s = append(y2s, cs.y2())
		}
		name := c.Key()
		lo, hi := b.opts.DomainMin, b.opts.DomainMax
		minX := b.model.NewIntVar(lo, hi, name+".min_x1")
		minY := b.model.NewIntVar(lo, hi, name+".min_y1")
		maxX := b.model.NewIntVar(lo, hi, name+".max_x2")
		maxY := b.model.NewIntVar(lo, hi, name+".max_y2")
		b.model.AddMinEquality(minX, x1s)
		b.model.AddMinEquality(minY, y1s)
		b.model.AddMaxEquality(maxX, x2s)
		b.model.AddMaxEquality(maxY, y2s)
		b.aggregates += 4

		b.add(diff(s.x1(), minX), solver.LE, 0)
		b.add(diff(s.y1(), minY), solver.LE, 0)
		b.add(diff(s.x2(), maxX), solver.GE, 0)
		b.add(diff(s.y2(), maxY), solver.GE, 0)
	}
}

func (b *builder) userRelations() {
	for _, r := range b.relations {
		expr := make(solver.Expr, 0, len(r.Terms))
		for _, t := range r.Terms {
			s := b.slots[r.Operand(t.Coord.Role).ID()]
			expr = append(expr, solver.Term{Var: s.v[t.Coord.Edge], Coef: t.Coef})
		}
		b.add(expr, senseOf(r.Sense), r.RHS)
	}
}

func senseOf(s constraint.Sense) solver.Sense {
	switch s {
	case constraint.LE:
		return solver.LE
	case constraint.GE:
		return solver.GE
	case constraint.EQ:
		return solver.EQ
	}
	panic(fmt.Sprintf("layout: unknown sense %d", s))
}

// objective minimizes the sum of all upper corners.
func (b *builder) objective() {
	expr := make(solver.Expr, 0, 2*len(b.order))
	for _, s := range b.order {
		expr = append(expr, solver.Term{Var: s.x2(), Coef: 1}, solver.Term{Var: s.y2(), Coef: 1})
	}
	b.model.Minimize(expr)
}
