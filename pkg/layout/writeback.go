package layout

import (
	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/solver"
)

// writeBack copies solved corners onto the cells. Boxes are computed and
// validated before any cell changes, so a failure leaves the tree intact.
func (b *builder) writeBack(sol *solver.Result) error {
	boxes := make([]cell.Box, len(b.order))
	for i, s := range b.order {
		box := cell.Box{
			X1: sol.Value(s.x1()),
			Y1: sol.Value(s.y1()),
			X2: sol.Value(s.x2()),
			Y2: sol.Value(s.y2()),
		}
		if !box.Valid() {
			return errors.New(errors.ErrCodeInternal, "solver returned degenerate box %v for %s", box, s.cell.Key())
		}
		boxes[i] = box
	}

	for i, s := range b.order {
		c := s.cell
		prev, had := c.Box()
		_ = c.SetBox(boxes[i])
		if c.Frozen() && had {
			b.carryInterior(c, boxes[i].X1-prev.X1, boxes[i].Y1-prev.Y1)
		}
	}
	return nil
}

// carryInterior moves the hidden descendants of a frozen cell by the cell's
// displacement so they keep their offsets from its origin.
func (b *builder) carryInterior(c *cell.Cell, dx, dy int64) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, d := range c.Descendants() {
		if _, inModel := b.slots[d.ID()]; inModel {
			continue
		}
		if box, ok := d.Box(); ok {
			_ = d.SetBox(box.Translate(dx, dy))
		}
	}
}

// tighten sets every visible container's box to the exact bounding box of
// its resolved children, deepest containers first. Frozen cells keep their
// box.
func tighten(root *cell.Cell) {
	done := make(map[cell.ID]bool)
	var visit func(c *cell.Cell)
	visit = func(c *cell.Cell) {
		if done[c.ID()] {
			return
		}
		done[c.ID()] = true
		if c.IsLeaf() || c.Frozen() {
			return
		}
		var boxes []cell.Box
		for _, ch := range c.Children() {
			visit(ch)
			if box, ok := ch.Box(); ok {
				boxes = append(boxes, box)
			}
		}
		if bb, ok := cell.BoundingBox(boxes...); ok {
			_ = c.SetBox(bb)
		}
	}
	visit(root)
}
