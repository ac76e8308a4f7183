package cell

import "fmt"

// Freeze turns a resolved cell into an opaque unit of fixed size: its box is
// cached and every non-leaf descendant is frozen as well. Later solves pin
// the cell's width and height and never see its descendants.
//
// Freezing a frozen cell is a no-op. Freezing a fixed cell, or a subtree
// containing a fixed or unresolved container, fails without changing any
// cell.
func (c *Cell) Freeze() error {
	if c.reuse == ReuseFrozen {
		return nil
	}
	targets := []*Cell{c}
	for _, d := range c.Descendants() {
		if !d.leaf {
			targets = append(targets, d)
		}
	}
	for _, t := range targets {
		if !t.resolved {
			return fmt.Errorf("freeze %s: %s: %w", c.Key(), t.Key(), ErrUnresolved)
		}
		if t.reuse == ReuseFixed {
			return fmt.Errorf("freeze %s: %s is fixed: %w", c.Key(), t.Key(), ErrReuseConflict)
		}
	}
	for _, t := range targets {
		t.reuse = ReuseFrozen
		t.frozenBox = t.box
	}
	return nil
}

// Unfreeze reverts c and every frozen descendant to the plain resolved
// state, discarding the cached boxes. It is a no-op on cells that are not
// frozen.
func (c *Cell) Unfreeze() {
	if c.reuse != ReuseFrozen {
		return
	}
	c.reuse = ReuseNone
	c.frozenBox = Box{}
	for _, d := range c.Descendants() {
		if d.reuse == ReuseFrozen {
			d.reuse = ReuseNone
			d.frozenBox = Box{}
		}
	}
}

// Fix records, for every descendant, its offset from c's origin and its
// size. Later solves keep the descendants in the model but replace their
// relations with a pure translation of c.
//
// Fixing a fixed cell is a no-op; fixing a frozen cell fails.
func (c *Cell) Fix() error {
	if c.reuse == ReuseFixed {
		return nil
	}
	if c.reuse == ReuseFrozen {
		return fmt.Errorf("fix %s: %w", c.Key(), ErrReuseConflict)
	}
	if !c.resolved {
		return fmt.Errorf("fix %s: %w", c.Key(), ErrUnresolved)
	}
	offsets := make(map[ID]Offset)
	for _, d := range c.Descendants() {
		if !d.resolved {
			return fmt.Errorf("fix %s: %s: %w", c.Key(), d.Key(), ErrUnresolved)
		}
		offsets[d.id] = Offset{
			DX: d.box.X1 - c.box.X1,
			DY: d.box.Y1 - c.box.Y1,
			W:  d.box.Width(),
			H:  d.box.Height(),
		}
	}
	c.reuse = ReuseFixed
	c.offsets = offsets
	return nil
}

// Unfix reverts a fixed cell to the plain resolved state, discarding the
// cached offsets.
func (c *Cell) Unfix() {
	if c.reuse != ReuseFixed {
		return
	}
	c.reuse = ReuseNone
	c.offsets = nil
}
