package cell

import (
	"errors"
	"fmt"
)

// SkipChildren can be returned from a [WalkFunc] to skip the descendants of
// the current cell without aborting the walk.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each cell visited by [Cell.Walk]. depth is 0 for
// the cell Walk was called on.
type WalkFunc func(c *Cell, depth int) error

// AddChild appends child to the container. Order is preserved.
//
// It returns ErrLeafParent for leaves, ErrNilCell for a nil child,
// ErrDuplicateChild if the same node is already a direct child, and ErrCycle
// if child is c or one of c's ancestors.
func (c *Cell) AddChild(child *Cell) error {
	if child == nil {
		return ErrNilCell
	}
	if c.leaf {
		return fmt.Errorf("%s: %w", c.Key(), ErrLeafParent)
	}
	if child == c || child.Contains(c) {
		return fmt.Errorf("%s into %s: %w", child.Key(), c.Key(), ErrCycle)
	}
	for _, existing := range c.children {
		if existing == child {
			return fmt.Errorf("%s in %s: %w", child.Key(), c.Key(), ErrDuplicateChild)
		}
	}
	c.children = append(c.children, child)
	return nil
}

// Contains reports whether x is c or lies anywhere in c's subtree,
// including below frozen boundaries.
func (c *Cell) Contains(x *Cell) bool {
	if x == nil {
		return false
	}
	found := false
	seen := make(map[ID]bool)
	var visit func(n *Cell)
	visit = func(n *Cell) {
		if found || seen[n.id] {
			return
		}
		seen[n.id] = true
		if n == x {
			found = true
			return
		}
		for _, ch := range n.children {
			visit(ch)
		}
	}
	visit(c)
	return found
}

// Walk calls fn for c and every descendant in pre-order, following every
// reference path. Returning SkipChildren skips the current subtree; any
// other error aborts the walk and is returned.
func (c *Cell) Walk(fn WalkFunc) error {
	err := c.walk(fn, 0)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func (c *Cell) walk(fn WalkFunc, depth int) error {
	if err := fn(c, depth); err != nil {
		return err
	}
	for _, ch := range c.children {
		if err := ch.walk(fn, depth+1); err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
	}
	return nil
}

// WalkConstraints visits c's own constraints in order and then recurses into
// its children. Frozen cells are treated as opaque: neither their constraints
// nor their descendants are visited below the cell WalkConstraints was
// called on.
func (c *Cell) WalkConstraints(fn func(owner *Cell, k Constraint) error) error {
	seen := make(map[ID]bool)
	var visit func(n *Cell, top bool) error
	visit = func(n *Cell, top bool) error {
		if seen[n.id] {
			return nil
		}
		seen[n.id] = true
		if n.Frozen() && !top {
			return nil
		}
		for _, k := range n.constraints {
			if err := fn(n, k); err != nil {
				return err
			}
		}
		for _, ch := range n.children {
			if err := visit(ch, false); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(c, true)
}

// Reachable returns every distinct cell reachable from c, c first, in
// pre-order. Each cell appears once even when referenced from several
// containers. Descendants of frozen cells are not visited; descendants of
// fixed cells are.
func (c *Cell) Reachable() []*Cell {
	var out []*Cell
	seen := make(map[ID]bool)
	var visit func(n *Cell)
	visit = func(n *Cell) {
		if seen[n.id] {
			return
		}
		seen[n.id] = true
		out = append(out, n)
		if n.Frozen() {
			return
		}
		for _, ch := range n.children {
			visit(ch)
		}
	}
	visit(c)
	return out
}

// Descendants returns every distinct cell strictly below c, including those
// hidden below frozen boundaries, in pre-order.
func (c *Cell) Descendants() []*Cell {
	var out []*Cell
	seen := map[ID]bool{c.id: true}
	var visit func(n *Cell)
	visit = func(n *Cell) {
		for _, ch := range n.children {
			if seen[ch.id] {
				continue
			}
			seen[ch.id] = true
			out = append(out, ch)
			visit(ch)
		}
	}
	visit(c)
	return out
}

// Lookup finds the cell with the given ID in c's subtree.
func (c *Cell) Lookup(id ID) (*Cell, bool) {
	if c.id == id {
		return c, true
	}
	for _, d := range c.Descendants() {
		if d.id == id {
			return d, true
		}
	}
	return nil, false
}

// Leaves returns the distinct leaf cells of c's subtree in pre-order,
// including leaves hidden below frozen boundaries.
func (c *Cell) Leaves() []*Cell {
	if c.leaf {
		return []*Cell{c}
	}
	var out []*Cell
	for _, d := range c.Descendants() {
		if d.leaf {
			out = append(out, d)
		}
	}
	return out
}

// Translate moves a resolved cell and every resolved descendant by (dx, dy).
// Relative positions inside the subtree are preserved exactly.
func (c *Cell) Translate(dx, dy int64) error {
	if !c.resolved {
		return fmt.Errorf("translate %s: %w", c.Key(), ErrUnresolved)
	}
	c.box = c.box.Translate(dx, dy)
	for _, d := range c.Descendants() {
		if d.resolved {
			d.box = d.box.Translate(dx, dy)
		}
	}
	return nil
}
