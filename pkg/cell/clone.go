package cell

// Clone returns an independent structural copy of c's subtree.
//
// Every cloned cell gets a fresh [ID], so clones never share solver
// variable slots or external keys with the source or with each other.
// Boxes, reuse states, frozen boxes and fixed offsets are carried over;
// offsets are re-keyed to the cloned descendants. Constraints are remapped
// to the cloned cells; references to cells outside the subtree are kept.
// Cells shared by several containers stay shared inside the clone.
//
// Mutating the clone (children, constraints, boxes) is never observable on
// the source.
func (c *Cell) Clone() *Cell {
	b := cloneBuilder{cells: make(map[ID]*Cell)}
	root := b.copyTree(c)
	b.remap()
	return root
}

// CloneAs is like [Cell.Clone] but renames the cloned root.
func (c *Cell) CloneAs(name string) *Cell {
	root := c.Clone()
	root.name = name
	return root
}

// cloneBuilder copies a subtree in two passes: structure first, then
// constraint and offset references once every clone exists.
type cloneBuilder struct {
	cells map[ID]*Cell // source ID -> clone
	order []*Cell      // sources in copy order
}

func (b *cloneBuilder) copyTree(src *Cell) *Cell {
	if dst, ok := b.cells[src.id]; ok {
		return dst
	}
	dst := &Cell{
		id:        newID(),
		name:      src.name,
		layer:     src.layer,
		leaf:      src.leaf,
		box:       src.box,
		resolved:  src.resolved,
		reuse:     src.reuse,
		frozenBox: src.frozenBox,
	}
	b.cells[src.id] = dst
	b.order = append(b.order, src)
	if len(src.children) > 0 {
		dst.children = make([]*Cell, 0, len(src.children))
		for _, ch := range src.children {
			dst.children = append(dst.children, b.copyTree(ch))
		}
	}
	return dst
}

func (b *cloneBuilder) remap() {
	for _, src := range b.order {
		dst := b.cells[src.id]
		if len(src.constraints) > 0 {
			dst.constraints = make([]Constraint, len(src.constraints))
			for i, k := range src.constraints {
				k.Subject = b.mapped(k.Subject)
				k.Other = b.mapped(k.Other)
				dst.constraints[i] = k
			}
		}
		if src.offsets != nil {
			dst.offsets = make(map[ID]Offset, len(src.offsets))
			for id, off := range src.offsets {
				if m, ok := b.cells[id]; ok {
					dst.offsets[m.id] = off
				}
			}
		}
	}
}

func (b *cloneBuilder) mapped(x *Cell) *Cell {
	if x == nil {
		return nil
	}
	if m, ok := b.cells[x.id]; ok {
		return m
	}
	return x
}
