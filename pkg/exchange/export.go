package exchange

import (
	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
)

// Export describes root's whole subtree, including cells hidden below
// frozen boundaries, as a document without blocks.
//
// Every declared node carries its cell key as ref, so cells with equal
// display names stay distinct. A cell shared by several containers is
// declared at its first occurrence in pre-order and referenced with a use
// node afterwards. Resolved boxes and reuse states are written as-is.
func Export(root *cell.Cell) (*Document, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "export: nil root")
	}
	ex := &exporter{declared: make(map[cell.ID]bool), inTree: make(map[cell.ID]bool)}
	ex.inTree[root.ID()] = true
	for _, d := range root.Descendants() {
		ex.inTree[d.ID()] = true
	}
	node, err := ex.node(root)
	if err != nil {
		return nil, err
	}
	return &Document{Version: Version, Root: node}, nil
}

type exporter struct {
	declared map[cell.ID]bool
	inTree   map[cell.ID]bool
}

func (ex *exporter) node(c *cell.Cell) (Node, error) {
	if ex.declared[c.ID()] {
		return Node{Use: c.Key()}, nil
	}
	ex.declared[c.ID()] = true

	n := Node{Ref: c.Key(), Name: c.Name()}
	if c.IsLeaf() {
		n.Layer = c.Layer()
		n.Leaf = n.Layer == ""
	}
	if b, ok := c.Box(); ok {
		n.Box = fromCellBox(b)
	}
	switch c.Reuse() {
	case cell.ReuseFrozen:
		n.Reuse = ReuseFreeze
	case cell.ReuseFixed:
		n.Reuse = ReuseFix
	}

	for _, k := range c.Constraints() {
		ek := Constraint{Kind: k.Kind.String(), Expr: k.Expr}
		for _, ref := range []struct {
			c   *cell.Cell
			dst *string
		}{{k.Subject, &ek.Subject}, {k.Other, &ek.Other}} {
			if ref.c == nil {
				continue
			}
			if !ex.inTree[ref.c.ID()] {
				return Node{}, errors.New(errors.ErrCodeInvalidConstraint,
					"export: constraint %q on %s refers to %s outside the exported tree", k.Expr, c.Key(), ref.c.Key())
			}
			*ref.dst = ref.c.Key()
		}
		n.Constraints = append(n.Constraints, ek)
	}

	for _, ch := range c.Children() {
		cn, err := ex.node(ch)
		if err != nil {
			return Node{}, err
		}
		n.Children = append(n.Children, cn)
	}
	return n, nil
}
