package exchange

import (
	"context"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/layout"
)

// Finalizer applies a block's reuse state. *layout.Engine implements it and
// solves unresolved blocks first.
type Finalizer interface {
	Freeze(ctx context.Context, c *cell.Cell) error
	Fix(ctx context.Context, c *cell.Cell) error
}

// cellFinalizer freezes or fixes cells that already carry boxes.
type cellFinalizer struct{}

func (cellFinalizer) Freeze(_ context.Context, c *cell.Cell) error {
	return layout.CellError(c.Freeze())
}

func (cellFinalizer) Fix(_ context.Context, c *cell.Cell) error {
	return layout.CellError(c.Fix())
}

// Tree is an imported document.
type Tree struct {
	Root *cell.Cell

	// Blocks maps block refs to their prepared cells, in the state they
	// had when instantiated.
	Blocks map[string]*cell.Cell

	// Refs maps the root scope's refs to cells.
	Refs map[string]*cell.Cell
}

// Import builds the cell tree described by doc.
//
// Blocks are built in declaration order; a block with a reuse state is
// passed to fin before any later node instantiates it. Every instance is an
// independent clone. Boxes present in the document are set as-is and never
// re-solved. A nil fin only accepts blocks whose boxes are already present.
func Import(ctx context.Context, doc *Document, fin Finalizer) (*Tree, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "import: nil document")
	}
	if fin == nil {
		fin = cellFinalizer{}
	}
	im := &importer{ctx: ctx, fin: fin, blocks: make(map[string]*cell.Cell)}

	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if b.Ref == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "block %d has no ref", i)
		}
		if _, dup := im.blocks[b.Ref]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate block ref %q", b.Ref)
		}
		s, err := im.buildScope(b, "block "+b.Ref)
		if err != nil {
			return nil, err
		}
		im.blocks[b.Ref] = s.root
	}

	s, err := im.buildScope(&doc.Root, "root")
	if err != nil {
		return nil, err
	}
	return &Tree{Root: s.root, Blocks: im.blocks, Refs: s.refs}, nil
}

type importer struct {
	ctx    context.Context
	fin    Finalizer
	blocks map[string]*cell.Cell
}

// scope holds the refs of one block or of the root.
type scope struct {
	name  string
	refs  map[string]*cell.Cell
	cells map[*Node]*cell.Cell
	root  *cell.Cell
}

// buildScope runs the import phases over one node tree: create cells,
// link children, attach constraints, set boxes, then apply reuse states
// bottom-up.
func (im *importer) buildScope(top *Node, name string) (*scope, error) {
	s := &scope{name: name, refs: make(map[string]*cell.Cell), cells: make(map[*Node]*cell.Cell)}
	if top.Use != "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: the top node cannot be a use", name)
	}
	if err := im.create(s, top); err != nil {
		return nil, err
	}
	s.root = s.cells[top]
	if err := s.link(top); err != nil {
		return nil, err
	}
	if err := s.constrain(top); err != nil {
		return nil, err
	}
	if err := s.boxes(top); err != nil {
		return nil, err
	}
	if err := im.finalize(s, top); err != nil {
		return nil, err
	}
	return s, nil
}

func (im *importer) create(s *scope, n *Node) error {
	if n.Use != "" {
		if n.Name != "" || n.Instance != "" || n.Ref != "" || len(n.Children) > 0 || len(n.Constraints) > 0 || n.Box != nil || n.Reuse != "" {
			return errors.New(errors.ErrCodeInvalidInput, "%s: use %q must not carry other fields", s.name, n.Use)
		}
		return nil
	}

	if err := validateNode(n); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "%s", s.name)
	}

	var c *cell.Cell
	switch {
	case n.Instance != "":
		block, ok := im.blocks[n.Instance]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "%s: instance of unknown block %q (blocks must be declared before use)", s.name, n.Instance)
		}
		if len(n.Children) > 0 || n.Layer != "" || n.Leaf {
			return errors.New(errors.ErrCodeInvalidInput, "%s: instance of %q cannot declare children or a layer", s.name, n.Instance)
		}
		if n.Name != "" {
			c = block.CloneAs(n.Name)
		} else {
			c = block.Clone()
		}
	case n.IsLeaf():
		if len(n.Children) > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s: leaf %q cannot have children", s.name, n.Name)
		}
		c = cell.NewLeaf(n.Name, n.Layer)
	default:
		var err error
		if c, err = cell.NewContainer(n.Name); err != nil {
			return err
		}
	}

	s.cells[n] = c
	if n.Ref != "" {
		if _, dup := s.refs[n.Ref]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "%s: duplicate ref %q", s.name, n.Ref)
		}
		s.refs[n.Ref] = c
	}
	for i := range n.Children {
		if err := im.create(s, &n.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateNode checks the labels a node carries. Empty names are allowed;
// the cell then falls back to the block name or stays anonymous.
func validateNode(n *Node) error {
	if n.Name != "" {
		if err := errors.ValidateCellName(n.Name); err != nil {
			return err
		}
	}
	if n.Layer != "" {
		if err := errors.ValidateLayer(n.Layer); err != nil {
			return err
		}
	}
	if n.Ref != "" {
		if err := errors.ValidateRef(n.Ref); err != nil {
			return err
		}
	}
	return nil
}

func (s *scope) cellOf(n *Node) (*cell.Cell, error) {
	if n.Use == "" {
		return s.cells[n], nil
	}
	c, ok := s.refs[n.Use]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "%s: use of unknown ref %q", s.name, n.Use)
	}
	return c, nil
}

func (s *scope) link(n *Node) error {
	if n.Use != "" {
		return nil
	}
	parent := s.cells[n]
	for i := range n.Children {
		ch := &n.Children[i]
		c, err := s.cellOf(ch)
		if err != nil {
			return err
		}
		if err := parent.AddChild(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidState, err, "%s: add %s to %s", s.name, c.Name(), parent.Name())
		}
		if err := s.link(ch); err != nil {
			return err
		}
	}
	return nil
}

func (s *scope) lookup(ref, role string) (*cell.Cell, error) {
	if ref == "" {
		return nil, nil
	}
	c, ok := s.refs[ref]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "%s: %s refers to unknown ref %q", s.name, role, ref)
	}
	return c, nil
}

func (s *scope) constrain(n *Node) error {
	if n.Use != "" {
		return nil
	}
	owner := s.cells[n]
	for _, k := range n.Constraints {
		kind, err := cell.ParseConstraintKind(k.Kind)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: constraint on %s", s.name, owner.Name())
		}
		subject, err := s.lookup(k.Subject, "subject")
		if err != nil {
			return err
		}
		other, err := s.lookup(k.Other, "other")
		if err != nil {
			return err
		}
		switch kind {
		case cell.KindSelf:
			if subject != nil || other != nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s: self constraint %q on %s names another cell", s.name, k.Expr, owner.Name())
			}
			owner.Constrain(k.Expr)
		case cell.KindAbsolute:
			if subject == nil || other != nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s: absolute constraint %q needs exactly a subject", s.name, k.Expr)
			}
			err = owner.ConstrainChild(subject, k.Expr)
		case cell.KindRelative:
			if subject == nil || other == nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s: relative constraint %q needs a subject and an other", s.name, k.Expr)
			}
			err = owner.Relate(subject, other, k.Expr)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidState, err, "%s: constraint %q on %s", s.name, k.Expr, owner.Name())
		}
	}
	for i := range n.Children {
		if err := s.constrain(&n.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *scope) boxes(n *Node) error {
	if n.Use != "" {
		return nil
	}
	if n.Box != nil {
		c := s.cells[n]
		if err := c.SetBox(n.Box.cellBox()); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: box of %s", s.name, c.Name())
		}
	}
	for i := range n.Children {
		if err := s.boxes(&n.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// finalize applies reuse states in post-order so inner units are settled
// before the cells that contain them.
func (im *importer) finalize(s *scope, n *Node) error {
	if n.Use != "" {
		return nil
	}
	for i := range n.Children {
		if err := im.finalize(s, &n.Children[i]); err != nil {
			return err
		}
	}
	c := s.cells[n]
	var err error
	switch n.Reuse {
	case "":
		return nil
	case ReuseFreeze:
		if c.Frozen() {
			return nil
		}
		err = im.fin.Freeze(im.ctx, c)
	case ReuseFix:
		if c.Fixed() {
			return nil
		}
		err = im.fin.Fix(im.ctx, c)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: unknown reuse %q on %s", s.name, n.Reuse, c.Name())
	}
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return errors.Wrap(code, err, "%s: %s %s", s.name, n.Reuse, c.Name())
	}
	return nil
}

var _ Finalizer = (*layout.Engine)(nil)
