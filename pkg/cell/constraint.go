package cell

import "fmt"

// ConstraintKind tags which cells a constraint binds.
type ConstraintKind int

const (
	// KindSelf binds the owning cell's own coordinates.
	KindSelf ConstraintKind = iota
	// KindAbsolute binds one child cell's coordinates.
	KindAbsolute
	// KindRelative binds a child cell's coordinates against a second cell.
	KindRelative
)

func (k ConstraintKind) String() string {
	switch k {
	case KindSelf:
		return "self"
	case KindAbsolute:
		return "absolute"
	case KindRelative:
		return "relative"
	default:
		return fmt.Sprintf("ConstraintKind(%d)", int(k))
	}
}

// ParseConstraintKind converts "self", "absolute" or "relative" to a kind.
func ParseConstraintKind(s string) (ConstraintKind, error) {
	switch s {
	case "self", "":
		return KindSelf, nil
	case "absolute":
		return KindAbsolute, nil
	case "relative":
		return KindRelative, nil
	default:
		return 0, fmt.Errorf("unknown constraint kind %q", s)
	}
}

// Constraint is an unparsed relation string attached to an owning cell.
// Subject is nil for self-constraints; Other is set only for relative ones.
type Constraint struct {
	Kind    ConstraintKind
	Subject *Cell
	Other   *Cell
	Expr    string
}

// Constrain attaches a self-constraint binding c's own coordinates,
// e.g. "x1=0, y1=0, width=100". The expression is stored unparsed.
func (c *Cell) Constrain(expr string) *Cell {
	c.constraints = append(c.constraints, Constraint{Kind: KindSelf, Expr: expr})
	return c
}

// ConstrainChild attaches an absolute constraint binding subject's
// coordinates. If subject is not yet in c's subtree it is first added as a
// direct child.
func (c *Cell) ConstrainChild(subject *Cell, expr string) error {
	if err := c.ensureRegistered(subject); err != nil {
		return err
	}
	c.constraints = append(c.constraints, Constraint{Kind: KindAbsolute, Subject: subject, Expr: expr})
	return nil
}

// Relate attaches a relative constraint between subject (the "s" operand)
// and other (the "o" operand). Cells not yet in c's subtree are first added
// as direct children, subject before other.
func (c *Cell) Relate(subject, other *Cell, expr string) error {
	if err := c.ensureRegistered(subject); err != nil {
		return err
	}
	if err := c.ensureRegistered(other); err != nil {
		return err
	}
	c.constraints = append(c.constraints, Constraint{Kind: KindRelative, Subject: subject, Other: other, Expr: expr})
	return nil
}

// ensureRegistered is the first phase of every constraint builder: it makes
// x part of c's subtree without touching the constraint list.
func (c *Cell) ensureRegistered(x *Cell) error {
	if x == nil {
		return ErrNilCell
	}
	if c.Contains(x) {
		return nil
	}
	return c.AddChild(x)
}
