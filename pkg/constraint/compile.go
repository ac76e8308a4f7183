package constraint

import (
	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
)

// Compile parses a constraint string of the given kind into normal-form
// relations, in source order. Errors carry the INVALID_GRAMMAR code and wrap
// a [*SyntaxError].
func Compile(kind cell.ConstraintKind, expr string) ([]Relation, error) {
	segs := splitRelations(expr)
	out := make([]Relation, 0, len(segs))
	for _, seg := range segs {
		rel, serr := parseRelation(kind, seg)
		if serr != nil {
			serr.Expr = expr
			return nil, errors.Wrap(errors.ErrCodeInvalidGrammar, serr, "%s constraint", kind)
		}
		out = append(out, rel)
	}
	return out, nil
}

// Validate reports whether expr is a well-formed constraint string of the
// given kind without keeping the compiled form.
func Validate(kind cell.ConstraintKind, expr string) error {
	_, err := Compile(kind, expr)
	return err
}

// Bound is a compiled relation together with the cells its operands refer
// to. Other is nil unless the relation came from a relative constraint.
type Bound struct {
	Relation
	Owner   *cell.Cell
	Subject *cell.Cell
	Other   *cell.Cell
}

// Operand returns the cell a coordinate of the given role refers to.
func (b Bound) Operand(r Role) *cell.Cell {
	if r == Other {
		return b.Other
	}
	return b.Subject
}

// Bind compiles a cell constraint owned by owner and resolves its operands:
// self-constraints bind the owner, absolute and relative constraints bind
// their recorded cells.
func Bind(owner *cell.Cell, k cell.Constraint) ([]Bound, error) {
	rels, err := Compile(k.Kind, k.Expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGrammar, err, "cell %s", owner.Key())
	}
	subject := k.Subject
	if k.Kind == cell.KindSelf || subject == nil {
		subject = owner
	}
	out := make([]Bound, len(rels))
	for i, rel := range rels {
		out[i] = Bound{Relation: rel, Owner: owner, Subject: subject, Other: k.Other}
	}
	return out, nil
}
