package constraint

import (
	"fmt"
	"math/big"
	"strings"
)

// Role selects which cell a coordinate belongs to.
type Role int

const (
	// Subject is the cell a self or absolute constraint binds, and the
	// "s"-prefixed operand of a relative constraint.
	Subject Role = iota
	// Other is the "o"-prefixed operand of a relative constraint.
	Other
)

func (r Role) prefix() string {
	if r == Other {
		return "o"
	}
	return "s"
}

// Edge is one of the four corner coordinates of a box.
type Edge int

const (
	X1 Edge = iota
	Y1
	X2
	Y2
)

var edgeNames = [...]string{"x1", "y1", "x2", "y2"}

func (e Edge) String() string { return edgeNames[e] }

// Coord names one coordinate variable of one operand.
type Coord struct {
	Role Role
	Edge Edge
}

func (c Coord) String() string { return c.Role.prefix() + c.Edge.String() }

const numCoords = 8

func (c Coord) index() int { return int(c.Role)*4 + int(c.Edge) }

func coordAt(i int) Coord { return Coord{Role: Role(i / 4), Edge: Edge(i % 4)} }

// linear is an affine form over the eight operand coordinates with exact
// rational coefficients. Values are never shared: every operation returns a
// fresh form.
type linear struct {
	coef  [numCoords]big.Rat
	konst big.Rat
}

func constant(v *big.Rat) *linear {
	l := new(linear)
	l.konst.Set(v)
	return l
}

func (l *linear) isConstant() bool {
	for i := range l.coef {
		if l.coef[i].Sign() != 0 {
			return false
		}
	}
	return true
}

func (l *linear) add(o *linear, sign int) *linear {
	out := new(linear)
	for i := range out.coef {
		if sign < 0 {
			out.coef[i].Sub(&l.coef[i], &o.coef[i])
		} else {
			out.coef[i].Add(&l.coef[i], &o.coef[i])
		}
	}
	if sign < 0 {
		out.konst.Sub(&l.konst, &o.konst)
	} else {
		out.konst.Add(&l.konst, &o.konst)
	}
	return out
}

func (l *linear) scale(k *big.Rat) *linear {
	out := new(linear)
	for i := range out.coef {
		out.coef[i].Mul(&l.coef[i], k)
	}
	out.konst.Mul(&l.konst, k)
	return out
}

// Term is one integer-scaled coordinate of a compiled relation.
type Term struct {
	Coord Coord
	Coef  int64
}

// Sense is the comparison of a compiled relation.
type Sense int

const (
	LE Sense = iota // sum <= rhs
	GE              // sum >= rhs
	EQ              // sum == rhs
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "="
	}
}

// Relation is one compiled relation in normal form. Terms holds the
// non-zero coefficients in coordinate order.
type Relation struct {
	Text  string
	Op    string
	Terms []Term
	Sense Sense
	RHS   int64
}

// Trivial reports whether the relation mentions no coordinate.
func (r Relation) Trivial() bool { return len(r.Terms) == 0 }

// Holds evaluates a trivial relation. It is meaningless otherwise.
func (r Relation) Holds() bool {
	switch r.Sense {
	case LE:
		return 0 <= r.RHS
	case GE:
		return 0 >= r.RHS
	default:
		return r.RHS == 0
	}
}

// Uses reports whether the relation mentions a coordinate of role.
func (r Relation) Uses(role Role) bool {
	for _, t := range r.Terms {
		if t.Coord.Role == role {
			return true
		}
	}
	return false
}

func (r Relation) String() string {
	var sb strings.Builder
	for i, t := range r.Terms {
		coef := t.Coef
		switch {
		case i == 0 && coef < 0:
			sb.WriteString("-")
			coef = -coef
		case i > 0 && coef < 0:
			sb.WriteString(" - ")
			coef = -coef
		case i > 0:
			sb.WriteString(" + ")
		}
		if coef != 1 {
			fmt.Fprintf(&sb, "%d*", coef)
		}
		sb.WriteString(t.Coord.String())
	}
	if len(r.Terms) == 0 {
		sb.WriteString("0")
	}
	fmt.Fprintf(&sb, " %s %d", r.Sense, r.RHS)
	return sb.String()
}

// normalize turns "left op right" into integer normal form.
func normalize(left, right *linear, op string) (Relation, string) {
	diff := left.add(right, -1)
	rhs := new(big.Rat).Neg(&diff.konst)

	lcm := big.NewInt(1)
	gcd := new(big.Int)
	for _, r := range append(ratsOf(diff), rhs) {
		d := r.Denom()
		gcd.GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, gcd))
	}
	k := new(big.Rat).SetInt(lcm)

	rel := Relation{Op: op}
	for i := range diff.coef {
		if diff.coef[i].Sign() == 0 {
			continue
		}
		v := new(big.Rat).Mul(&diff.coef[i], k)
		if !v.Num().IsInt64() {
			return Relation{}, fmt.Sprintf("coefficient of %s out of range", coordAt(i))
		}
		rel.Terms = append(rel.Terms, Term{Coord: coordAt(i), Coef: v.Num().Int64()})
	}

	rv := new(big.Int).Set(new(big.Rat).Mul(rhs, k).Num())
	switch op {
	case "<=":
		rel.Sense = LE
	case ">=":
		rel.Sense = GE
	case "<":
		rel.Sense = LE
		rv.Sub(rv, big.NewInt(1))
	case ">":
		rel.Sense = GE
		rv.Add(rv, big.NewInt(1))
	default:
		rel.Sense = EQ
	}
	if !rv.IsInt64() {
		return Relation{}, "constant out of range"
	}
	rel.RHS = rv.Int64()
	return rel, ""
}

func ratsOf(l *linear) []*big.Rat {
	out := make([]*big.Rat, 0, numCoords)
	for i := range l.coef {
		out = append(out, &l.coef[i])
	}
	return out
}
