package constraint

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/matzehuels/cellsolve/pkg/cell"
)

// operators in matching priority order.
var operators = []string{"<=", ">=", "<", ">", "="}

// SyntaxError describes a malformed constraint string.
type SyntaxError struct {
	Expr string // full constraint string
	Pos  int    // byte offset of the problem
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", e.Msg, e.Pos, e.Expr)
}

type segment struct {
	text string
	pos  int
}

// splitRelations cuts expr at commas outside parentheses.
func splitRelations(expr string) []segment {
	var out []segment
	depth, start := 0, 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, segment{text: expr[start:i], pos: start})
				start = i + 1
			}
		}
	}
	return append(out, segment{text: expr[start:], pos: start})
}

// parseRelation parses one relation and returns it in normal form.
func parseRelation(kind cell.ConstraintKind, seg segment) (Relation, *SyntaxError) {
	text := strings.TrimSpace(seg.text)
	if text == "" {
		return Relation{}, &SyntaxError{Pos: seg.pos, Msg: "empty relation"}
	}

	op, at := "", -1
	for _, candidate := range operators {
		if i := strings.Index(seg.text, candidate); i >= 0 {
			op, at = candidate, i
			break
		}
	}
	if at < 0 {
		return Relation{}, &SyntaxError{Pos: seg.pos, Msg: fmt.Sprintf("no relational operator in %q", text)}
	}

	left, err := parseSide(kind, seg.text[:at], seg.pos, "left")
	if err != nil {
		return Relation{}, err
	}
	rightStart := at + len(op)
	right, err := parseSide(kind, seg.text[rightStart:], seg.pos+rightStart, "right")
	if err != nil {
		return Relation{}, err
	}

	rel, msg := normalize(left, right, op)
	if msg != "" {
		return Relation{}, &SyntaxError{Pos: seg.pos, Msg: msg}
	}
	rel.Text = text
	return rel, nil
}

func parseSide(kind cell.ConstraintKind, src string, base int, side string) (*linear, *SyntaxError) {
	toks, err := lex(src, base)
	if err != nil {
		return nil, err
	}
	if toks[0].kind == tokEOF {
		return nil, &SyntaxError{Pos: base, Msg: "missing " + side + "-hand side"}
	}
	p := &parser{toks: toks, kind: kind}
	l, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s", describe(t))}
	}
	return l, nil
}

// parser is a recursive-descent parser over one side of a relation:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | coordinate | "(" expr ")"
type parser struct {
	toks []token
	i    int
	kind cell.ConstraintKind
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expr() (*linear, *SyntaxError) {
	l, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			r, err := p.term()
			if err != nil {
				return nil, err
			}
			l = l.add(r, 1)
		case tokMinus:
			p.next()
			r, err := p.term()
			if err != nil {
				return nil, err
			}
			l = l.add(r, -1)
		default:
			return l, nil
		}
	}
}

func (p *parser) term() (*linear, *SyntaxError) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		switch op.kind {
		case tokStar:
			p.next()
			r, err := p.unary()
			if err != nil {
				return nil, err
			}
			switch {
			case r.isConstant():
				l = l.scale(&r.konst)
			case l.isConstant():
				l = r.scale(&l.konst)
			default:
				return nil, &SyntaxError{Pos: op.pos, Msg: "product of two coordinates is not linear"}
			}
		case tokSlash:
			p.next()
			r, err := p.unary()
			if err != nil {
				return nil, err
			}
			if !r.isConstant() {
				return nil, &SyntaxError{Pos: op.pos, Msg: "division by a coordinate is not linear"}
			}
			if r.konst.Sign() == 0 {
				return nil, &SyntaxError{Pos: op.pos, Msg: "division by zero"}
			}
			l = l.scale(new(big.Rat).Inv(&r.konst))
		default:
			return l, nil
		}
	}
}

func (p *parser) unary() (*linear, *SyntaxError) {
	switch p.peek().kind {
	case tokPlus:
		p.next()
		return p.unary()
	case tokMinus:
		p.next()
		l, err := p.unary()
		if err != nil {
			return nil, err
		}
		return l.scale(big.NewRat(-1, 1)), nil
	}
	return p.primary()
}

func (p *parser) primary() (*linear, *SyntaxError) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return constant(t.num), nil
	case tokIdent:
		return p.coordinate(t)
	case tokLParen:
		l, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &SyntaxError{Pos: c.pos, Msg: fmt.Sprintf("expected ')' but found %s", describe(c))}
		}
		return l, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s", describe(t))}
}

// coordinate resolves an identifier against the constraint kind.
func (p *parser) coordinate(t token) (*linear, *SyntaxError) {
	name := t.text
	role := Subject
	switch {
	case p.kind == cell.KindRelative:
		switch {
		case strings.HasPrefix(name, "s") && isMeasure(name[1:]):
			name = name[1:]
		case strings.HasPrefix(name, "o") && isMeasure(name[1:]):
			name, role = name[1:], Other
		case isMeasure(name):
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("coordinate %q needs an s or o prefix in a relative constraint", t.text)}
		default:
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown coordinate %q", t.text)}
		}
	default:
		switch {
		case isMeasure(name):
		case strings.HasPrefix(name, "s") && isMeasure(name[1:]):
			name = name[1:]
		case strings.HasPrefix(name, "o") && isMeasure(name[1:]):
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("coordinate %q is only valid in a relative constraint", t.text)}
		default:
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown coordinate %q", t.text)}
		}
	}

	l := new(linear)
	switch name {
	case "x1":
		l.coef[Coord{role, X1}.index()].SetInt64(1)
	case "y1":
		l.coef[Coord{role, Y1}.index()].SetInt64(1)
	case "x2":
		l.coef[Coord{role, X2}.index()].SetInt64(1)
	case "y2":
		l.coef[Coord{role, Y2}.index()].SetInt64(1)
	case "width":
		l.coef[Coord{role, X2}.index()].SetInt64(1)
		l.coef[Coord{role, X1}.index()].SetInt64(-1)
	case "height":
		l.coef[Coord{role, Y2}.index()].SetInt64(1)
		l.coef[Coord{role, Y1}.index()].SetInt64(-1)
	}
	return l, nil
}

func isMeasure(name string) bool {
	switch name {
	case "x1", "y1", "x2", "y2", "width", "height":
		return true
	}
	return false
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}
