package constraint

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/cellsolve/pkg/cell"
	cserrors "github.com/matzehuels/cellsolve/pkg/errors"
)

func sx(e Edge) Coord { return Coord{Role: Subject, Edge: e} }
func ox(e Edge) Coord { return Coord{Role: Other, Edge: e} }

func TestCompileSelf(t *testing.T) {
	tests := []struct {
		expr  string
		terms []Term
		sense Sense
		rhs   int64
	}{
		{"x1=0", []Term{{sx(X1), 1}}, EQ, 0},
		{"width=100", []Term{{sx(X1), -1}, {sx(X2), 1}}, EQ, 100},
		{"height = 7", []Term{{sx(Y1), -1}, {sx(Y2), 1}}, EQ, 7},
		{"x1>10", []Term{{sx(X1), 1}}, GE, 11},
		{"x1>=10", []Term{{sx(X1), 1}}, GE, 10},
		{"x1<20", []Term{{sx(X1), 1}}, LE, 19},
		{"x1<=20", []Term{{sx(X1), 1}}, LE, 20},
		{"2*x1 + 3 = x2", []Term{{sx(X1), 2}, {sx(X2), -1}}, EQ, -3},
		{"x1/2 = 3", []Term{{sx(X1), 1}}, EQ, 6},
		{"0.5*width >= 2.5", []Term{{sx(X1), -1}, {sx(X2), 1}}, GE, 5},
		{"(x1 + 2)*3 = 9", []Term{{sx(X1), 3}}, EQ, 3},
		{"-x1 <= -5", []Term{{sx(X1), -1}}, LE, -5},
		{"sx1 = 4", []Term{{sx(X1), 1}}, EQ, 4},
		{"y2 - (y1 - 1) > 2 * 3", []Term{{sx(Y1), -1}, {sx(Y2), 1}}, GE, 6},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rels, err := Compile(cell.KindSelf, tt.expr)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			if len(rels) != 1 {
				t.Fatalf("Compile() returned %d relations, want 1", len(rels))
			}
			r := rels[0]
			if !reflect.DeepEqual(r.Terms, tt.terms) {
				t.Errorf("Terms = %v, want %v", r.Terms, tt.terms)
			}
			if r.Sense != tt.sense {
				t.Errorf("Sense = %v, want %v", r.Sense, tt.sense)
			}
			if r.RHS != tt.rhs {
				t.Errorf("RHS = %d, want %d", r.RHS, tt.rhs)
			}
		})
	}
}

func TestOperatorPriority(t *testing.T) {
	tests := map[string]string{
		"x1<=5": "<=",
		"x1>=5": ">=",
		"x1<5":  "<",
		"x1>5":  ">",
		"x1=5":  "=",
	}
	for expr, op := range tests {
		rels, err := Compile(cell.KindSelf, expr)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", expr, err)
		}
		if rels[0].Op != op {
			t.Errorf("Compile(%q) operator = %q, want %q", expr, rels[0].Op, op)
		}
	}
}

func TestCompileRelative(t *testing.T) {
	rels, err := Compile(cell.KindRelative, "sx2 + 5 = ox1, sheight = oheight")
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("Compile() returned %d relations, want 2", len(rels))
	}

	want := []Term{{sx(X2), 1}, {ox(X1), -1}}
	if !reflect.DeepEqual(rels[0].Terms, want) {
		t.Errorf("Terms = %v, want %v", rels[0].Terms, want)
	}
	if rels[0].RHS != -5 {
		t.Errorf("RHS = %d, want -5", rels[0].RHS)
	}
	if got := rels[0].String(); got != "sx2 - ox1 = -5" {
		t.Errorf("String() = %q", got)
	}
	if rels[1].Text != "sheight = oheight" {
		t.Errorf("Text = %q", rels[1].Text)
	}
	if !rels[1].Uses(Other) || !rels[1].Uses(Subject) {
		t.Error("Uses() should report both operands")
	}
}

func TestCompileList(t *testing.T) {
	rels, err := Compile(cell.KindSelf, "x1=0, y1=0, width=100, height=100")
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	texts := make([]string, len(rels))
	for i, r := range rels {
		texts[i] = r.Text
	}
	want := []string{"x1=0", "y1=0", "width=100", "height=100"}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("relation texts = %v, want %v", texts, want)
	}
}

func TestTrivialRelations(t *testing.T) {
	tests := []struct {
		expr  string
		holds bool
	}{
		{"x1 = x1", true},
		{"1 > 2", false},
		{"3 >= 3", true},
		{"2 < 3", true},
		{"5 = 4", false},
	}
	for _, tt := range tests {
		rels, err := Compile(cell.KindSelf, tt.expr)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", tt.expr, err)
		}
		if !rels[0].Trivial() {
			t.Errorf("Compile(%q) should be trivial", tt.expr)
		}
		if got := rels[0].Holds(); got != tt.holds {
			t.Errorf("Compile(%q).Holds() = %v, want %v", tt.expr, got, tt.holds)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		kind cell.ConstraintKind
		expr string
	}{
		{"no operator", cell.KindSelf, "x1 10"},
		{"empty", cell.KindSelf, ""},
		{"trailing comma", cell.KindSelf, "x1=0,"},
		{"product of coordinates", cell.KindSelf, "x1 * x2 = 3"},
		{"division by coordinate", cell.KindSelf, "x1 / x2 = 1"},
		{"division by zero", cell.KindSelf, "x1 / 0 = 1"},
		{"missing left side", cell.KindSelf, "= 5"},
		{"missing right side", cell.KindSelf, "x1 ="},
		{"unknown coordinate", cell.KindSelf, "z1 = 0"},
		{"other in self", cell.KindSelf, "ox1 = 0"},
		{"other in absolute", cell.KindAbsolute, "owidth = 3"},
		{"bare in relative", cell.KindRelative, "x1 = ox1"},
		{"unclosed paren", cell.KindSelf, "(x1 = 0"},
		{"double equals", cell.KindSelf, "x1 == 0"},
		{"implicit product", cell.KindSelf, "2 x1 = 0"},
		{"bad character", cell.KindSelf, "x1 $ 3 = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.kind, tt.expr)
			if err == nil {
				t.Fatalf("Validate(%q) succeeded, want error", tt.expr)
			}
			if !cserrors.Is(err, cserrors.ErrCodeInvalidGrammar) {
				t.Errorf("error code = %v, want INVALID_GRAMMAR", cserrors.GetCode(err))
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %v does not wrap *SyntaxError", err)
			}
			if se.Expr != tt.expr {
				t.Errorf("SyntaxError.Expr = %q, want %q", se.Expr, tt.expr)
			}
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	err := Validate(cell.KindSelf, "x1 = 0, z1 = 0")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error %v does not wrap *SyntaxError", err)
	}
	if se.Pos != 8 {
		t.Errorf("Pos = %d, want 8", se.Pos)
	}
}

func TestBind(t *testing.T) {
	a := cell.NewLeaf("a", "poly")
	b := cell.NewLeaf("b", "poly")
	top, _ := cell.NewContainer("top")
	top.Constrain("width = 50")
	if err := top.Relate(a, b, "sx2 <= ox1"); err != nil {
		t.Fatal(err)
	}

	ks := top.Constraints()
	self, err := Bind(top, ks[0])
	if err != nil {
		t.Fatalf("Bind(self) error: %v", err)
	}
	if self[0].Subject != top || self[0].Other != nil {
		t.Error("self constraints must bind the owner")
	}

	rel, err := Bind(top, ks[1])
	if err != nil {
		t.Fatalf("Bind(relative) error: %v", err)
	}
	if rel[0].Operand(Subject) != a || rel[0].Operand(Other) != b {
		t.Error("relative constraints must bind subject and other")
	}
	if rel[0].Owner != top {
		t.Error("Owner not recorded")
	}

	top.Constrain("nonsense")
	_, err = Bind(top, top.Constraints()[2])
	if !cserrors.Is(err, cserrors.ErrCodeInvalidGrammar) {
		t.Errorf("Bind(bad) error = %v, want INVALID_GRAMMAR", err)
	}
}
