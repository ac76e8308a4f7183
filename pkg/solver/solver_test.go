package solver

import (
	"errors"
	"fmt"
	"testing"

	cserrors "github.com/matzehuels/cellsolve/pkg/errors"
)

type stubBackend struct{ name string }

func (s stubBackend) Name() string    { return s.name }
func (s stubBackend) NewModel() Model { return nil }

func TestRegistry(t *testing.T) {
	Register(stubBackend{name: "stub-a"})
	Register(stubBackend{name: "stub-b"})
	Register(nil)

	b, err := Lookup("stub-a")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if b.Name() != "stub-a" {
		t.Errorf("Lookup().Name() = %q, want stub-a", b.Name())
	}

	names := Backends()
	found := 0
	for _, n := range names {
		if n == "stub-a" || n == "stub-b" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("Backends() = %v, want both stubs", names)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("no-such-backend")
	if !cserrors.Is(err, cserrors.ErrCodeMissingBackend) {
		t.Errorf("Lookup() code = %v, want MISSING_BACKEND", cserrors.GetCode(err))
	}
	if !errors.Is(err, ErrUnknownBackend) {
		t.Error("Lookup() error should wrap ErrUnknownBackend")
	}
}

func TestStatusHasSolution(t *testing.T) {
	tests := map[Status]bool{
		StatusOptimal:      true,
		StatusFeasible:     true,
		StatusInfeasible:   false,
		StatusUnknown:      false,
		StatusModelInvalid: false,
	}
	for s, want := range tests {
		if got := s.HasSolution(); got != want {
			t.Errorf("%s.HasSolution() = %v, want %v", s, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	name := func(v Var) string { return fmt.Sprintf("v%d", v) }
	tests := []struct {
		expr Expr
		want string
	}{
		{nil, "0"},
		{Expr{{0, 1}}, "v0"},
		{Expr{{0, -1}, {1, 2}}, "-v0 + 2*v1"},
		{Expr{{2, 3}, {0, -1}}, "3*v2 - v0"},
	}
	for _, tt := range tests {
		if got := Format(tt.expr, name); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

