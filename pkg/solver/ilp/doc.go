// Package ilp is the built-in integer linear programming backend.
//
// Models are solved by LP-based branch and bound. Each node solves its
// linear relaxation with gonum's simplex (optimize/convex/lp) after shifting
// variables to their lower bounds and turning every row, upper bounds
// included, into a "<=" row with its own slack. Fractional variables are
// split on floor and ceiling, nearer side first. The time budget is checked
// between nodes.
//
// Min and max aggregates are handled without indicator variables. The
// relaxation always carries target <= v (min) or target >= v (max) for every
// member; when an integral candidate violates the aggregate, the node is
// split into one child per member with target = member, ordered so the
// member closest to the candidate's own extreme is tried first.
//
// Candidates are checked exactly in integer arithmetic before they are
// accepted, so floating point noise can cost a solution but never produce a
// wrong one.
//
// The backend registers itself as "ilp":
//
//	import _ "github.com/matzehuels/cellsolve/pkg/solver/ilp"
package ilp

import "github.com/matzehuels/cellsolve/pkg/solver"

// Name is the registry name of this backend.
const Name = "ilp"

func init() {
	solver.Register(Backend{})
}

// Backend creates ilp models.
type Backend struct {
	// NodeLimit stops the search after this many nodes (0 means no limit).
	// Reaching it is treated like running out of time.
	NodeLimit int
}

// Name implements solver.Backend.
func (Backend) Name() string { return Name }

// NewModel implements solver.Backend.
func (b Backend) NewModel() solver.Model { return &Model{nodeLimit: b.NodeLimit} }
