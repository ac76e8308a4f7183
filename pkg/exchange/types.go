package exchange

import (
	"github.com/matzehuels/cellsolve/pkg/cell"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Version is the document format version written by [Export].
const Version = 1

// Reuse values of [Node.Reuse].
const (
	ReuseFreeze = "freeze"
	ReuseFix    = "fix"
)

// =============================================================================
// Document
// =============================================================================

// Document is the serialized form of a cell tree.
type Document struct {
	Version int    `json:"version,omitempty" toml:"version,omitempty" yaml:"version,omitempty"`
	Blocks  []Node `json:"blocks,omitempty" toml:"blocks,omitempty" yaml:"blocks,omitempty"`
	Root    Node   `json:"root" toml:"root" yaml:"root"`
}

// Node is one cell of a document.
//
// Exactly one of three forms is used:
//   - a declaration (Name, optionally Layer, Leaf, Children, Constraints)
//   - an instance: Instance names an earlier block that is cloned
//   - a use: Use names a node declared elsewhere in the same scope, which
//     becomes a shared child
//
// Box and Reuse carry solved state. Reuse on a block asks the importer to
// freeze or fix it before it is instantiated.
type Node struct {
	Ref         string       `json:"ref,omitempty" toml:"ref,omitempty" yaml:"ref,omitempty"`
	Name        string       `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Layer       string       `json:"layer,omitempty" toml:"layer,omitempty" yaml:"layer,omitempty"`
	Leaf        bool         `json:"leaf,omitempty" toml:"leaf,omitempty" yaml:"leaf,omitempty"`
	Instance    string       `json:"instance,omitempty" toml:"instance,omitempty" yaml:"instance,omitempty"`
	Use         string       `json:"use,omitempty" toml:"use,omitempty" yaml:"use,omitempty"`
	Reuse       string       `json:"reuse,omitempty" toml:"reuse,omitempty" yaml:"reuse,omitempty"`
	Box         *Box         `json:"box,omitempty" toml:"box,omitempty" yaml:"box,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty" toml:"constraints,omitempty" yaml:"constraints,omitempty"`
	Children    []Node       `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// IsLeaf reports whether the node declares a leaf. A layer implies a leaf.
func (n *Node) IsLeaf() bool { return n.Leaf || n.Layer != "" }

// Constraint is an unparsed relation. Subject and Other are refs in the
// owning node's scope; Subject is empty for self-constraints.
type Constraint struct {
	Kind    string `json:"kind,omitempty" toml:"kind,omitempty" yaml:"kind,omitempty"`
	Subject string `json:"subject,omitempty" toml:"subject,omitempty" yaml:"subject,omitempty"`
	Other   string `json:"other,omitempty" toml:"other,omitempty" yaml:"other,omitempty"`
	Expr    string `json:"expr" toml:"expr" yaml:"expr"`
}

// Box is a resolved rectangle.
type Box struct {
	X1 int64 `json:"x1" toml:"x1" yaml:"x1"`
	Y1 int64 `json:"y1" toml:"y1" yaml:"y1"`
	X2 int64 `json:"x2" toml:"x2" yaml:"x2"`
	Y2 int64 `json:"y2" toml:"y2" yaml:"y2"`
}

func fromCellBox(b cell.Box) *Box {
	return &Box{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
}

func (b *Box) cellBox() cell.Box {
	return cell.Box{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
}
