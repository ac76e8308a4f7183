package cell

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrLeafParent is returned by [Cell.AddChild] and the constraint
	// builders when the receiver is a leaf. Leaves never have children.
	ErrLeafParent = errors.New("leaf cells cannot have children")

	// ErrNilCell is returned when a nil cell is passed where one is required.
	ErrNilCell = errors.New("nil cell")

	// ErrDuplicateChild is returned by [Cell.AddChild] when the very same
	// node is already a direct child. Distinct nodes with equal names are fine.
	ErrDuplicateChild = errors.New("cell is already a child of this container")

	// ErrCycle is returned by [Cell.AddChild] when the child is the container
	// itself or one of its ancestors.
	ErrCycle = errors.New("adding cell would create a cycle")

	// ErrUnresolved is returned by operations that need a resolved box.
	ErrUnresolved = errors.New("cell is not resolved")

	// ErrReuseConflict is returned when freezing a fixed cell or fixing a
	// frozen one. Frozen and fixed are mutually exclusive.
	ErrReuseConflict = errors.New("frozen and fixed are mutually exclusive")

	// ErrInvalidBox is returned by [Cell.SetBox] for degenerate boxes.
	ErrInvalidBox = errors.New("box must satisfy x2 > x1 and y2 > y1")
)

// ID is a process-wide unique cell identifier. IDs are assigned from a
// monotonically increasing counter at construction time and never reused.
type ID uint64

// lastID is the most recently issued ID.
var lastID atomic.Uint64

func newID() ID { return ID(lastID.Add(1)) }

// Reuse is the reuse state of a resolved cell.
type Reuse int

const (
	// ReuseNone is the plain state: the subtree is re-solved on every use.
	ReuseNone Reuse = iota
	// ReuseFrozen marks an opaque unit of fixed size; its descendants are
	// excluded from later solves.
	ReuseFrozen
	// ReuseFixed marks a repositionable unit whose descendants remain
	// visible and track the cell by cached offsets.
	ReuseFixed
)

func (r Reuse) String() string {
	switch r {
	case ReuseFrozen:
		return "frozen"
	case ReuseFixed:
		return "fixed"
	default:
		return "none"
	}
}

// Offset is a descendant's position relative to a fixed cell's origin,
// together with its size, captured when the cell was fixed.
type Offset struct {
	DX int64 `json:"dx"`
	DY int64 `json:"dy"`
	W  int64 `json:"w"`
	H  int64 `json:"h"`
}

// Cell is a node of the layout tree: a leaf rectangle on a process layer or
// a container of other cells.
//
// The zero value is not usable; create cells with [NewLeaf] or [NewContainer].
type Cell struct {
	id    ID
	name  string
	layer string
	leaf  bool

	children    []*Cell
	constraints []Constraint

	box      Box
	resolved bool

	reuse     Reuse
	frozenBox Box
	offsets   map[ID]Offset
}

// NewLeaf creates an unresolved leaf cell on the given process layer.
func NewLeaf(name, layer string) *Cell {
	return &Cell{id: newID(), name: name, layer: layer, leaf: true}
}

// NewContainer creates an unresolved container holding children in order.
// It fails under the same conditions as [Cell.AddChild].
func NewContainer(name string, children ...*Cell) (*Cell, error) {
	c := &Cell{id: newID(), name: name}
	for _, ch := range children {
		if err := c.AddChild(ch); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ID returns the cell's process-wide unique identifier.
func (c *Cell) ID() ID { return c.id }

// Name returns the display name. Names are not unique; use [Cell.Key] for
// anything keyed by name.
func (c *Cell) Name() string { return c.name }

// Key returns the collision-free external key "name#id".
func (c *Cell) Key() string { return fmt.Sprintf("%s#%d", c.name, c.id) }

// Layer returns the process-layer label. It is empty for containers.
func (c *Cell) Layer() string { return c.layer }

// IsLeaf reports whether the cell is a leaf.
func (c *Cell) IsLeaf() bool { return c.leaf }

// Children returns a copy of the ordered child list.
func (c *Cell) Children() []*Cell {
	out := make([]*Cell, len(c.children))
	copy(out, c.children)
	return out
}

// NumChildren returns the number of direct children.
func (c *Cell) NumChildren() int { return len(c.children) }

// Constraints returns a copy of the constraints attached to the cell.
func (c *Cell) Constraints() []Constraint {
	out := make([]Constraint, len(c.constraints))
	copy(out, c.constraints)
	return out
}

// Box returns the resolved bounding box and whether the cell is resolved.
func (c *Cell) Box() (Box, bool) { return c.box, c.resolved }

// Resolved reports whether all four coordinates are set.
func (c *Cell) Resolved() bool { return c.resolved }

// SetBox sets all four coordinates at once. Coordinates are never partially
// resolved. It is used by solve engines and importers.
func (c *Cell) SetBox(b Box) error {
	if !b.Valid() {
		return fmt.Errorf("%s %v: %w", c.Key(), b, ErrInvalidBox)
	}
	c.box = b
	c.resolved = true
	return nil
}

// ClearBox returns the cell to the unresolved state. Reuse state is kept.
func (c *Cell) ClearBox() {
	c.box = Box{}
	c.resolved = false
}

// Reuse returns the current reuse state.
func (c *Cell) Reuse() Reuse { return c.reuse }

// Frozen reports whether the cell is frozen.
func (c *Cell) Frozen() bool { return c.reuse == ReuseFrozen }

// Fixed reports whether the cell is fixed.
func (c *Cell) Fixed() bool { return c.reuse == ReuseFixed }

// FrozenBox returns the box cached by [Cell.Freeze].
func (c *Cell) FrozenBox() (Box, bool) { return c.frozenBox, c.reuse == ReuseFrozen }

// Offset returns the cached offset of descendant id relative to this fixed cell.
func (c *Cell) Offset(id ID) (Offset, bool) {
	o, ok := c.offsets[id]
	return o, ok
}

// Offsets returns a copy of the offsets cached by [Cell.Fix].
func (c *Cell) Offsets() map[ID]Offset {
	if c.offsets == nil {
		return nil
	}
	out := make(map[ID]Offset, len(c.offsets))
	for k, v := range c.offsets {
		out[k] = v
	}
	return out
}

func (c *Cell) String() string { return c.Key() }
