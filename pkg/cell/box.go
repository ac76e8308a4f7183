package cell

import "fmt"

// Box is a resolved axis-aligned bounding box in integer layout units.
// (X1, Y1) is the lower-left corner and (X2, Y2) the upper-right one.
type Box struct {
	X1 int64 `json:"x1" toml:"x1" yaml:"x1"`
	Y1 int64 `json:"y1" toml:"y1" yaml:"y1"`
	X2 int64 `json:"x2" toml:"x2" yaml:"x2"`
	Y2 int64 `json:"y2" toml:"y2" yaml:"y2"`
}

// Width returns X2-X1.
func (b Box) Width() int64 { return b.X2 - b.X1 }

// Height returns Y2-Y1.
func (b Box) Height() int64 { return b.Y2 - b.Y1 }

// Valid reports whether the box is strictly non-degenerate (X2 > X1 and Y2 > Y1).
func (b Box) Valid() bool { return b.X2 > b.X1 && b.Y2 > b.Y1 }

// Translate returns the box moved by (dx, dy).
func (b Box) Translate(dx, dy int64) Box {
	return Box{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Union returns the smallest box enclosing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Contains reports whether o lies within b (edges may touch).
func (b Box) Contains(o Box) bool {
	return o.X1 >= b.X1 && o.Y1 >= b.Y1 && o.X2 <= b.X2 && o.Y2 <= b.Y2
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.X1, b.Y1, b.X2, b.Y2)
}

// BoundingBox returns the union of boxes. It reports false for an empty slice.
func BoundingBox(boxes ...Box) (Box, bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}
	return out, true
}
