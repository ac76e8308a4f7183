package exchange

import (
	"sort"
	"strings"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/errors"
)

// Shape is one resolved leaf rectangle of a flattened tree.
type Shape struct {
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Layer string   `json:"layer"`
	Path  string   `json:"path"`
	Box   cell.Box `json:"box"`
}

// PathSeparator joins container names in [Shape.Path].
const PathSeparator = "/"

// Flatten lists every distinct leaf below root, including leaves hidden
// below frozen boundaries, in pre-order. A shared leaf is listed once under
// the first path that reaches it. Every leaf must be resolved.
func Flatten(root *cell.Cell) ([]Shape, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "flatten: nil root")
	}
	var (
		out  []Shape
		path []string
		seen = make(map[cell.ID]bool)
	)
	err := root.Walk(func(c *cell.Cell, depth int) error {
		path = append(path[:depth], c.Name())
		if !c.IsLeaf() || seen[c.ID()] {
			return nil
		}
		seen[c.ID()] = true
		b, ok := c.Box()
		if !ok {
			return errors.Wrap(errors.ErrCodeUnresolved, cell.ErrUnresolved, "flatten: leaf %s", c.Key())
		}
		out = append(out, Shape{
			Key:   c.Key(),
			Name:  c.Name(),
			Layer: c.Layer(),
			Path:  strings.Join(path, PathSeparator),
			Box:   b,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ByLayer groups shapes by layer label. Each group keeps the input order.
func ByLayer(shapes []Shape) map[string][]Shape {
	out := make(map[string][]Shape)
	for _, s := range shapes {
		out[s.Layer] = append(out[s.Layer], s)
	}
	return out
}

// Layers returns the distinct layer labels of shapes, sorted.
func Layers(shapes []Shape) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range shapes {
		if !seen[s.Layer] {
			seen[s.Layer] = true
			out = append(out, s.Layer)
		}
	}
	sort.Strings(out)
	return out
}
