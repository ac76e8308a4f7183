// Package render groups the visual outputs of a solved layout.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [hierarchy] draws the cell tree (containers, leaves, shared cells and
//     reuse states) as a Graphviz graph
//   - [floorplan] draws every resolved leaf rectangle at its coordinates,
//     colored by process layer
//
// # Hierarchy
//
// The hierarchy renderer emits DOT source that can be rendered to SVG with
// the embedded Graphviz build:
//
//	dot := hierarchy.ToDOT(root, hierarchy.Options{Layers: true})
//	svg, err := hierarchy.RenderSVG(ctx, dot)
//
// # Floorplan
//
// The floorplan renderer works on the flattened shape list so it never needs
// the cell tree itself:
//
//	shapes, _ := exchange.Flatten(root)
//	svg := floorplan.RenderSVG(shapes, floorplan.WithLabels())
//
// [hierarchy]: github.com/matzehuels/cellsolve/pkg/render/hierarchy
// [floorplan]: github.com/matzehuels/cellsolve/pkg/render/floorplan
package render
