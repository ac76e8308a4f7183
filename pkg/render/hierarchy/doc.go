// Package hierarchy renders a cell tree as a Graphviz diagram.
//
// Containers and leaves become nodes and parent/child links become edges.
// A cell shared by several containers is drawn once with one incoming edge
// per container. Frozen cells are dashed and grey; their hidden interiors
// are still drawn so the whole structure is visible. Fixed cells get a
// heavy outline.
//
//	dot := hierarchy.ToDOT(root, hierarchy.Options{Layers: true, Boxes: true})
//	svg, err := hierarchy.RenderSVG(ctx, dot)
package hierarchy
