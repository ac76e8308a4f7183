// Package pkg provides the libraries behind cellsolve, a hierarchical
// constraint-based cell layout engine.
//
// # Overview
//
// A layout is a tree of cells. Leaves are rectangles on a process layer;
// containers hold other cells. Every cell's box is placed by linear
// relations over corner coordinates, solved as an integer program. Solved
// subtrees can be frozen (opaque, fixed size) or fixed (repositionable,
// descendants tracked by offset) and instantiated many times.
//
// The pkg directory is organized into four areas:
//
//  1. Model: [cell] (tree, constraints, reuse states) and [constraint]
//     (relation grammar and compilation)
//  2. Solving: [layout] (model building, containment, write-back) and
//     [solver] (backend registry and the built-in ILP backend)
//  3. Exchange: [exchange] (JSON, TOML and YAML documents, import, export,
//     flattening) and [render] (hierarchy and floorplan output)
//  4. Orchestration and infrastructure: [pipeline], [cache], [config],
//     [observability], [errors] and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	layout document (JSON / TOML / YAML)
//	         ↓
//	    [exchange] import (blocks solved and frozen on the way)
//	         ↓
//	    [layout] engine → [solver] backend
//	         ↓
//	    solved cell tree
//	         ↓
//	    [exchange] export / flatten → [render] artifacts
//
// # Quick Start
//
//	a := cell.NewLeaf("a", "metal1")
//	b := cell.NewLeaf("b", "metal1")
//	top, _ := cell.NewContainer("top")
//	_ = top.ConstrainChild(a, "x1=0, y1=0, width=20, height=10")
//	_ = top.Relate(b, a, "sx1 = ox2 + 5, sy1 = oy1, swidth = owidth, sheight = oheight")
//
//	backend, _ := solver.Lookup("ilp")
//	engine, _ := layout.New(backend, layout.DefaultOptions(), nil)
//	if _, err := engine.MustSolve(ctx, top); err != nil {
//	    return err
//	}
//	box, _ := b.Box() // (25,0)-(45,10)
//
// [cell]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/cell
// [constraint]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/constraint
// [layout]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/layout
// [solver]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/solver
// [exchange]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/exchange
// [render]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cellsolve/pkg/buildinfo
package pkg
