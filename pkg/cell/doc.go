// Package cell provides the hierarchical layout tree solved by cellsolve.
//
// # Overview
//
// A [Cell] is either a leaf (a process-layer rectangle such as "metal1") or
// a container grouping other cells. Every cell owns a display name, an
// optional resolved bounding [Box], an ordered list of [Constraint] relations
// and a reuse state (plain, frozen or fixed).
//
// Display names are not unique. Every cell additionally receives a
// process-wide, monotonically increasing [ID] at construction time; the ID
// (and the derived [Cell.Key]) is the only identity used for solver
// variable slots and for any externally keyed namespace.
//
// # Building Trees
//
//	inv := cell.NewLeaf("inv", "poly")
//	tap := cell.NewLeaf("tap", "metal1")
//	top, _ := cell.NewContainer("top", inv)
//	top.ConstrainChild(inv, "width=20, height=10")
//	top.Relate(tap, inv, "sx1 = ox2 + 5") // tap is auto-added to top
//
// Constraint calls are two-phase: referenced cells are first registered in
// the owner's subtree (auto-add as direct children when absent) and only then
// is the unparsed relation recorded. Relations are parsed when a solve is
// attempted, never here.
//
// # Traversal
//
// [Cell.WalkConstraints] visits a cell's own constraints and then recurses
// into its children. [Cell.Reachable] returns every distinct cell exactly
// once; it stops at frozen cells (their descendants are invisible to later
// solves) but passes through fixed cells.
//
// # Reuse States
//
//	Unresolved ──solve──▶ Resolved ──Freeze──▶ Frozen ──Unfreeze──▶ Resolved
//	                          └──────Fix─────▶ Fixed  ───Unfix────▶ Resolved
//
// Frozen and fixed are mutually exclusive; re-entering the current state is
// a no-op. Solving before freezing/fixing is the job of the layout engine
// (see package layout); the methods here require a resolved cell.
//
// # Concurrency
//
// Cells are not safe for concurrent use. Callers must serialize solves and
// mutations on any tree shared across goroutines. Only ID allocation is
// synchronized.
package cell
