// Package layout is the hierarchical solve engine.
//
// [Engine.Solve] turns a cell tree into a single integer program, hands it
// to a [solver.Backend] and writes the resolved corners back onto every
// reachable cell:
//
//  1. Every reachable cell gets four bounded integer variables. Cells below
//     a frozen boundary are not reachable and get none.
//  2. Structural rows keep every box non-degenerate (x2 >= x1+1,
//     y2 >= y1+1). With the default footprint enabled, leaves that no
//     relation mentions are kept at x1,y1 >= 0 with a minimum size.
//  3. Frozen cells keep their cached width and height; their position stays
//     free.
//  4. Descendants of a fixed cell replay their cached offsets from the fixed
//     cell's origin instead of their own relations.
//  5. Containers get four aggregate variables, the min of their children's
//     lower corners and the max of their upper corners, and must contain
//     them. This keeps the row count per container constant regardless of
//     fan-out.
//  6. User relations are compiled with package constraint.
//  7. The objective minimizes the sum of every cell's x2 and y2, which pulls
//     free cells toward the lower left and makes solutions reproducible.
//
// After write-back a bottom-up pass sets every container box to the exact
// bounding box of its children, and the hidden interior of every moved
// frozen cell is translated along with it.
//
// # Outcomes
//
// Grammar errors and a missing backend are returned as errors. An
// infeasible model is not an error: the returned [Result] has OK false and
// carries the solver status, and no box is written.
//
// # Reuse
//
// [Engine.Freeze] and [Engine.Fix] solve the cell first when needed and fail
// with INFEASIBLE if that solve does.
package layout
