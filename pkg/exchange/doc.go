// Package exchange reads and writes layout documents.
//
// A [Document] describes a cell tree in plain data: a library of reusable
// blocks and a root node. Nodes reference each other by ref strings that are
// scoped to the block (or root) they appear in:
//
//	blocks:
//	  - ref: inv
//	    name: inverter
//	    reuse: freeze
//	    children:
//	      - {ref: p, name: pmos, layer: diff}
//	      - {ref: n, name: nmos, layer: diff}
//	    constraints:
//	      - {kind: absolute, subject: p, expr: "x1=0, y1=0, width=10, height=4"}
//	      - {kind: relative, subject: n, other: p, expr: "sx1=ox1, sy1=oy2+2, swidth=owidth, sheight=oheight"}
//	root:
//	  name: top
//	  children:
//	    - {ref: u1, instance: inv}
//	    - {ref: u2, instance: inv}
//	  constraints:
//	    - {kind: relative, subject: u2, other: u1, expr: "sx1 = ox2 + 5, sy1 = oy1"}
//
// Documents are encoded as JSON, TOML or YAML; all three carry the same
// structure. [Import] turns a document into cells, [Export] turns a solved
// tree back into a document keyed by collision-free cell keys, and [Flatten]
// lists the resolved leaf rectangles for downstream consumers.
package exchange
