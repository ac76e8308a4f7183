package layout_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/layout"
	"github.com/matzehuels/cellsolve/pkg/solver/ilp"
)

func Example() {
	engine, err := layout.New(ilp.Backend{}, layout.DefaultOptions(), log.New(io.Discard))
	if err != nil {
		fmt.Println(err)
		return
	}

	a := cell.NewLeaf("a", "metal1")
	b := cell.NewLeaf("b", "metal1")
	a.Constrain("width=20, height=10")
	b.Constrain("width=20, height=10")
	row, _ := cell.NewContainer("row")
	_ = row.ConstrainChild(a, "x1=0, y1=0")
	_ = row.Relate(a, b, "sx2 + 5 = ox1, sy1 = oy1")

	res, err := engine.Solve(context.Background(), row)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.OK, res.Status)
	for _, c := range []*cell.Cell{a, b, row} {
		box, _ := c.Box()
		fmt.Println(c.Name(), box)
	}
	// Output:
	// true OPTIMAL
	// a (0,0)-(20,10)
	// b (25,0)-(45,10)
	// row (0,0)-(45,10)
}
