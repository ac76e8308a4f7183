package constraint_test

import (
	"fmt"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/constraint"
)

func ExampleCompile() {
	rels, err := constraint.Compile(cell.KindRelative, "sx2 + 5 = ox1, swidth > owidth / 2")
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range rels {
		fmt.Println(r)
	}
	// Output:
	// sx2 - ox1 = -5
	// -2*sx1 + 2*sx2 + ox1 - ox2 >= 1
}
