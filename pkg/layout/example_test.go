package layout_test

import (
	"fmt"

	"github.com/matzehuels/pipegraph/pkg/layout"
	"github.com/matzehuels/pipegraph/pkg/sample"
)

func ExampleCompute() {
	l, err := layout.Compute(sample.Pipeline(), 1200, 800)
	if err != nil {
		panic(err)
	}
	for _, n := range l.Nodes[:3] {
		fmt.Printf("%s rank=%d x=%g y=%g\n", n.ID, n.Rank, n.Position.X, n.Position.Y)
	}
	fmt.Println("ranks:", l.MaxRank+1)
	// Output:
	// build-1 rank=0 x=310 y=50
	// build-2 rank=0 x=710 y=50
	// test-1 rank=1 x=150 y=250
	// ranks: 5
}
