package license_test

import (
	"fmt"

	"github.com/matzehuels/polytree/pkg/license"
)

func ExampleParse() {
	root, err := license.Parse("2 3 0 3 10 11 12 1 1 0 1 99 2 1 1 2")
	if err != nil {
		panic(err)
	}
	fmt.Println("Nodes:", root.Count())
	fmt.Println("Metadata sum:", root.SumMetadata())
	fmt.Println("Root value:", root.Value())
	// Output:
	// Nodes: 4
	// Metadata sum: 138
	// Root value: 66
}
