// SPDX-License-Identifier: MIT

package changemask_test

import (
	"fmt"

	"github.com/katalvlaran/alterdet/changemask"
)

// ExampleMask_Open removes a lone pixel and keeps a 3×3 patch.
func ExampleMask_Open() {
	m, _ := changemask.From2D([][]int{
		{0, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0, 0, 0},
		{0, 1, 1, 1, 0, 0, 0},
		{0, 1, 1, 1, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 0},
	})
	opened := m.Open()
	fmt.Print(opened)

	comps := opened.ConnectedComponents(changemask.Conn8)
	fmt.Println("components:", len(comps), "pixels:", len(comps[0]))
	// Output:
	// .......
	// .###...
	// .###...
	// .###...
	// .......
	// components: 1 pixels: 9
}
