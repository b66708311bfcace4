// SPDX-License-Identifier: MIT

package changemask

// ConnectedComponents finds all contiguous regions of set pixels under
// conn connectivity. Each component is a slice of row-major indices in BFS
// order; components are ordered by their first pixel in row-major scan.
//
// Time:   O(W·H·d), where d = 4 or 8.
// Memory: O(W·H) for visited flags and output.
func (m *Mask) ConnectedComponents(conn Connectivity) [][]int {
	seen := make([]bool, len(m.set))
	offsets := conn.Offsets()
	var comps [][]int

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			i0 := m.index(x, y)
			if !m.set[i0] || seen[i0] {
				continue
			}
			queue := []int{i0}
			seen[i0] = true
			for qi := 0; qi < len(queue); qi++ {
				ux, uy := m.Coordinate(queue[qi])
				for _, d := range offsets {
					vx, vy := ux+d[0], uy+d[1]
					if !m.At(vx, vy) {
						continue
					}
					vi := m.index(vx, vy)
					if !seen[vi] {
						seen[vi] = true
						queue = append(queue, vi)
					}
				}
			}
			comps = append(comps, queue)
		}
	}

	return comps
}

// Component returns a mask holding only the pixels of comp.
func (m *Mask) Component(comp []int) *Mask {
	out := &Mask{width: m.width, height: m.height, set: make([]bool, len(m.set)), valid: m.valid}
	for _, i := range comp {
		out.set[i] = true
	}

	return out
}
