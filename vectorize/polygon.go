// SPDX-License-Identifier: MIT

package vectorize

import (
	"image"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/katalvlaran/alterdet/changemask"
)

// Feature is one vectorized component.
type Feature struct {
	Polygon  orb.Polygon // exterior first, then holes
	Pixels   int         // set pixels in the component
	Area     float64     // map units², holes excluded
	Centroid orb.Point
	Bound    orb.Bound
}

// edge is a directed pixel-boundary segment with the component on its
// left (in row-down pixel space).
type edge struct {
	from, to image.Point
}

// Polygons traces every connected component of m into a Feature, in the
// order of their first pixel in row-major scan. Components whose area is
// below Options.MinArea are dropped.
//
// Errors: ErrNilMask, ErrDegenerateTransform.
// Complexity: O(W·H).
func Polygons(m *changemask.Mask, opts ...Option) ([]Feature, error) {
	if m == nil {
		return nil, ErrNilMask
	}
	o := gatherOptions(opts...)
	if o.Transform.PixelArea() == 0 {
		return nil, ErrDegenerateTransform
	}

	w, h := m.Width(), m.Height()
	comps := m.ConnectedComponents(o.Connectivity)
	label := make([]int, w*h)
	for i := range label {
		label[i] = -1
	}
	for c, comp := range comps {
		for _, i := range comp {
			label[i] = c
		}
	}

	var out []Feature
	for c, comp := range comps {
		rings := trace(w, h, label, c, comp, o.Connectivity)
		poly := toPolygon(rings, o.Transform)
		area := planar.Area(poly)
		if area < o.MinArea {
			continue
		}
		centroid, _ := planar.CentroidArea(poly)
		out = append(out, Feature{
			Polygon:  poly,
			Pixels:   len(comp),
			Area:     area,
			Centroid: centroid,
			Bound:    poly.Bound(),
		})
	}

	return out, nil
}

// trace returns the closed boundary rings of component c in pixel-corner
// coordinates. The first ring is the exterior.
func trace(w, h int, label []int, c int, comp []int, conn changemask.Connectivity) [][]image.Point {
	in := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && label[y*w+x] == c
	}

	// Row-major order puts the left edge of the top-left pixel first; that
	// edge lies on the exterior.
	idx := append([]int(nil), comp...)
	sort.Ints(idx)
	var edges []edge
	for _, i := range idx {
		x, y := i%w, i/w
		if !in(x-1, y) {
			edges = append(edges, edge{image.Pt(x, y), image.Pt(x, y+1)})
		}
		if !in(x, y+1) {
			edges = append(edges, edge{image.Pt(x, y+1), image.Pt(x+1, y+1)})
		}
		if !in(x+1, y) {
			edges = append(edges, edge{image.Pt(x+1, y+1), image.Pt(x+1, y)})
		}
		if !in(x, y-1) {
			edges = append(edges, edge{image.Pt(x+1, y), image.Pt(x, y)})
		}
	}
	outgoing := make(map[image.Point][]int, len(edges))
	for k, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], k)
	}

	used := make([]bool, len(edges))
	var rings [][]image.Point
	for s := range edges {
		if used[s] {
			continue
		}
		used[s] = true
		ring := []image.Point{edges[s].from}
		cur := s
		for {
			var cands []int
			for _, k := range outgoing[edges[cur].to] {
				if !used[k] || k == s {
					cands = append(cands, k)
				}
			}
			next := choose(edges, cur, cands, conn)
			if next < 0 || next == s {
				break
			}
			used[next] = true
			ring = append(ring, edges[next].from)
			cur = next
		}
		rings = append(rings, append(ring, ring[0]))
	}

	return rings
}

// choose picks the edge leaving a vertex. Two candidates only occur where
// two diagonal pixels touch: 8-connectivity turns right to keep them in
// one ring, 4-connectivity turns left to separate them.
func choose(edges []edge, cur int, cands []int, conn changemask.Connectivity) int {
	switch len(cands) {
	case 0:
		return -1
	case 1:
		return cands[0]
	}
	d := edges[cur].to.Sub(edges[cur].from)
	for _, k := range cands {
		e := edges[k].to.Sub(edges[k].from)
		cross := d.X*e.Y - d.Y*e.X
		if (conn == changemask.Conn8) == (cross > 0) {
			return k
		}
	}

	return cands[0]
}

// toPolygon maps rings to map coordinates, drops collinear vertices and
// orients the exterior counter-clockwise and holes clockwise.
func toPolygon(rings [][]image.Point, t GeoTransform) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for k, pts := range rings {
		ls := make(orb.LineString, len(pts))
		for i, p := range pts {
			ls[i] = t.Apply(float64(p.X), float64(p.Y))
		}
		if s, ok := simplify.DouglasPeucker(0).Simplify(ls.Clone()).(orb.LineString); ok && len(s) >= 4 {
			ls = s
		}
		r := orb.Ring(ls)
		want := orb.CCW
		if k > 0 {
			want = orb.CW
		}
		if r.Orientation() != want {
			r.Reverse()
		}
		poly = append(poly, r)
	}

	return poly
}
