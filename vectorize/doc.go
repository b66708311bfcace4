// SPDX-License-Identifier: MIT

// Package vectorize converts a binary change mask into polygons.
//
// Every connected component of set pixels becomes one orb.Polygon traced
// along pixel edges: the outer ring first, then one ring per enclosed hole.
// Rings are closed, collinear vertices are dropped, exteriors are
// counter-clockwise and holes clockwise in map coordinates. A GeoTransform
// maps pixel corners to map coordinates; polygons smaller than MinArea
// (map units²) are discarded.
package vectorize
