// SPDX-License-Identifier: MIT

// Package composite builds the per-date input rasters of change detection:
// masked, temporally composited images over an area of interest.
//
// A Collection holds acquisitions on one pixel grid. A Compositor selects
// the scenes of a DateRange, masks each scene (clouds, cirrus, shadow) and
// takes the per-pixel median of the remaining observations. Pixels with no
// clear observation are invalid in the output.
package composite
