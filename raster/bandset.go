// SPDX-License-Identifier: MIT

package raster

// BandSet is an ordered list of band names. The position of a name is its
// matrix index in every statistic computed over the owning Raster.
type BandSet []string

// Len returns the number of bands.
func (b BandSet) Len() int { return len(b) }

// Index returns the position of name, or -1 when absent.
// Complexity: O(len(b)); band sets are short (≤ a few dozen names).
func (b BandSet) Index(name string) int {
	for i, n := range b {
		if n == name {
			return i
		}
	}

	return -1
}

// Contains reports whether name is part of the set.
func (b BandSet) Contains(name string) bool { return b.Index(name) >= 0 }

// Clone returns an independent copy of the set.
func (b BandSet) Clone() BandSet {
	out := make(BandSet, len(b))
	copy(out, b)

	return out
}

// WithSuffix returns a copy where every name carries suffix.
// Used to disambiguate the two dates before concatenation.
func (b BandSet) WithSuffix(suffix string) BandSet {
	out := make(BandSet, len(b))
	for i, n := range b {
		out[i] = n + suffix
	}

	return out
}

// Equal reports whether both sets hold the same names in the same order.
func (b BandSet) Equal(o BandSet) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}

	return true
}

// validate rejects empty sets and duplicate names.
func (b BandSet) validate() error {
	if len(b) == 0 {
		return ErrNoBands
	}
	seen := make(map[string]struct{}, len(b))
	for _, n := range b {
		if _, dup := seen[n]; dup {
			return ErrDuplicateBand
		}
		seen[n] = struct{}{}
	}

	return nil
}
