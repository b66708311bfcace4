// SPDX-License-Identifier: MIT

package composite

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/katalvlaran/alterdet/raster"
)

var (
	// ErrInvalidRange indicates a DateRange whose End is not after Start.
	ErrInvalidRange = errors.New("composite: date range end must be after start")

	// ErrNoScenes indicates a date range holding no acquisition.
	ErrNoScenes = errors.New("composite: no scenes in date range")

	// ErrNilImage indicates a scene without an image.
	ErrNilImage = errors.New("composite: scene has no image")
)

const dateLayout = "2006-01-02"

// Scene is one acquisition.
type Scene struct {
	ID       string
	Acquired time.Time
	Image    *raster.Raster
}

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start, End time.Time
}

// Contains reports whether t falls inside d.
func (d DateRange) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}

// Validate reports ErrInvalidRange for empty or inverted ranges.
func (d DateRange) Validate() error {
	if !d.End.After(d.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidRange, d)
	}

	return nil
}

func (d DateRange) String() string {
	return d.Start.Format(dateLayout) + "/" + d.End.Format(dateLayout)
}

// ChangeWindows returns the composite windows around a date of interest:
// the year before it and the three months from it.
func ChangeWindows(doi time.Time) (before, after DateRange) {
	before = DateRange{Start: doi.AddDate(-1, 0, 0), End: doi}
	after = DateRange{Start: doi, End: doi.AddDate(0, 3, 0)}

	return before, after
}

// Collection is a time-ordered set of scenes on one pixel grid.
type Collection struct {
	scenes []Scene
}

// NewCollection validates scenes and orders them by acquisition time.
// Errors: ErrNilImage, raster.ErrGridMismatch.
func NewCollection(scenes ...Scene) (*Collection, error) {
	out := make([]Scene, len(scenes))
	copy(out, scenes)
	for i, s := range out {
		if s.Image == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilImage, s.ID)
		}
		if i > 0 && !out[0].Image.SameGrid(s.Image) {
			return nil, fmt.Errorf("composite: scene %q: %w", s.ID, raster.ErrGridMismatch)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Acquired.Before(out[b].Acquired) })

	return &Collection{scenes: out}, nil
}

// Len returns the number of scenes.
func (c *Collection) Len() int { return len(c.scenes) }

// Filter returns the scenes acquired inside d, oldest first.
func (c *Collection) Filter(d DateRange) []Scene {
	var out []Scene
	for _, s := range c.scenes {
		if d.Contains(s.Acquired) {
			out = append(out, s)
		}
	}

	return out
}

// Latest returns the most recent scene inside d.
func (c *Collection) Latest(d DateRange) (Scene, bool) {
	for i := len(c.scenes) - 1; i >= 0; i-- {
		if d.Contains(c.scenes[i].Acquired) {
			return c.scenes[i], true
		}
	}

	return Scene{}, false
}
