// SPDX-License-Identifier: MIT

package mad

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/stats"
)

const (
	opNewDriver = "NewDriver"
	opStep      = "Step"
	opRun       = "Run"
)

// State is one immutable snapshot of an IR-MAD run. Step never mutates a
// State; it returns a new one.
type State struct {
	// Iteration counts committed passes; 0 for the initial state.
	Iteration int

	// Pass is the last committed MAD pass; nil for the initial state.
	Pass *Pass

	// Chi2 is the chi-square plane that derives the next weights.
	// The initial state holds zeros (uniform weights).
	Chi2 []float64

	// Weights are the pixel weights the committed pass was computed with.
	Weights *raster.WeightField

	// Rhos is the history of correlation vectors. Rhos[0] is the seeded
	// placeholder 1..k; Rhos[i] belongs to pass i.
	Rhos [][]float64

	// Count is the effective pixel count of the committed pass.
	Count int

	// Done marks a converged run; a done state is returned unchanged by Step.
	Done bool
}

// LastRhos returns the newest correlation vector.
func (s *State) LastRhos() []float64 { return s.Rhos[len(s.Rhos)-1] }

// Result is the outcome of Run.
type Result struct {
	State *State

	// Converged is false when the iteration budget ran out first.
	Converged bool

	// Iterations counts every pass computed, including a discarded
	// convergence-check pass.
	Iterations int
}

// Driver runs IR-MAD over one before/after pair.
type Driver struct {
	before, after *raster.Raster
	k             int
	opts          Options
}

// NewDriver validates the pair and captures options.
// Errors: ErrNilInput, ErrBandCountMismatch, raster.ErrGridMismatch.
func NewDriver(before, after *raster.Raster, opts ...Option) (*Driver, error) {
	if before == nil || after == nil {
		return nil, madErrorf(opNewDriver, ErrNilInput)
	}
	if !before.SameGrid(after) {
		return nil, madErrorf(opNewDriver, raster.ErrGridMismatch)
	}
	if before.NumBands() != after.NumBands() {
		return nil, madErrorf(opNewDriver, ErrBandCountMismatch)
	}

	return &Driver{before: before, after: after, k: before.NumBands(), opts: gatherOptions(opts...)}, nil
}

// Init returns the initial state: zero chi-square (uniform weights) and
// the placeholder correlation vector 1..k.
func (d *Driver) Init() *State {
	seed := make([]float64, d.k)
	for i := range seed {
		seed[i] = float64(i + 1)
	}

	return &State{
		Chi2:    make([]float64, d.before.Len()),
		Weights: raster.UniformWeights(d.before.Width(), d.before.Height()),
		Rhos:    [][]float64{seed},
	}
}

// Step runs one reweighted pass from prev.
//
//  1. w = 1 - ChiSquareCDF(chi2, k) from prev (invalid pixels get 0).
//  2. MAD pass with w.
//  3. Δ = max |ρ_new - ρ_prev|. The first pass is always committed.
//  4. Δ < Tolerance: prev is returned with Done set (new pass discarded).
//     Otherwise the new pass is committed as a new State.
func (d *Driver) Step(prev *State) (*State, error) {
	if prev == nil {
		return nil, madErrorf(opStep, ErrNilInput)
	}
	if prev.Done {
		return prev, nil
	}

	weights, err := d.weightsFrom(prev.Chi2)
	if err != nil {
		return nil, madErrorf(opStep, err)
	}
	pass, err := transform(d.before, d.after, weights, d.opts)
	if err != nil {
		return nil, err
	}

	delta := maxAbsDelta(pass.Rhos, prev.LastRhos())
	d.opts.Logger.WithFields(logrus.Fields{
		"iteration":     prev.Iteration + 1,
		"max_delta_rho": delta,
		"rhos":          pass.Rhos,
		"pixels":        pass.Count,
	}).Debug("mad: pass complete")

	if prev.Pass != nil && delta < d.opts.Tolerance {
		done := *prev
		done.Done = true

		return &done, nil
	}

	history := make([][]float64, len(prev.Rhos), len(prev.Rhos)+1)
	copy(history, prev.Rhos)

	return &State{
		Iteration: prev.Iteration + 1,
		Pass:      pass,
		Chi2:      pass.Chi2(),
		Weights:   weights,
		Rhos:      append(history, pass.Rhos),
		Count:     pass.Count,
	}, nil
}

// Run iterates Step from Init until convergence or until maxIter passes
// have been computed.
// Errors: ErrInvalidIterations and any pass error.
func (d *Driver) Run(maxIter int) (*Result, error) {
	if maxIter < 1 {
		return nil, madErrorf(opRun, ErrInvalidIterations)
	}
	st := d.Init()
	passes := 0
	for passes < maxIter && !st.Done {
		next, err := d.Step(st)
		if err != nil {
			return nil, err
		}
		st = next
		passes++
	}

	log := d.opts.Logger.WithFields(logrus.Fields{
		"iterations": passes,
		"committed":  st.Iteration,
		"rhos":       st.LastRhos(),
	})
	if st.Done {
		log.Info("mad: converged")
	} else {
		log.Warn("mad: iteration budget exhausted before convergence")
	}

	return &Result{State: st, Converged: st.Done, Iterations: passes}, nil
}

// Run is shorthand for NewDriver(before, after, opts...).Run(maxIter).
func Run(before, after *raster.Raster, maxIter int, opts ...Option) (*Result, error) {
	d, err := NewDriver(before, after, opts...)
	if err != nil {
		return nil, err
	}

	return d.Run(maxIter)
}

// weightsFrom converts a chi-square plane into no-change weights.
func (d *Driver) weightsFrom(chi2 []float64) (*raster.WeightField, error) {
	w := make([]float64, len(chi2))
	df := float64(d.k)
	for i, c := range chi2 {
		if !d.before.Valid(i) || !d.after.Valid(i) || math.IsNaN(c) {
			continue
		}
		w[i] = stats.ChiSquareSurvival(c, df)
	}

	return raster.NewWeightField(d.before.Width(), d.before.Height(), w)
}

func maxAbsDelta(a, b []float64) float64 {
	var m float64
	for i := range a {
		if i >= len(b) {
			break
		}
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}

	return m
}
