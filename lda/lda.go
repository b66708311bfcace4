// SPDX-License-Identifier: MIT

// Package lda holds the linear discriminant tables that turn standardized
// change metrics into a change score:
//
//	score = Σ weight(m)·z(m) + intercept,   change ⇔ score ≥ threshold
//
// Tables are read-only once built. They come from the built-in habitat
// set or from flat key/value maps ({metric → weight, "int" → intercept,
// "lda" → threshold}), e.g. a YAML document.
package lda

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Metric names a change metric.
type Metric string

// The change metrics, in canonical order.
const (
	CV     Metric = "cv"
	RCVMax Metric = "rcvmax"
	NDVI   Metric = "ndvi"
	NBR    Metric = "nbr"
	NDWI   Metric = "ndwi"
	NDSI   Metric = "ndsi"
)

// Reserved table keys.
const (
	KeyIntercept = "int"
	KeyThreshold = "lda"
)

var (
	// ErrMissingKey indicates a table lacking a metric weight, "int" or "lda".
	ErrMissingKey = errors.New("lda: missing key")

	// ErrUnknownKey indicates a table key that names no metric.
	ErrUnknownKey = errors.New("lda: unknown key")

	// ErrUnknownHabitat indicates a habitat with no built-in table.
	ErrUnknownHabitat = errors.New("lda: unknown habitat")

	// ErrNonFinite indicates a NaN or infinite coefficient.
	ErrNonFinite = errors.New("lda: coefficient is not finite")
)

// Metrics lists every metric in canonical order.
func Metrics() []Metric {
	return []Metric{CV, RCVMax, NDVI, NBR, NDWI, NDSI}
}

// Coefficients is one discriminant table.
type Coefficients struct {
	name      string
	weights   map[Metric]float64
	intercept float64
	threshold float64
}

// New builds a table. weights must hold every metric of Metrics.
// Errors: ErrMissingKey, ErrUnknownKey, ErrNonFinite.
func New(name string, weights map[Metric]float64, intercept, threshold float64) (*Coefficients, error) {
	c := &Coefficients{
		name:      name,
		weights:   make(map[Metric]float64, len(weights)),
		intercept: intercept,
		threshold: threshold,
	}
	for m, w := range weights {
		if !m.valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, string(m))
		}
		c.weights[m] = w
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// FromMap builds a table from a flat key/value map. Metric keys may carry
// a "_z" suffix; "cvz" and "rcv" are accepted for cv and rcvmax.
func FromMap(name string, kv map[string]float64) (*Coefficients, error) {
	weights := make(map[Metric]float64, len(kv))
	var intercept, threshold float64
	var haveInt, haveLDA bool

	// Deterministic error reporting.
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := kv[k]
		switch k {
		case KeyIntercept:
			intercept, haveInt = v, true
		case KeyThreshold:
			threshold, haveLDA = v, true
		default:
			m, ok := ParseMetric(k)
			if !ok {
				return nil, fmt.Errorf("%s: %w: %q", name, ErrUnknownKey, k)
			}
			weights[m] = v
		}
	}
	if !haveInt {
		return nil, fmt.Errorf("%s: %w: %q", name, ErrMissingKey, KeyIntercept)
	}
	if !haveLDA {
		return nil, fmt.Errorf("%s: %w: %q", name, ErrMissingKey, KeyThreshold)
	}
	c, err := New(name, weights, intercept, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return c, nil
}

// ParseMetric maps a table key to its metric.
func ParseMetric(key string) (Metric, bool) {
	k := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(key)), "_z")
	switch k {
	case "cvz":
		k = string(CV)
	case "rcv":
		k = string(RCVMax)
	}
	m := Metric(k)

	return m, m.valid()
}

func (m Metric) valid() bool {
	switch m {
	case CV, RCVMax, NDVI, NBR, NDWI, NDSI:
		return true
	}

	return false
}

// Validate reports whether every metric has a finite weight and the
// intercept and threshold are finite.
func (c *Coefficients) Validate() error {
	for _, m := range Metrics() {
		w, ok := c.weights[m]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingKey, string(m))
		}
		if !finite(w) {
			return fmt.Errorf("%w: %q", ErrNonFinite, string(m))
		}
	}
	if !finite(c.intercept) {
		return fmt.Errorf("%w: %q", ErrNonFinite, KeyIntercept)
	}
	if !finite(c.threshold) {
		return fmt.Errorf("%w: %q", ErrNonFinite, KeyThreshold)
	}

	return nil
}

// Name returns the table name.
func (c *Coefficients) Name() string { return c.name }

// Weight returns the weight of m (0 for unknown metrics).
func (c *Coefficients) Weight(m Metric) float64 { return c.weights[m] }

// Intercept returns the "int" term.
func (c *Coefficients) Intercept() float64 { return c.intercept }

// Threshold returns the "lda" decision threshold.
func (c *Coefficients) Threshold() float64 { return c.threshold }

// Score evaluates Σ weight·z + intercept. z supplies one value per metric.
func (c *Coefficients) Score(z func(Metric) float64) float64 {
	s := c.intercept
	for _, m := range Metrics() {
		s += c.weights[m] * z(m)
	}

	return s
}

// Map returns the table as a flat key/value map using canonical keys.
func (c *Coefficients) Map() map[string]float64 {
	out := make(map[string]float64, len(c.weights)+2)
	for m, w := range c.weights {
		out[string(m)] = w
	}
	out[KeyIntercept] = c.intercept
	out[KeyThreshold] = c.threshold

	return out
}

func (c *Coefficients) String() string {
	return fmt.Sprintf("lda.Coefficients(%s, int=%g, lda=%g)", c.name, c.intercept, c.threshold)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
