// SPDX-License-Identifier: MIT

package changemask_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/alterdet/changemask"
)

func randomMask(b *testing.B, w, h int, density float64) *changemask.Mask {
	b.Helper()
	rng := rand.New(rand.NewSource(42))
	set := make([]bool, w*h)
	for i := range set {
		set[i] = rng.Float64() < density
	}
	m, err := changemask.New(w, h, set, nil)
	if err != nil {
		b.Fatal(err)
	}

	return m
}

// BenchmarkOpen measures erode+dilate on a 512×512 mask.
func BenchmarkOpen(b *testing.B) {
	m := randomMask(b, 512, 512, 0.3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Open()
	}
}

// BenchmarkConnectedComponents8 measures 8-connected labelling on a 512×512 mask.
func BenchmarkConnectedComponents8(b *testing.B) {
	m := randomMask(b, 512, 512, 0.3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.ConnectedComponents(changemask.Conn8)
	}
}
