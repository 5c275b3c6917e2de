// Package noise provides simplex noise for procedural generation,
// backed by opensimplex.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// SimplexNoise samples deterministic 2D/3D noise in [-1, 1] for a
// fixed seed.
type SimplexNoise struct {
	gen opensimplex.Noise
}

// NewSimplexNoise creates a generator for the given seed. The same
// seed always produces the same field.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{gen: opensimplex.New(seed)}
}

// Noise2D returns a value in [-1, 1] at (x, y).
func (s *SimplexNoise) Noise2D(x, y float64) float64 {
	return s.gen.Eval2(x, y)
}

// Noise3D returns a value in [-1, 1] at (x, y, z).
func (s *SimplexNoise) Noise3D(x, y, z float64) float64 {
	return s.gen.Eval3(x, y, z)
}
