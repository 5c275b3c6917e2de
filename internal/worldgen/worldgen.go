// Package worldgen provides the deterministic height-field voxel
// generator: stone below the surface, air above.
package worldgen

import (
	"voxelarray/internal/noise"
	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
	pkgmath "voxelarray/pkg/math"
)

// Generator produces a deterministic stone/air voxel buffer from a
// single 2D FBM height field, implementing chunkarray.Generator.
type Generator struct {
	simplex   *noise.SimplexNoise
	fbm       *noise.FBM
	baseline  float64
	amplitude float64
	stoneID   voxel.Id
}

// Config controls the reference height field's shape.
type Config struct {
	Seed      int64
	Baseline  float64 // mean surface height, in voxels
	Amplitude float64 // +/- deviation from Baseline
	StoneID   voxel.Id
}

// DefaultConfig returns the reference generator's parameters.
func DefaultConfig() Config {
	return Config{
		Seed:      1,
		Baseline:  0,
		Amplitude: 24,
		StoneID:   1,
	}
}

// New builds a Generator from cfg. The same cfg always yields the
// same buffers for a given chunk position.
func New(cfg Config) *Generator {
	return &Generator{
		simplex:   noise.NewSimplexNoise(cfg.Seed),
		fbm:       noise.NewFBM(noise.DefaultFBMConfig()),
		baseline:  cfg.Baseline,
		amplitude: cfg.Amplitude,
		stoneID:   cfg.StoneID,
	}
}

// heightAt returns the surface height, in voxels, at a global (x,z).
// The raw FBM sample is shaped through a smoothstep so slopes ease
// into plateaus instead of tracking the noise linearly.
func (g *Generator) heightAt(x, z int) float64 {
	n := g.fbm.Sample2D(g.simplex, float64(x)*0.005, float64(z)*0.005)
	t := pkgmath.Smoothstep(-1, 1, n)
	return pkgmath.Lerp(g.baseline-g.amplitude, g.baseline+g.amplitude, t)
}

// GenerateVoxels fills every voxel of the chunk at chunkPos: stone
// below the height field sampled at that voxel's (x,z), air at or
// above it. Pure in chunkPos: the height field depends only on global
// (x,z), so the same chunkPos always produces the same buffer.
func (g *Generator) GenerateVoxels(chunkPos spatial.Vec3i, side int) []voxel.Id {
	ids := make([]voxel.Id, side*side*side)
	base := spatial.Vec3i{X: chunkPos.X * side, Y: chunkPos.Y * side, Z: chunkPos.Z * side}

	it := spatial.NewSpaceIter(spatial.Vec3i{}, spatial.Vec3i{X: side, Y: side, Z: side})
	for local, ok := it.Next(); ok; local, ok = it.Next() {
		worldX := base.X + local.X
		worldY := base.Y + local.Y
		worldZ := base.Z + local.Z
		idx := local.X + side*local.Y + side*side*local.Z

		if float64(worldY) < g.heightAt(worldX, worldZ) {
			ids[idx] = g.stoneID
		} else {
			ids[idx] = voxel.Air
		}
	}
	return ids
}
