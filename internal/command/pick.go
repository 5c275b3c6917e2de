package command

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

// Ray-march parameters for the pointer-pick handler: sample spacing
// in voxels and the step cap.
const (
	PickStepSize = 0.125
	PickMaxSteps = 1024
)

// VoxelAt looks up the voxel id at an integer world position; a
// lookup that cannot resolve a position (ungenerated or out-of-array
// chunk) must report (voxel.Air, false).
type VoxelAt func(pos spatial.Vec3i) (voxel.Id, bool)

// PickResult is the outcome of a pointer-pick ray march.
type PickResult struct {
	Hit      bool
	VoxelPos spatial.Vec3i
}

// Pick marches a ray from origin along dir in PickStepSize increments,
// up to PickMaxSteps, returning the first solid voxel position it
// enters.
func Pick(origin, dir mgl32.Vec3, lookup VoxelAt) PickResult {
	dir = dir.Normalize()
	step := dir.Mul(PickStepSize)
	pos := origin

	for i := 0; i < PickMaxSteps; i++ {
		voxelPos := spatial.Vec3i{
			X: int(math.Floor(float64(pos.X()))),
			Y: int(math.Floor(float64(pos.Y()))),
			Z: int(math.Floor(float64(pos.Z()))),
		}
		id, ok := lookup(voxelPos)
		if ok && voxel.Get(id).Solid {
			return PickResult{Hit: true, VoxelPos: voxelPos}
		}
		pos = pos.Add(step)
	}
	return PickResult{}
}

// PickAndClear runs Pick and, on a hit, builds the command that sets
// the first solid voxel to air.
func PickAndClear(origin, dir mgl32.Vec3, lookup VoxelAt) (Command, bool) {
	result := Pick(origin, dir, lookup)
	if !result.Hit {
		return Command{}, false
	}
	return SetVoxel(result.VoxelPos, uint16(voxel.Air)), true
}
