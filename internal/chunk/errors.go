package chunk

import (
	"fmt"

	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

// InvalidIDError reports a voxel id outside the static table.
type InvalidIDError struct {
	ID voxel.Id
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("chunk: invalid voxel id %d", e.ID)
}

// OutOfChunkError reports a position outside this chunk's bounds.
type OutOfChunkError struct {
	Pos spatial.Vec3i
}

func (e *OutOfChunkError) Error() string {
	return fmt.Sprintf("chunk: position %+v outside chunk bounds", e.Pos)
}

// NoMeshForLODError reports a render request for an LOD this chunk
// has never uploaded.
type NoMeshForLODError struct {
	LOD int
}

func (e *NoMeshForLODError) Error() string {
	return fmt.Sprintf("chunk: no mesh uploaded for lod %d", e.LOD)
}
