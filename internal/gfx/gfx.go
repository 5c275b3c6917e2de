// Package gfx declares the interfaces the chunk-array core consumes
// from the surrounding engine: the Facade for mesh uploads, the frame
// Surface and Uniforms, the Camera, edge-detected Input, and the
// save/load LoadingObserver. Concrete implementations live in the
// render package.
package gfx

import "github.com/go-gl/mathgl/mgl32"

// Surface is the frame target passed into ChunkArray.Render; its
// concrete meaning (a default framebuffer, an offscreen target, ...)
// is owned by the renderer, not the core.
type Surface interface{}

// Uniforms is an opaque per-frame uniform payload (view/projection
// matrices, lighting, time of day, ...) forwarded to mesh draw calls
// without interpretation by the core.
type Uniforms interface{}

// MeshHandle is an uploaded GPU mesh. A cache entry is replaced
// atomically by a new upload of the same LOD and is never partially
// valid.
type MeshHandle interface {
	// Draw issues the draw call for this mesh against target using
	// uniforms.
	Draw(target Surface, uniforms Uniforms)
	// Release frees the underlying GPU resources. Safe to call on an
	// empty mesh handle.
	Release()
	// Empty reports whether this handle represents zero triangles
	// (a valid upload that simply draws nothing).
	Empty() bool
}

// Facade is the opaque handle into the graphics backend used to
// create GPU buffers for mesh uploads.
type Facade interface {
	// UploadFull uploads full-detail (LOD 0) vertex data: interleaved
	// position, texcoord, normal, tangent.
	UploadFull(vertices []float32, indices []uint32) MeshHandle
	// UploadLow uploads low-detail (LOD>0) vertex data: interleaved
	// position, color, normal.
	UploadLow(vertices []float32, indices []uint32) MeshHandle
}

// Camera exposes the position/orientation/frustum facts the chunk
// array driver needs to pick an LOD and cull draws.
type Camera interface {
	Pos() mgl32.Vec3
	Front() mgl32.Vec3
	// ContainsAABB reports whether the axis-aligned box [min,max]
	// intersects the camera's view frustum.
	ContainsAABB(min, max mgl32.Vec3) bool
}

// Input exposes edge-detected input queries.
type Input interface {
	JustPressedCombo(keys ...string) bool
	JustLeftPressed() bool
}

// Loading reports fractional progress of one save/load operation.
type Loading interface {
	Refresh(fraction float64)
}

// LoadingObserver hands out a Loading tracker for a labeled operation.
type LoadingObserver interface {
	StartNew(label string) Loading
}
