// Package chunk owns per-chunk voxel storage, uniform-fill
// compression, edit operations, and mesh building/caching.
package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/gfx"
	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
	pkgmath "voxelarray/pkg/math"
)

// FillKind discriminates a chunk's storage representation.
type FillKind uint8

const (
	// FillDefault means voxelIDs holds one entry per logical voxel.
	FillDefault FillKind = iota
	// FillAllSame means every logical voxel shares Uniform and
	// voxelIDs is empty.
	FillAllSame
)

// FillType is the chunk's storage discriminant plus, for AllSame, the
// shared id.
type FillType struct {
	Kind    FillKind
	Uniform voxel.Id
}

// Chunk is a cubic block of Side^3 voxels at an integer chunk
// position.
type Chunk struct {
	pos  spatial.Vec3i
	side int

	fill     FillType
	voxelIDs []voxel.Id

	meshCache    map[int]gfx.MeshHandle
	activeLOD    int
	hasActiveLOD bool

	generated bool
}

// New produces an empty, ungenerated chunk at chunkPos with the given
// side length S.
func New(chunkPos spatial.Vec3i, side int) *Chunk {
	return &Chunk{
		pos:       chunkPos,
		side:      side,
		fill:      FillType{Kind: FillAllSame, Uniform: voxel.Air},
		meshCache: make(map[int]gfx.MeshHandle),
	}
}

// FromVoxels builds a generated chunk from a verified, already-sized
// id buffer (len(ids) == side^3). Every id must already be valid;
// callers that read ids from an untrusted source (the save codec)
// must validate before calling this.
func FromVoxels(chunkPos spatial.Vec3i, side int, ids []voxel.Id) *Chunk {
	c := New(chunkPos, side)
	c.fill = FillType{Kind: FillDefault}
	c.voxelIDs = ids
	c.generated = true
	return c
}

// NewSameFilled builds a generated chunk whose every voxel is id,
// without allocating the backing array.
func NewSameFilled(chunkPos spatial.Vec3i, side int, id voxel.Id) *Chunk {
	c := New(chunkPos, side)
	c.fill = FillType{Kind: FillAllSame, Uniform: id}
	c.generated = true
	return c
}

// Pos returns the chunk's position in chunk space.
func (c *Chunk) Pos() spatial.Vec3i { return c.pos }

// Side returns S, this chunk's side length in voxels.
func (c *Chunk) Side() int { return c.side }

// Volume returns S^3.
func (c *Chunk) Volume() int { return c.side * c.side * c.side }

// Generated reports whether voxel ids have been finalized.
func (c *Chunk) Generated() bool { return c.generated }

// FillType returns the chunk's current storage discriminant.
func (c *Chunk) FillType() FillType { return c.fill }

// VoxelIDs returns the chunk's raw id buffer when fill is Default, or
// nil for AllSame. Read-only: callers (the save codec) must not mutate
// the returned slice.
func (c *Chunk) VoxelIDs() []voxel.Id { return c.voxelIDs }

// MarkGenerated finalizes a chunk's voxel storage, promoting it from
// "scheduled" to "generated" after a voxel-gen task completes.
func (c *Chunk) MarkGenerated(ids []voxel.Id) {
	c.fill = FillType{Kind: FillDefault}
	c.voxelIDs = ids
	c.generated = true
}

// MarkGeneratedSame finalizes a uniform-fill chunk without allocating
// the backing array (used when generate_voxels detects the whole
// chunk is one id, e.g. a deep stone chunk or an above-ground air
// chunk).
func (c *Chunk) MarkGeneratedSame(id voxel.Id) {
	c.fill = FillType{Kind: FillAllSame, Uniform: id}
	c.voxelIDs = nil
	c.generated = true
}

// MarkGeneratedAuto finalizes voxel storage from a freshly generated
// buffer, collapsing it to AllSame when every id is identical.
func (c *Chunk) MarkGeneratedAuto(ids []voxel.Id) {
	if len(ids) > 0 {
		first := ids[0]
		uniform := true
		for _, id := range ids[1:] {
			if id != first {
				uniform = false
				break
			}
		}
		if uniform {
			c.MarkGeneratedSame(first)
			return
		}
	}
	c.MarkGenerated(ids)
}

// index converts local coordinates (each in [0,side)) to a linear
// index into voxelIDs: i = x + S*y + S^2*z.
func (c *Chunk) index(local spatial.Vec3i) int {
	return local.X + c.side*local.Y + c.side*c.side*local.Z
}

// ChunkPos returns floor_div(p, S), the chunk a global voxel position
// belongs to.
func ChunkPos(p spatial.Vec3i, side int) spatial.Vec3i {
	return spatial.Vec3i{
		X: spatial.FloorDiv(p.X, side),
		Y: spatial.FloorDiv(p.Y, side),
		Z: spatial.FloorDiv(p.Z, side),
	}
}

// LocalPos returns p's coordinates local to chunkPos, each in [0,S).
func LocalPos(chunkPos, p spatial.Vec3i, side int) spatial.Vec3i {
	return spatial.Vec3i{
		X: p.X - chunkPos.X*side,
		Y: p.Y - chunkPos.Y*side,
		Z: p.Z - chunkPos.Z*side,
	}
}

// inBounds reports whether local is within [0,side)^3.
func (c *Chunk) inBounds(local spatial.Vec3i) bool {
	return local.X >= 0 && local.X < c.side &&
		local.Y >= 0 && local.Y < c.side &&
		local.Z >= 0 && local.Z < c.side
}

// GetVoxelLocal returns the id at local coordinates, or an
// OutOfChunkError if local is outside [0,side)^3.
func (c *Chunk) GetVoxelLocal(local spatial.Vec3i) (voxel.Id, error) {
	if !c.inBounds(local) {
		return voxel.Air, &OutOfChunkError{Pos: local}
	}
	if c.fill.Kind == FillAllSame {
		return c.fill.Uniform, nil
	}
	return c.voxelIDs[c.index(local)], nil
}

// GetVoxelGlobal returns the voxel at global position p, translated
// into this chunk's local frame; it signals OutOfChunkError if p does
// not belong to this chunk.
func (c *Chunk) GetVoxelGlobal(p spatial.Vec3i) (voxel.Id, error) {
	local := LocalPos(c.pos, p, c.side)
	return c.GetVoxelLocal(local)
}

// materialize converts an AllSame chunk into a Default chunk with a
// fully populated id array, a no-op if the chunk is already Default.
// Spec §9 "Uniform-fill promotion": this is one-way, and callers must
// only invoke it when the incoming write would actually change state.
func (c *Chunk) materialize() {
	if c.fill.Kind == FillDefault {
		return
	}
	ids := make([]voxel.Id, c.Volume())
	for i := range ids {
		ids[i] = c.fill.Uniform
	}
	c.voxelIDs = ids
	c.fill = FillType{Kind: FillDefault}
}

// DropMeshes clears every cached mesh and the active LOD without
// otherwise disturbing the chunk.
func (c *Chunk) DropMeshes() {
	c.invalidateMeshes()
}

// invalidateMeshes drops every cached mesh and clears the active LOD.
// Called on any state-changing edit.
func (c *Chunk) invalidateMeshes() {
	for _, mesh := range c.meshCache {
		if mesh != nil {
			mesh.Release()
		}
	}
	c.meshCache = make(map[int]gfx.MeshHandle)
	c.hasActiveLOD = false
}

// SetVoxel writes newID at global position p, returning the id it
// replaced. Fails with InvalidIDError if newID is out of range for
// the static voxel table, or OutOfChunkError if p is not within this
// chunk. A write that doesn't change the stored id is a no-op, so
// repeated identical writes are idempotent.
func (c *Chunk) SetVoxel(p spatial.Vec3i, newID voxel.Id) (voxel.Id, error) {
	if !voxel.IsValid(newID) {
		return voxel.Air, &InvalidIDError{ID: newID}
	}
	local := LocalPos(c.pos, p, c.side)
	if !c.inBounds(local) {
		return voxel.Air, &OutOfChunkError{Pos: p}
	}

	old, _ := c.GetVoxelLocal(local)
	if old == newID {
		return old, nil
	}

	c.materialize()
	c.voxelIDs[c.index(local)] = newID
	c.invalidateMeshes()
	return old, nil
}

// FillVoxels writes newID to every voxel in [posFrom, posTo), the
// range intersected with this chunk's bounds, returning the number of
// voxels actually changed.
func (c *Chunk) FillVoxels(posFrom, posTo spatial.Vec3i, newID voxel.Id) (int, error) {
	if !voxel.IsValid(newID) {
		return 0, &InvalidIDError{ID: newID}
	}

	localFrom := LocalPos(c.pos, posFrom, c.side)
	localTo := LocalPos(c.pos, posTo, c.side)
	from := spatial.Vec3i{
		X: pkgmath.ClampInt(localFrom.X, 0, c.side),
		Y: pkgmath.ClampInt(localFrom.Y, 0, c.side),
		Z: pkgmath.ClampInt(localFrom.Z, 0, c.side),
	}
	to := spatial.Vec3i{
		X: pkgmath.ClampInt(localTo.X, 0, c.side),
		Y: pkgmath.ClampInt(localTo.Y, 0, c.side),
		Z: pkgmath.ClampInt(localTo.Z, 0, c.side),
	}
	if from.X >= to.X || from.Y >= to.Y || from.Z >= to.Z {
		return 0, nil
	}

	// Whole-chunk uniform fill stays compressed.
	if from == (spatial.Vec3i{}) && to == (spatial.Vec3i{X: c.side, Y: c.side, Z: c.side}) {
		changed := 0
		if c.fill.Kind != FillAllSame || c.fill.Uniform != newID {
			changed = c.Volume()
			c.fill = FillType{Kind: FillAllSame, Uniform: newID}
			c.voxelIDs = nil
			c.invalidateMeshes()
		}
		return changed, nil
	}

	c.materialize()
	changed := 0
	it := spatial.NewSpaceIter(from, to)
	for local, ok := it.Next(); ok; local, ok = it.Next() {
		idx := c.index(local)
		if c.voxelIDs[idx] != newID {
			c.voxelIDs[idx] = newID
			changed++
		}
	}
	if changed > 0 {
		c.invalidateMeshes()
	}
	return changed, nil
}

// ActiveLOD returns the LOD currently eligible for drawing and
// whether one has been selected at all.
func (c *Chunk) ActiveLOD() (int, bool) {
	return c.activeLOD, c.hasActiveLOD
}

// HasMeshFor reports whether lod is present in the mesh cache.
func (c *Chunk) HasMeshFor(lod int) bool {
	_, ok := c.meshCache[lod]
	return ok
}

// UploadFullVertices installs (or replaces) the LOD-0 mesh cache
// entry. It does not change activeLOD; the driver decides activation
// via TrySetBestFitLOD.
func (c *Chunk) UploadFullVertices(facade gfx.Facade, vertices []float32, indices []uint32) {
	c.setMesh(0, facade.UploadFull(vertices, indices))
}

// UploadLowVertices installs (or replaces) the mesh cache entry for a
// low-detail LOD level (lod>0).
func (c *Chunk) UploadLowVertices(facade gfx.Facade, lod int, vertices []float32, indices []uint32) {
	c.setMesh(lod, facade.UploadLow(vertices, indices))
}

func (c *Chunk) setMesh(lod int, mesh gfx.MeshHandle) {
	if old, ok := c.meshCache[lod]; ok && old != nil {
		old.Release()
	}
	c.meshCache[lod] = mesh
}

// TrySetBestFitLOD makes target the active LOD if cached; otherwise it
// picks the cached LOD nearest to target by absolute difference,
// smaller LOD (higher detail) winning ties. If the cache is empty,
// activeLOD is cleared.
func (c *Chunk) TrySetBestFitLOD(target int) {
	if _, ok := c.meshCache[target]; ok {
		c.activeLOD = target
		c.hasActiveLOD = true
		return
	}
	if len(c.meshCache) == 0 {
		c.hasActiveLOD = false
		return
	}

	best := 0
	bestDiff := -1
	haveBest := false
	for lod := range c.meshCache {
		diff := lod - target
		if diff < 0 {
			diff = -diff
		}
		if !haveBest || diff < bestDiff || (diff == bestDiff && lod < best) {
			best = lod
			bestDiff = diff
			haveBest = true
		}
	}
	c.activeLOD = best
	c.hasActiveLOD = true
}

// ClearActiveLOD clears the currently selected LOD without touching
// the mesh cache; the next TrySetBestFitLOD call selects one again.
// Edit invalidation does not use it: edits drop the whole cache.
func (c *Chunk) ClearActiveLOD() {
	c.hasActiveLOD = false
}

// Render draws the mesh at lod, failing with NoMeshForLODError if it
// has not been uploaded.
func (c *Chunk) Render(target gfx.Surface, uniforms gfx.Uniforms, lod int) error {
	mesh, ok := c.meshCache[lod]
	if !ok || mesh == nil {
		return &NoMeshForLODError{LOD: lod}
	}
	mesh.Draw(target, uniforms)
	return nil
}

// Dispose releases every cached mesh handle, used when a chunk is torn
// down by a reshape.
func (c *Chunk) Dispose() {
	for _, mesh := range c.meshCache {
		if mesh != nil {
			mesh.Release()
		}
	}
	c.meshCache = nil
}

// WorldBounds returns the chunk's axis-aligned bounds in world-space
// voxel units (min inclusive, max exclusive), used by frustum tests.
func (c *Chunk) WorldBounds() (min, max spatial.Vec3i) {
	min = spatial.Vec3i{X: c.pos.X * c.side, Y: c.pos.Y * c.side, Z: c.pos.Z * c.side}
	max = spatial.Vec3i{X: min.X + c.side, Y: min.Y + c.side, Z: min.Z + c.side}
	return min, max
}

// IsVisibleByCamera tests the chunk's world-space bounds against the
// camera frustum.
func (c *Chunk) IsVisibleByCamera(cam gfx.Camera) bool {
	boundsMin, boundsMax := c.WorldBounds()
	return cam.ContainsAABB(
		mgl32.Vec3{float32(boundsMin.X), float32(boundsMin.Y), float32(boundsMin.Z)},
		mgl32.Vec3{float32(boundsMax.X), float32(boundsMax.Y), float32(boundsMax.Z)},
	)
}
