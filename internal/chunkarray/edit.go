package chunkarray

import (
	"context"

	"voxelarray/internal/chunk"
	"voxelarray/internal/command"
	"voxelarray/internal/corelog"
	"voxelarray/internal/gfx"
	"voxelarray/internal/spatial"
	"voxelarray/internal/task"
	"voxelarray/internal/voxel"
	pkgmath "voxelarray/pkg/math"
)

const editLogTag = "ChunkArray"

// changeTracker batches the voxel positions edited within a tick so
// the affected chunk meshes can be rebuilt before the next frame.
type changeTracker struct {
	editedThisTick []spatial.Vec3i
}

func newChangeTracker() *changeTracker {
	return &changeTracker{}
}

func (t *changeTracker) record(p spatial.Vec3i) {
	t.editedThisTick = append(t.editedThisTick, p)
}

func (t *changeTracker) reset() {
	t.editedThisTick = t.editedThisTick[:0]
}

// reloadSet computes the chunk positions whose mesh cache must be
// rebuilt given this tick's edited voxel positions: the owning chunk
// of each edit plus, for edits on a chunk border, the neighbor chunk
// across that border.
func (a *ChunkArray) reloadSet() map[spatial.Vec3i]struct{} {
	side := a.cfg.ChunkSide
	out := make(map[spatial.Vec3i]struct{})
	for _, p := range a.tracker.editedThisTick {
		chunkPos := chunk.ChunkPos(p, side)
		out[chunkPos] = struct{}{}

		local := chunk.LocalPos(chunkPos, p, side)
		bounds := spatial.Vec3i{X: side, Y: side, Z: side}
		for _, off := range spatial.OffsetsFromBorder(local, bounds) {
			out[chunkPos.Add(off)] = struct{}{}
		}
	}
	return out
}

// Update drains every command queued on ch since the last tick and
// applies the batch, FIFO, against the array.
func (a *ChunkArray) Update(ch *command.Channel, facade gfx.Facade) {
	a.ApplyCommands(ch.DrainReady(), facade)
}

// ApplyCommands runs a tick's worth of drained commands against the
// array: edits are applied in FIFO order, then every chunk touched by
// an edit (and its face-adjacent chunks at the edit's border) has its
// LOD-0 mesh rebuilt synchronously, via facade, so the change is
// visible next frame.
func (a *ChunkArray) ApplyCommands(cmds []command.Command, facade gfx.Facade) {
	a.tracker.reset()

	for _, cmd := range cmds {
		switch cmd.Kind {
		case command.KindSetVoxel:
			a.applySetVoxel(cmd.Pos, voxel.Id(cmd.NewID))
		case command.KindFillVoxels:
			a.applyFillVoxels(cmd.Pos, cmd.PosTo, voxel.Id(cmd.NewID))
		case command.KindDropAllMeshes:
			a.dropAllMeshes()
		}
	}

	for pos := range a.reloadSet() {
		a.reloadMeshSync(pos, facade)
	}
}

// settleMeshTasks waits out and discards every in-flight mesh task
// whose read-only adjacency view includes the chunk at pos: the
// chunk's own tasks plus those of its six face neighbors. Mesh tasks
// are not cancellable, so an edit lets them run to completion and
// drops the stale result before mutating the voxels they were reading.
func (a *ChunkArray) settleMeshTasks(pos spatial.Vec3i) {
	positions := [7]spatial.Vec3i{pos}
	adj := spatial.AdjIter(pos)
	copy(positions[1:], adj[:])
	for _, p := range positions {
		if h, ok := a.fullTasks[p]; ok {
			_, _ = task.BlockOn(context.Background(), h)
			delete(a.fullTasks, p)
		}
		for lod := 1; lod <= a.cfg.MaxLOD(); lod++ {
			key := lowTaskKey{pos: p, lod: lod}
			if h, ok := a.lowTasks[key]; ok {
				_, _ = task.BlockOn(context.Background(), h)
				delete(a.lowTasks, key)
			}
		}
	}
}

func (a *ChunkArray) applySetVoxel(p spatial.Vec3i, newID voxel.Id) {
	chunkPos := chunk.ChunkPos(p, a.cfg.ChunkSide)
	c := a.ChunkAt(chunkPos)
	if c == nil {
		return
	}
	if !c.Generated() {
		corelog.Warnf(editLogTag, "set_voxel %+v: chunk not generated yet", p)
		return
	}
	a.settleMeshTasks(chunkPos)
	if _, err := c.SetVoxel(p, newID); err != nil {
		corelog.Warnf(editLogTag, "set_voxel %+v: %v", p, err)
		return
	}
	a.tracker.record(p)
}

func (a *ChunkArray) applyFillVoxels(from, to spatial.Vec3i, newID voxel.Id) {
	side := a.cfg.ChunkSide
	last := to.Sub(spatial.Vec3i{X: 1, Y: 1, Z: 1})
	fromChunk := chunk.ChunkPos(from, side)
	toChunk := chunk.ChunkPos(last, side)

	lo := spatial.Vec3i{X: min(fromChunk.X, toChunk.X), Y: min(fromChunk.Y, toChunk.Y), Z: min(fromChunk.Z, toChunk.Z)}
	hi := spatial.Vec3i{X: max(fromChunk.X, toChunk.X), Y: max(fromChunk.Y, toChunk.Y), Z: max(fromChunk.Z, toChunk.Z)}

	it := spatial.NewSpaceIter(lo, hi.Add(spatial.Vec3i{X: 1, Y: 1, Z: 1}))
	for chunkPos, ok := it.Next(); ok; chunkPos, ok = it.Next() {
		c := a.ChunkAt(chunkPos)
		if c == nil {
			continue
		}
		if !c.Generated() {
			corelog.Warnf(editLogTag, "fill_voxels %+v..%+v: chunk %+v not generated yet", from, to, chunkPos)
			continue
		}
		a.settleMeshTasks(chunkPos)
		changed, err := c.FillVoxels(from, to, newID)
		if err != nil {
			corelog.Warnf(editLogTag, "fill_voxels %+v..%+v: %v", from, to, err)
			continue
		}
		if changed == 0 {
			continue
		}
		// Record every corner of this chunk's clamped intersection with
		// the fill range so reloadSet's per-voxel border check picks up
		// any face this fill exposed, including chunk borders.
		base := spatial.Vec3i{X: chunkPos.X * side, Y: chunkPos.Y * side, Z: chunkPos.Z * side}
		loLocal := spatial.Vec3i{
			X: pkgmath.ClampInt(from.X-base.X, 0, side-1),
			Y: pkgmath.ClampInt(from.Y-base.Y, 0, side-1),
			Z: pkgmath.ClampInt(from.Z-base.Z, 0, side-1),
		}
		hiLocal := spatial.Vec3i{
			X: pkgmath.ClampInt(last.X-base.X, 0, side-1),
			Y: pkgmath.ClampInt(last.Y-base.Y, 0, side-1),
			Z: pkgmath.ClampInt(last.Z-base.Z, 0, side-1),
		}
		for _, x := range []int{loLocal.X, hiLocal.X} {
			for _, y := range []int{loLocal.Y, hiLocal.Y} {
				for _, z := range []int{loLocal.Z, hiLocal.Z} {
					a.tracker.record(base.Add(spatial.Vec3i{X: x, Y: y, Z: z}))
				}
			}
		}
	}
}

// dropAllMeshes clears every chunk's mesh cache and forgets every
// outstanding mesh task, keeping voxel generation (and its in-flight
// tasks) untouched. Forgotten mesh tasks still run to completion;
// without a map entry their results are discarded.
func (a *ChunkArray) dropAllMeshes() {
	for _, c := range a.chunks {
		if c != nil {
			c.DropMeshes()
		}
	}
	a.fullTasks = make(map[spatial.Vec3i]*task.Handle[meshResult])
	a.lowTasks = make(map[lowTaskKey]*task.Handle[meshResult])
}

// reloadMeshSync drops every cached mesh for the chunk at pos, then
// rebuilds and uploads its LOD-0 mesh immediately, bypassing the task
// scheduler. Used only for the small reload set an edit touches. The
// edited chunk's cache was already cleared by SetVoxel; its neighbors
// drop theirs here so a stale higher-LOD mesh can't be re-adopted
// next frame. In-flight tasks for this position are dropped first so
// their results can't clobber the rebuild.
func (a *ChunkArray) reloadMeshSync(pos spatial.Vec3i, facade gfx.Facade) {
	c := a.ChunkAt(pos)
	if c == nil || !c.Generated() {
		return
	}
	delete(a.fullTasks, pos)
	for lod := 1; lod <= a.cfg.MaxLOD(); lod++ {
		delete(a.lowTasks, lowTaskKey{pos: pos, lod: lod})
	}

	c.DropMeshes()
	vertices := chunk.MakeVerticesDetailed(a.adjacency(pos))
	c.UploadFullVertices(facade, vertices, nil)
	c.TrySetBestFitLOD(0)
}
