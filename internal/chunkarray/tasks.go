package chunkarray

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/chunk"
	"voxelarray/internal/corelog"
	"voxelarray/internal/gfx"
	"voxelarray/internal/spatial"
	"voxelarray/internal/task"
	pkgmath "voxelarray/pkg/math"
)

const driverLogTag = "ChunkArray"

// work pairs a chunk with the adjacency view and desired LOD computed
// for it this tick.
type work struct {
	pos        spatial.Vec3i
	c          *chunk.Chunk
	adj        chunk.Adj
	desiredLOD int
	distSq     float32
}

// desiredLOD computes lod = min(floor(dist/threshold), log2(S)), with
// dist in chunk-size units.
func desiredLOD(threshold float64, maxLOD int, distChunkUnits float64) int {
	lod := int(math.Floor(distChunkUnits / threshold))
	if lod < 0 {
		lod = 0
	}
	if lod > maxLOD {
		lod = maxLOD
	}
	return lod
}

func chunkCenterWorld(pos spatial.Vec3i, side int) mgl32.Vec3 {
	half := float32(side) / 2
	return mgl32.Vec3{
		float32(pos.X*side) + half,
		float32(pos.Y*side) + half,
		float32(pos.Z*side) + half,
	}
}

// buildWorkList computes the per-chunk adjacency/desired-LOD pairing
// and sorts it front to back by squared distance to the camera, so
// nearer chunks get tasks first.
func (a *ChunkArray) buildWorkList(cam gfx.Camera) []work {
	side := a.cfg.ChunkSide
	maxLOD := a.cfg.MaxLOD()
	camPos := cam.Pos()

	list := make([]work, 0, len(a.chunks))
	it := spatial.NewSpaceIter(spatial.Vec3i{}, a.sizes)
	for coordIdx, ok := it.Next(); ok; coordIdx, ok = it.Next() {
		pos := spatial.CoordIdxToPos(a.sizes, coordIdx)
		c := a.chunks[spatial.CoordIdxToIdx(coordIdx, a.sizes)]
		center := chunkCenterWorld(pos, side)
		delta := center.Sub(camPos)
		distSq := delta.Dot(delta)
		distChunkUnits := math.Sqrt(float64(distSq)) / float64(side)

		list = append(list, work{
			pos:        pos,
			c:          c,
			adj:        a.adjacency(pos),
			desiredLOD: desiredLOD(a.cfg.LODThreshold, maxLOD, distChunkUnits),
			distSq:     distSq,
		})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].distSq < list[j].distSq })
	return list
}

// drainReadyTasks removes every task whose handle has completed and
// applies its result to the owning chunk.
func (a *ChunkArray) drainReadyTasks(facade gfx.Facade) {
	for pos, h := range a.voxelGenTasks {
		if result, ok := h.TryTakeResult(); ok {
			delete(a.voxelGenTasks, pos)
			c := a.ChunkAt(pos)
			if c == nil {
				// A completed task keyed to a position the grid no longer
				// holds is a bookkeeping bug; drop_tasks should have torn
				// it down with the chunk.
				corelog.Warnf(driverLogTag, "voxel-gen task for %+v has no chunk", pos)
				continue
			}
			c.MarkGeneratedAuto(result.ids)
		}
	}
	for pos, h := range a.fullTasks {
		if result, ok := h.TryTakeResult(); ok {
			delete(a.fullTasks, pos)
			c := a.ChunkAt(pos)
			if c == nil {
				corelog.Warnf(driverLogTag, "full mesh task for %+v has no chunk", pos)
				continue
			}
			c.UploadFullVertices(facade, result.vertices, nil)
		}
	}
	for key, h := range a.lowTasks {
		if result, ok := h.TryTakeResult(); ok {
			delete(a.lowTasks, key)
			c := a.ChunkAt(key.pos)
			if c == nil {
				corelog.Warnf(driverLogTag, "lod %d mesh task for %+v has no chunk", key.lod, key.pos)
				continue
			}
			c.UploadLowVertices(facade, key.lod, result.vertices, nil)
		}
	}
}

// startVoxelGenTask schedules generate_voxels for pos if the budget
// allows; a no-op otherwise.
func (a *ChunkArray) startVoxelGenTask(pos spatial.Vec3i) {
	if !a.budgetAvailable() {
		return
	}
	if !a.runtime.TryAcquire() {
		return
	}
	side := a.cfg.ChunkSide
	gen := a.gen
	h := task.SpawnT(a.runtime, func() voxelGenResult {
		return voxelGenResult{pos: pos, ids: gen.GenerateVoxels(pos, side)}
	})
	a.voxelGenTasks[pos] = h
}

// startMeshTask schedules a mesh build at w's desired LOD. At most one
// task may be in flight per (pos, lod) key, so a still-running build
// makes this a no-op rather than a duplicate spawn.
func (a *ChunkArray) startMeshTask(w work) {
	lod := w.desiredLOD
	if lod == 0 {
		if _, inFlight := a.fullTasks[w.pos]; inFlight {
			return
		}
	} else {
		if _, inFlight := a.lowTasks[lowTaskKey{pos: w.pos, lod: lod}]; inFlight {
			return
		}
	}
	if !a.budgetAvailable() {
		return
	}
	if !a.allNeighborsGenerated(w.pos) {
		return
	}
	if !a.runtime.TryAcquire() {
		return
	}
	adj := w.adj
	if lod == 0 {
		h := task.SpawnT(a.runtime, func() meshResult {
			return meshResult{pos: w.pos, lod: 0, vertices: chunk.MakeVerticesDetailed(adj)}
		})
		a.fullTasks[w.pos] = h
		return
	}
	h := task.SpawnT(a.runtime, func() meshResult {
		return meshResult{pos: w.pos, lod: lod, vertices: chunk.MakeVerticesLow(adj, lod)}
	})
	a.lowTasks[lowTaskKey{pos: w.pos, lod: lod}] = h
}

// pruneStaleTasks drops queued mesh tasks for w.pos whose LOD is more
// than 2 levels away from the current desired LOD. Dropped tasks run
// to completion; without a map entry their results are discarded.
func (a *ChunkArray) pruneStaleTasks(w work) {
	if _, ok := a.fullTasks[w.pos]; ok && pkgmath.AbsInt(0-w.desiredLOD) > 2 {
		delete(a.fullTasks, w.pos)
	}
	for key := range a.lowTasks {
		if key.pos != w.pos {
			continue
		}
		if pkgmath.AbsInt(key.lod-w.desiredLOD) > 2 {
			delete(a.lowTasks, key)
		}
	}
}

// Render runs the per-frame driver: drain ready tasks, build the
// sorted work list, then per chunk schedule/adopt/draw in
// front-to-back order.
func (a *ChunkArray) Render(target gfx.Surface, uniforms gfx.Uniforms, cam gfx.Camera, facade gfx.Facade) {
	a.drainReadyTasks(facade)
	list := a.buildWorkList(cam)

	for _, w := range list {
		c := w.c

		if !c.Generated() {
			if _, hasTask := a.voxelGenTasks[w.pos]; !hasTask {
				a.startVoxelGenTask(w.pos)
			}
			continue
		}

		if c.HasMeshFor(w.desiredLOD) {
			c.TrySetBestFitLOD(w.desiredLOD)
		} else {
			a.startMeshTask(w)
			c.TrySetBestFitLOD(w.desiredLOD)
		}

		a.pruneStaleTasks(w)

		active, ok := c.ActiveLOD()
		if !ok {
			continue
		}
		if !c.IsVisibleByCamera(cam) {
			continue
		}
		if err := c.Render(target, uniforms, active); err != nil {
			corelog.Warnf(driverLogTag, "render %+v: %v", w.pos, err)
		}
	}
}
