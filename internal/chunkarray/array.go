// Package chunkarray owns the dense 3D grid of chunks, the task maps
// that drive concurrent generation and meshing, and the per-frame
// scheduler/renderer loop.
package chunkarray

import (
	"errors"

	"voxelarray/internal/chunk"
	"voxelarray/internal/config"
	"voxelarray/internal/spatial"
	"voxelarray/internal/task"
	"voxelarray/internal/voxel"
)

// ErrReshapeTooLarge is returned by NewEmptyChunks when the requested
// dimensions exceed the configured chunk budget.
var ErrReshapeTooLarge = errors.New("chunkarray: requested size exceeds MaxChunks")

type lowTaskKey struct {
	pos spatial.Vec3i
	lod int
}

type voxelGenResult struct {
	pos spatial.Vec3i
	ids []voxel.Id
}

type meshResult struct {
	pos      spatial.Vec3i
	lod      int
	vertices []float32
}

// Generator produces the deterministic voxel buffer for a chunk
// position.
type Generator interface {
	GenerateVoxels(chunkPos spatial.Vec3i, side int) []voxel.Id
}

// ChunkArray is the dense, origin-centered grid of chunks plus its
// task bookkeeping.
type ChunkArray struct {
	cfg     config.Config
	sizes   spatial.Vec3i
	chunks  []*chunk.Chunk
	runtime *task.Runtime
	gen     Generator

	voxelGenTasks map[spatial.Vec3i]*task.Handle[voxelGenResult]
	fullTasks     map[spatial.Vec3i]*task.Handle[meshResult]
	lowTasks      map[lowTaskKey]*task.Handle[meshResult]

	saveInFlight bool
	loadInFlight bool

	tracker *changeTracker
}

// New builds a ChunkArray of the given grid dimensions, every chunk
// starting empty and ungenerated.
func New(cfg config.Config, sizes spatial.Vec3i, runtime *task.Runtime, gen Generator) (*ChunkArray, error) {
	if err := checkBudget(cfg, sizes); err != nil {
		return nil, err
	}
	a := &ChunkArray{
		cfg:           cfg,
		sizes:         sizes,
		runtime:       runtime,
		gen:           gen,
		voxelGenTasks: make(map[spatial.Vec3i]*task.Handle[voxelGenResult]),
		fullTasks:     make(map[spatial.Vec3i]*task.Handle[meshResult]),
		lowTasks:      make(map[lowTaskKey]*task.Handle[meshResult]),
		tracker:       newChangeTracker(),
	}
	a.chunks = make([]*chunk.Chunk, sizes.X*sizes.Y*sizes.Z)
	it := spatial.NewSpaceIter(spatial.Vec3i{}, sizes)
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		pos := spatial.CoordIdxToPos(sizes, c)
		a.chunks[spatial.CoordIdxToIdx(c, sizes)] = chunk.New(pos, cfg.ChunkSide)
	}
	return a, nil
}

func checkBudget(cfg config.Config, sizes spatial.Vec3i) error {
	volume := sizes.X * sizes.Y * sizes.Z
	if volume > cfg.MaxChunks {
		return ErrReshapeTooLarge
	}
	return nil
}

// NewEmptyChunks discards all state (tasks, meshes, chunks) and
// rebuilds the grid at the new dimensions.
func (a *ChunkArray) NewEmptyChunks(sizes spatial.Vec3i) error {
	if err := checkBudget(a.cfg, sizes); err != nil {
		return err
	}
	for _, c := range a.chunks {
		if c != nil {
			c.Dispose()
		}
	}
	a.voxelGenTasks = make(map[spatial.Vec3i]*task.Handle[voxelGenResult])
	a.fullTasks = make(map[spatial.Vec3i]*task.Handle[meshResult])
	a.lowTasks = make(map[lowTaskKey]*task.Handle[meshResult])
	a.tracker = newChangeTracker()

	a.sizes = sizes
	a.chunks = make([]*chunk.Chunk, sizes.X*sizes.Y*sizes.Z)
	it := spatial.NewSpaceIter(spatial.Vec3i{}, sizes)
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		pos := spatial.CoordIdxToPos(sizes, c)
		a.chunks[spatial.CoordIdxToIdx(c, sizes)] = chunk.New(pos, a.cfg.ChunkSide)
	}
	return nil
}

// Sizes returns the grid's (W,H,D) dimensions.
func (a *ChunkArray) Sizes() spatial.Vec3i { return a.sizes }

// ChunkAt returns the chunk at chunk-space position pos, or nil if
// pos falls outside the grid.
func (a *ChunkArray) ChunkAt(pos spatial.Vec3i) *chunk.Chunk {
	coordIdx, ok := spatial.PosToCoordIdx(a.sizes, pos)
	if !ok {
		return nil
	}
	return a.chunks[spatial.CoordIdxToIdx(coordIdx, a.sizes)]
}

// adjacency builds a chunk.Adj for pos using the fixed (+X,-X,+Y,-Y,+Z,-Z)
// neighbor order shared with internal/chunk's mesh builders.
func (a *ChunkArray) adjacency(pos spatial.Vec3i) chunk.Adj {
	adj := chunk.Adj{Center: a.ChunkAt(pos)}
	offsets := spatial.AdjIter(pos)
	for i, off := range offsets {
		adj.Neighbors[i] = a.ChunkAt(off)
	}
	return adj
}

// allNeighborsGenerated reports whether every face-adjacent chunk to
// pos has finished voxel generation. Neighbors outside the grid don't
// exist and never will; the mesher treats them as transparent, so they
// don't hold up meshing.
func (a *ChunkArray) allNeighborsGenerated(pos spatial.Vec3i) bool {
	for _, off := range spatial.AdjIter(pos) {
		if _, ok := spatial.PosToCoordIdx(a.sizes, off); !ok {
			continue
		}
		n := a.ChunkAt(off)
		if n == nil || !n.Generated() {
			return false
		}
	}
	return true
}

// GetVoxelGlobal resolves a global voxel position to its id, used by
// the pointer-pick handler and the console runtime.
func (a *ChunkArray) GetVoxelGlobal(p spatial.Vec3i) (voxel.Id, bool) {
	chunkPos := chunk.ChunkPos(p, a.cfg.ChunkSide)
	c := a.ChunkAt(chunkPos)
	if c == nil || !c.Generated() {
		return voxel.Air, false
	}
	id, err := c.GetVoxelGlobal(p)
	if err != nil {
		return voxel.Air, false
	}
	return id, true
}

// taskBudgetUsed is the combined voxel-gen + full + low task count,
// the quantity MaxTasks bounds.
func (a *ChunkArray) taskBudgetUsed() int {
	return len(a.voxelGenTasks) + len(a.fullTasks) + len(a.lowTasks)
}

func (a *ChunkArray) budgetAvailable() bool {
	return a.taskBudgetUsed() < a.cfg.MaxTasks && !a.saveInFlight && !a.loadInFlight
}
