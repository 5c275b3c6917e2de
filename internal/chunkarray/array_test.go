package chunkarray

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/chunk"
	"voxelarray/internal/command"
	"voxelarray/internal/config"
	"voxelarray/internal/gfx"
	"voxelarray/internal/spatial"
	"voxelarray/internal/task"
	"voxelarray/internal/voxel"
)

// fakeMesh counts draws of non-empty meshes so scenario tests can
// assert "render emits zero draw calls".
type fakeMesh struct {
	floats int
	draws  *int
}

func (m *fakeMesh) Draw(target gfx.Surface, uniforms gfx.Uniforms) {
	if m.floats > 0 {
		*m.draws++
	}
}
func (m *fakeMesh) Release()    {}
func (m *fakeMesh) Empty() bool { return m.floats == 0 }

type upload struct {
	full   bool
	floats int
}

type fakeFacade struct {
	draws   int
	uploads []upload
}

func (f *fakeFacade) UploadFull(vertices []float32, indices []uint32) gfx.MeshHandle {
	f.uploads = append(f.uploads, upload{full: true, floats: len(vertices)})
	return &fakeMesh{floats: len(vertices), draws: &f.draws}
}

func (f *fakeFacade) UploadLow(vertices []float32, indices []uint32) gfx.MeshHandle {
	f.uploads = append(f.uploads, upload{full: false, floats: len(vertices)})
	return &fakeMesh{floats: len(vertices), draws: &f.draws}
}

type fakeCamera struct {
	pos mgl32.Vec3
}

func (c fakeCamera) Pos() mgl32.Vec3                       { return c.pos }
func (c fakeCamera) Front() mgl32.Vec3                     { return mgl32.Vec3{0, 0, -1} }
func (c fakeCamera) ContainsAABB(min, max mgl32.Vec3) bool { return true }

// airGen generates all-air chunks.
type airGen struct{}

func (airGen) GenerateVoxels(chunkPos spatial.Vec3i, side int) []voxel.Id {
	return make([]voxel.Id, side*side*side)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ChunkSide = 8
	return cfg
}

// tick drives Render until done() reports true, sleeping between
// frames so spawned tasks can finish.
func tick(t *testing.T, a *ChunkArray, cam gfx.Camera, facade gfx.Facade, done func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		a.Render(nil, nil, cam, facade)
		if done() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("array never reached the expected state")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestAirCubeGeneratesEmptyMeshAndDrawsNothing(t *testing.T) {
	cfg := testConfig()
	facade := &fakeFacade{}
	cam := fakeCamera{pos: mgl32.Vec3{4, 4, 4}}

	a, err := New(cfg, spatial.Vec3i{X: 1, Y: 1, Z: 1}, task.NewRuntime(cfg.MaxTasks), airGen{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c := a.ChunkAt(spatial.Vec3i{})
	if c == nil {
		t.Fatal("missing chunk at origin")
	}

	tick(t, a, cam, facade, func() bool {
		_, ok := c.ActiveLOD()
		return ok
	})

	lod, _ := c.ActiveLOD()
	if lod != 0 {
		t.Fatalf("expected active LOD 0 next to the camera, got %d", lod)
	}
	if len(facade.uploads) != 1 || facade.uploads[0].floats != 0 {
		t.Fatalf("expected exactly one empty LOD-0 upload, got %+v", facade.uploads)
	}
	if facade.draws != 0 {
		t.Fatalf("an all-air chunk should emit zero draw calls, got %d", facade.draws)
	}
}

func TestDesiredLOD(t *testing.T) {
	tests := []struct {
		dist float64
		want int
	}{
		{0, 0},
		{5.7, 0},
		{5.8, 1},
		{12, 2}, // floor(12/5.8) == 2
		{1000, 5},
	}
	for _, tt := range tests {
		if got := desiredLOD(5.8, 5, tt.dist); got != tt.want {
			t.Errorf("desiredLOD(5.8, 5, %v) = %d, want %d", tt.dist, got, tt.want)
		}
	}
}

func TestTaskSaturationStaysWithinBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTasks = 4
	facade := &fakeFacade{}
	cam := fakeCamera{}

	a, err := New(cfg, spatial.Vec3i{X: 5, Y: 5, Z: 4}, task.NewRuntime(cfg.MaxTasks), airGen{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	allGenerated := func() bool {
		for _, c := range a.chunks {
			if !c.Generated() {
				return false
			}
		}
		return true
	}

	deadline := time.After(10 * time.Second)
	for !allGenerated() {
		a.Render(nil, nil, cam, facade)
		if used := a.taskBudgetUsed(); used > cfg.MaxTasks {
			t.Fatalf("task budget exceeded: %d in flight, cap %d", used, cfg.MaxTasks)
		}
		select {
		case <-deadline:
			t.Fatal("chunks never finished generating")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCrossChunkEditInvalidatesAndRebuildsNeighbor(t *testing.T) {
	cfg := testConfig()
	facade := &fakeFacade{}

	a, err := New(cfg, spatial.Vec3i{X: 2, Y: 1, Z: 1}, task.NewRuntime(cfg.MaxTasks), airGen{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Grid covers chunk positions -1 and 0 on X. Make both generated
	// all-air with an uploaded empty LOD-0 mesh, plus a cached low
	// mesh on the neighbor that the edit must drop.
	left := a.ChunkAt(spatial.Vec3i{X: -1})
	right := a.ChunkAt(spatial.Vec3i{})
	for _, c := range []*chunk.Chunk{left, right} {
		c.MarkGeneratedSame(voxel.Air)
		c.UploadFullVertices(facade, nil, nil)
		c.TrySetBestFitLOD(0)
	}
	right.UploadLowVertices(facade, 2, nil, nil)

	// Voxel (-1,0,0) is the left chunk's border voxel against the
	// right chunk.
	facade.uploads = nil
	a.ApplyCommands([]command.Command{command.SetVoxel(spatial.Vec3i{X: -1}, 1)}, facade)

	floats := map[int]bool{}
	for _, u := range facade.uploads {
		if !u.full {
			t.Fatalf("edit reload should rebuild LOD-0 meshes only, got %+v", u)
		}
		floats[u.floats] = true
	}
	// Left chunk: 5 owned faces. Right chunk: the seam face.
	if len(facade.uploads) != 2 || !floats[5*6*chunk.FullVertexSize] || !floats[1*6*chunk.FullVertexSize] {
		t.Fatalf("expected a 5-face and a 1-face rebuild, got %+v", facade.uploads)
	}

	for name, c := range map[string]*chunk.Chunk{"left": left, "right": right} {
		lod, ok := c.ActiveLOD()
		if !ok || lod != 0 {
			t.Fatalf("%s chunk should be active at LOD 0 after the synchronous reload, got (%d,%v)", name, lod, ok)
		}
	}
	if right.HasMeshFor(2) {
		t.Fatal("neighbor's stale low mesh should be dropped by the edit")
	}
}

func TestUpdateDrainsCommandChannelFIFO(t *testing.T) {
	cfg := testConfig()
	facade := &fakeFacade{}

	a, err := New(cfg, spatial.Vec3i{X: 1, Y: 1, Z: 1}, task.NewRuntime(cfg.MaxTasks), airGen{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := a.ChunkAt(spatial.Vec3i{})
	c.MarkGeneratedSame(voxel.Air)

	ch := command.NewChannel(8)
	ch.Send(command.SetVoxel(spatial.Vec3i{X: 1, Y: 1, Z: 1}, 1))
	ch.Send(command.SetVoxel(spatial.Vec3i{X: 1, Y: 1, Z: 1}, 2))
	a.Update(ch, facade)

	id, ok := a.GetVoxelGlobal(spatial.Vec3i{X: 1, Y: 1, Z: 1})
	if !ok || id != 2 {
		t.Fatalf("expected the later command to win FIFO order, got (%d,%v)", id, ok)
	}
}

func TestNewEmptyChunksRejectsOversizedGrid(t *testing.T) {
	cfg := testConfig()
	cfg.MaxChunks = 8

	a, err := New(cfg, spatial.Vec3i{X: 2, Y: 2, Z: 2}, task.NewRuntime(cfg.MaxTasks), airGen{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.NewEmptyChunks(spatial.Vec3i{X: 3, Y: 2, Z: 2}); err != ErrReshapeTooLarge {
		t.Fatalf("expected ErrReshapeTooLarge, got %v", err)
	}
}

func TestNewEmptyChunksDiscardsState(t *testing.T) {
	cfg := testConfig()
	facade := &fakeFacade{}

	a, err := New(cfg, spatial.Vec3i{X: 2, Y: 1, Z: 1}, task.NewRuntime(cfg.MaxTasks), airGen{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := a.ChunkAt(spatial.Vec3i{})
	c.MarkGeneratedSame(voxel.Air)
	c.UploadFullVertices(facade, nil, nil)

	if err := a.NewEmptyChunks(spatial.Vec3i{X: 1, Y: 1, Z: 1}); err != nil {
		t.Fatalf("NewEmptyChunks: %v", err)
	}
	if a.Sizes() != (spatial.Vec3i{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("sizes not updated: %+v", a.Sizes())
	}
	fresh := a.ChunkAt(spatial.Vec3i{})
	if fresh.Generated() {
		t.Fatal("reshaped chunks should start ungenerated")
	}
	if a.taskBudgetUsed() != 0 {
		t.Fatal("reshape should drop all tasks")
	}
}
