package chunk

import (
	"testing"

	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

const testSide = 32

func emptyAdj(c *Chunk) Adj {
	return Adj{Center: c}
}

func TestNewChunkStartsAllSameAir(t *testing.T) {
	c := New(spatial.Vec3i{}, testSide)
	if c.fill.Kind != FillAllSame || c.fill.Uniform != voxel.Air {
		t.Fatalf("new chunk should start AllSame(air), got %+v", c.fill)
	}
	if c.Generated() {
		t.Fatal("new chunk should not be generated")
	}
}

func TestSetVoxelIsIdempotent(t *testing.T) {
	c := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)

	if _, err := c.SetVoxel(spatial.Vec3i{X: 1, Y: 1, Z: 1}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.fill.Kind != FillDefault {
		t.Fatal("first differing write should materialize the chunk")
	}

	before := len(c.voxelIDs)
	old, err := c.SetVoxel(spatial.Vec3i{X: 1, Y: 1, Z: 1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if old != 1 {
		t.Fatalf("expected old id 1, got %d", old)
	}
	if len(c.voxelIDs) != before {
		t.Fatal("repeated identical write should not reallocate")
	}
}

func TestSetVoxelRejectsInvalidID(t *testing.T) {
	c := New(spatial.Vec3i{}, testSide)
	badID := voxel.Id(60000)
	if _, err := c.SetVoxel(spatial.Vec3i{}, badID); err == nil {
		t.Fatal("expected InvalidIDError")
	} else if _, ok := err.(*InvalidIDError); !ok {
		t.Fatalf("expected *InvalidIDError, got %T", err)
	}
}

func TestSetVoxelRejectsOutOfChunk(t *testing.T) {
	c := New(spatial.Vec3i{}, testSide)
	if _, err := c.SetVoxel(spatial.Vec3i{X: testSide + 5}, 1); err == nil {
		t.Fatal("expected OutOfChunkError")
	} else if _, ok := err.(*OutOfChunkError); !ok {
		t.Fatalf("expected *OutOfChunkError, got %T", err)
	}
}

func TestSetVoxelInvalidatesMeshCache(t *testing.T) {
	c := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	c.meshCache[0] = nil
	c.activeLOD = 0
	c.hasActiveLOD = true

	if _, err := c.SetVoxel(spatial.Vec3i{}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.meshCache) != 0 {
		t.Fatal("edit should clear the mesh cache")
	}
	if _, ok := c.ActiveLOD(); ok {
		t.Fatal("edit should clear the active LOD")
	}
}

func TestTrySetBestFitLODExactHit(t *testing.T) {
	c := New(spatial.Vec3i{}, testSide)
	c.meshCache[0] = nil
	c.meshCache[3] = nil

	c.TrySetBestFitLOD(3)
	lod, ok := c.ActiveLOD()
	if !ok || lod != 3 {
		t.Fatalf("expected exact hit at lod 3, got (%d,%v)", lod, ok)
	}
}

func TestTrySetBestFitLODTieBreaksLower(t *testing.T) {
	c := New(spatial.Vec3i{}, testSide)
	c.meshCache[1] = nil
	c.meshCache[5] = nil

	c.TrySetBestFitLOD(3)
	lod, ok := c.ActiveLOD()
	if !ok || lod != 1 {
		t.Fatalf("expected tie-break toward smaller lod 1, got (%d,%v)", lod, ok)
	}
}

func TestTrySetBestFitLODEmptyCache(t *testing.T) {
	c := New(spatial.Vec3i{}, testSide)
	c.TrySetBestFitLOD(2)
	if _, ok := c.ActiveLOD(); ok {
		t.Fatal("expected no active lod with an empty cache")
	}
}

func TestMakeVerticesDetailedAirCubeIsEmpty(t *testing.T) {
	c := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	v := MakeVerticesDetailed(emptyAdj(c))
	if len(v) != 0 {
		t.Fatalf("expected zero vertices for an air chunk, got %d floats", len(v))
	}
}

func TestMakeVerticesDetailedSingleStoneBlock(t *testing.T) {
	c := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	stone := voxel.Id(1)
	if _, err := c.SetVoxel(spatial.Vec3i{}, stone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := MakeVerticesDetailed(emptyAdj(c))
	gotVertices := len(v) / FullVertexSize
	if gotVertices != 36 {
		t.Fatalf("expected 36 vertices (6 faces x 6), got %d", gotVertices)
	}
}

func TestMakeVerticesDetailedCrossChunkEdit(t *testing.T) {
	origin := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	posNeighbor := NewSameFilled(spatial.Vec3i{X: 1}, testSide, voxel.Air)

	stone := voxel.Id(1)
	edgePos := spatial.Vec3i{X: testSide - 1, Y: 0, Z: 0}
	if _, err := origin.SetVoxel(edgePos, stone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adj := Adj{Center: origin}
	adj.Neighbors[neighborPosX] = posNeighbor

	v := MakeVerticesDetailed(adj)
	gotVertices := len(v) / FullVertexSize
	if gotVertices != 5*6 {
		t.Fatalf("expected 5 exposed faces (30 vertices), got %d vertices", gotVertices)
	}
}

func TestMakeVerticesDetailedNeighborOwnsSeamFace(t *testing.T) {
	origin := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	stone := voxel.Id(1)
	if _, err := origin.SetVoxel(spatial.Vec3i{X: testSide - 1}, stone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The all-air +X neighbor owns the stone voxel's face across the
	// seam: its mesh carries exactly that one face on its x=0 slab.
	neighbor := NewSameFilled(spatial.Vec3i{X: 1}, testSide, voxel.Air)
	adj := Adj{Center: neighbor}
	adj.Neighbors[neighborNegX] = origin

	v := MakeVerticesDetailed(adj)
	gotVertices := len(v) / FullVertexSize
	if gotVertices != 6 {
		t.Fatalf("expected the neighbor to emit the 1 seam face (6 vertices), got %d", gotVertices)
	}
	for i := 0; i < gotVertices; i++ {
		x := v[i*FullVertexSize]
		if x != float32(testSide) {
			t.Fatalf("seam face vertex %d at x=%v, want the chunk boundary plane x=%d", i, x, testSide)
		}
	}
}

func TestAllSameNeighborsOccludeFully(t *testing.T) {
	center := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Id(1))
	adj := Adj{Center: center}
	for i := range adj.Neighbors {
		adj.Neighbors[i] = NewSameFilled(spatial.Vec3i{}, testSide, voxel.Id(1))
	}

	v := MakeVerticesDetailed(adj)
	if len(v) != 0 {
		t.Fatalf("fully occluded uniform chunk should mesh to zero vertices, got %d floats", len(v))
	}
}

func TestFillVoxelsWholeChunkStaysCompressed(t *testing.T) {
	c := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	stone := voxel.Id(1)

	n, err := c.FillVoxels(spatial.Vec3i{}, spatial.Vec3i{X: testSide, Y: testSide, Z: testSide}, stone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != testSide*testSide*testSide {
		t.Fatalf("expected full volume changed, got %d", n)
	}
	if c.fill.Kind != FillAllSame || c.fill.Uniform != stone {
		t.Fatalf("whole-chunk fill should stay compressed, got %+v", c.fill)
	}
}

func TestFillVoxelsPartialMaterializes(t *testing.T) {
	c := NewSameFilled(spatial.Vec3i{}, testSide, voxel.Air)
	stone := voxel.Id(1)

	n, err := c.FillVoxels(spatial.Vec3i{}, spatial.Vec3i{X: 2, Y: 2, Z: 2}, stone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 voxels changed, got %d", n)
	}
	if c.fill.Kind != FillDefault {
		t.Fatal("partial fill should materialize the chunk")
	}
}

func TestGetVoxelGlobalRoundtrip(t *testing.T) {
	chunkPos := spatial.Vec3i{X: 2, Y: -1, Z: 3}
	c := NewSameFilled(chunkPos, testSide, voxel.Air)
	stone := voxel.Id(1)

	global := spatial.Vec3i{X: chunkPos.X*testSide + 5, Y: chunkPos.Y*testSide + 6, Z: chunkPos.Z*testSide + 7}
	if _, err := c.SetVoxel(global, stone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.GetVoxelGlobal(global)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != stone {
		t.Fatalf("expected %d, got %d", stone, got)
	}
}
