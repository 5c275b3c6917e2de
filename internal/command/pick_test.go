package command

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

func lookupWithStoneAt(solid spatial.Vec3i) VoxelAt {
	return func(pos spatial.Vec3i) (voxel.Id, bool) {
		if pos == solid {
			return 1, true
		}
		return voxel.Air, true
	}
}

func TestPickFindsFirstSolidAlongRay(t *testing.T) {
	solid := spatial.Vec3i{X: 3}
	got := Pick(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, lookupWithStoneAt(solid))
	if !got.Hit {
		t.Fatal("expected a hit")
	}
	if got.VoxelPos != solid {
		t.Fatalf("hit %+v, want %+v", got.VoxelPos, solid)
	}
}

func TestPickMissesWhenNothingSolidInRange(t *testing.T) {
	// Beyond PickMaxSteps * PickStepSize voxels away.
	solid := spatial.Vec3i{X: 500}
	got := Pick(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, lookupWithStoneAt(solid))
	if got.Hit {
		t.Fatalf("expected a miss, hit %+v", got.VoxelPos)
	}
}

func TestPickSkipsUnresolvedPositions(t *testing.T) {
	solid := spatial.Vec3i{X: 3}
	lookup := func(pos spatial.Vec3i) (voxel.Id, bool) {
		if pos.X < 2 {
			return voxel.Air, false // ungenerated territory
		}
		if pos == solid {
			return 1, true
		}
		return voxel.Air, true
	}
	got := Pick(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, lookup)
	if !got.Hit || got.VoxelPos != solid {
		t.Fatalf("expected to march through unresolved voxels and hit %+v, got %+v", solid, got)
	}
}

func TestPickAndClearIssuesAirSetVoxel(t *testing.T) {
	solid := spatial.Vec3i{X: 3}
	cmd, ok := PickAndClear(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, lookupWithStoneAt(solid))
	if !ok {
		t.Fatal("expected a command")
	}
	if cmd.Kind != KindSetVoxel || cmd.Pos != solid || cmd.NewID != uint16(voxel.Air) {
		t.Fatalf("got %+v, want SetVoxel{%+v, air}", cmd, solid)
	}
}

func TestChannelDrainReadyReturnsFIFO(t *testing.T) {
	ch := NewChannel(8)
	ch.Send(SetVoxel(spatial.Vec3i{X: 1}, 1))
	ch.Send(FillVoxels(spatial.Vec3i{}, spatial.Vec3i{X: 2, Y: 2, Z: 2}, 2))
	ch.Send(DropAllMeshes())

	got := ch.DrainReady()
	if len(got) != 3 {
		t.Fatalf("got %d commands, want 3", len(got))
	}
	wantKinds := []Kind{KindSetVoxel, KindFillVoxels, KindDropAllMeshes}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Fatalf("command %d: got kind %d, want %d", i, got[i].Kind, k)
		}
	}
	if more := ch.DrainReady(); len(more) != 0 {
		t.Fatalf("second drain should be empty, got %d", len(more))
	}
}
