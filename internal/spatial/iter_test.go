package spatial

import "testing"

func TestSpaceIterVisitsEveryCoordinateZFastest(t *testing.T) {
	it := NewSpaceIter(Vec3i{}, Vec3i{X: 2, Y: 2, Z: 2})
	want := []Vec3i{
		{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
	}
	for i, w := range want {
		got, ok := it.Next()
		if !ok {
			t.Fatalf("iterator exhausted at step %d", i)
		}
		if got != w {
			t.Fatalf("step %d: got %+v, want %+v", i, got, w)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatal("iterator should be exhausted")
	}
}

func TestSpaceIterEmptyBox(t *testing.T) {
	it := NewSpaceIter(Vec3i{X: 3}, Vec3i{X: 3, Y: 5, Z: 5})
	if _, ok := it.Next(); ok {
		t.Fatal("empty box should yield nothing")
	}
}

func TestPosCoordIdxRoundTrip(t *testing.T) {
	sizes := Vec3i{X: 4, Y: 3, Z: 5}
	it := NewSpaceIter(Vec3i{}, sizes)
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		pos := CoordIdxToPos(sizes, c)
		back, inGrid := PosToCoordIdx(sizes, pos)
		if !inGrid {
			t.Fatalf("coord %+v mapped out of grid via pos %+v", c, pos)
		}
		if back != c {
			t.Fatalf("coord %+v -> pos %+v -> coord %+v", c, pos, back)
		}
	}
}

func TestPosToCoordIdxRejectsOutside(t *testing.T) {
	sizes := Vec3i{X: 2, Y: 2, Z: 2}
	for _, p := range []Vec3i{{X: 5}, {Y: -4}, {Z: 2}} {
		if _, ok := PosToCoordIdx(sizes, p); ok {
			t.Fatalf("position %+v should be outside a %+v grid", p, sizes)
		}
	}
}

func TestIdxCoordIdxRoundTrip(t *testing.T) {
	sizes := Vec3i{X: 3, Y: 4, Z: 5}
	volume := sizes.X * sizes.Y * sizes.Z
	for i := 0; i < volume; i++ {
		c := IdxToCoordIdx(i, sizes)
		if got := CoordIdxToIdx(c, sizes); got != i {
			t.Fatalf("idx %d -> coord %+v -> idx %d", i, c, got)
		}
	}
}

func TestAdjIterSymmetry(t *testing.T) {
	p := Vec3i{X: 2, Y: -3, Z: 7}
	for _, q := range AdjIter(p) {
		found := false
		for _, back := range AdjIter(q) {
			if back == p {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%+v adjacent to %+v but not vice versa", q, p)
		}
	}
}

func TestAdjIterOrder(t *testing.T) {
	got := AdjIter(Vec3i{})
	want := [6]Vec3i{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	if got != want {
		t.Fatalf("got %+v, want +X,-X,+Y,-Y,+Z,-Z order", got)
	}
}

func TestOffsetsFromBorder(t *testing.T) {
	bounds := Vec3i{X: 8, Y: 8, Z: 8}
	tests := []struct {
		name  string
		local Vec3i
		count int
	}{
		{"interior", Vec3i{X: 3, Y: 4, Z: 5}, 0},
		{"face", Vec3i{X: 0, Y: 4, Z: 5}, 1},
		{"edge", Vec3i{X: 0, Y: 7, Z: 5}, 2},
		{"corner", Vec3i{X: 0, Y: 7, Z: 0}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OffsetsFromBorder(tt.local, bounds)
			if len(got) != tt.count {
				t.Fatalf("got %d offsets %+v, want %d", len(got), got, tt.count)
			}
		})
	}
}

func TestFloorDivMod(t *testing.T) {
	tests := []struct {
		a, b, div, mod int
	}{
		{7, 4, 1, 3},
		{-1, 4, -1, 3},
		{-4, 4, -1, 0},
		{-5, 4, -2, 3},
		{0, 4, 0, 0},
	}
	for _, tt := range tests {
		if got := FloorDiv(tt.a, tt.b); got != tt.div {
			t.Errorf("FloorDiv(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.div)
		}
		if got := FloorMod(tt.a, tt.b); got != tt.mod {
			t.Errorf("FloorMod(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.mod)
		}
	}
}
