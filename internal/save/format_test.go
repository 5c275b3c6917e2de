package save

import (
	"testing"

	"voxelarray/internal/chunk"
	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

const testSide = 4

func TestEncodeDecodeAllSameChunk(t *testing.T) {
	c := chunk.NewSameFilled(spatial.Vec3i{}, testSide, 2)
	blob, err := EncodeChunk(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := DecodeChunk(blob, testSide*testSide*testSide)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Fill.Kind != chunk.FillAllSame || data.Fill.Uniform != 2 {
		t.Fatalf("got %+v", data.Fill)
	}
}

func TestEncodeDecodeDefaultChunkRoundTrips(t *testing.T) {
	side := testSide
	ids := make([]voxel.Id, side*side*side)
	for i := range ids {
		switch i % 3 {
		case 0:
			ids[i] = 1
		case 1:
			ids[i] = 2
		default:
			ids[i] = voxel.Air
		}
	}
	c := chunk.FromVoxels(spatial.Vec3i{}, side, ids)

	blob, err := EncodeChunk(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := DecodeChunk(blob, side*side*side)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Fill.Kind != chunk.FillDefault {
		t.Fatalf("expected FillDefault, got %+v", data.Fill)
	}
	if len(data.IDs) != len(ids) {
		t.Fatalf("got %d ids, want %d", len(data.IDs), len(ids))
	}
	for i, id := range ids {
		if data.IDs[i] != id {
			t.Fatalf("id %d: got %d, want %d", i, data.IDs[i], id)
		}
	}
}

func TestDecodeChunkRejectsWrongVoxelCount(t *testing.T) {
	side := testSide
	ids := make([]voxel.Id, side*side*side)
	for i := range ids {
		ids[i] = voxel.Id(i % 2)
	}
	c := chunk.FromVoxels(spatial.Vec3i{}, side, ids)
	blob, err := EncodeChunk(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeChunk(blob, side*side*side+1); err == nil {
		t.Fatal("expected frequency-count mismatch error")
	}
}

func TestDecodeChunkRejectsUnknownDiscriminant(t *testing.T) {
	if _, err := DecodeChunk([]byte{0xFF, 0, 0}, 1); err == nil {
		t.Fatal("expected unknown discriminant error")
	}
}

func TestSizesRoundTrip(t *testing.T) {
	sizes := spatial.Vec3i{X: 3, Y: 5, Z: 7}
	got, err := decodeSizes(encodeSizes(sizes))
	if err != nil {
		t.Fatalf("decodeSizes: %v", err)
	}
	if got != sizes {
		t.Fatalf("got %+v, want %+v", got, sizes)
	}
}

func TestArraySectionRoundTrip(t *testing.T) {
	blobs := [][]byte{
		{1, 2, 3},
		{4},
		{5, 6, 7, 8, 9},
	}
	assembled := assembleArraySection(blobs)
	got, err := readArraySection(assembled, len(blobs))
	if err != nil {
		t.Fatalf("readArraySection: %v", err)
	}
	for i, b := range blobs {
		if string(got[i]) != string(b) {
			t.Fatalf("blob %d: got %v, want %v", i, got[i], b)
		}
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	descs := []sectionDescriptor{
		{id: sectionSizes, offset: 16, length: 24},
		{id: sectionArray, offset: 40, length: 128},
	}
	got, err := readHeader(writeHeader(descs))
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if len(got) != len(descs) {
		t.Fatalf("got %d descriptors, want %d", len(got), len(descs))
	}
	for i, d := range descs {
		if got[i] != d {
			t.Fatalf("descriptor %d: got %+v, want %+v", i, got[i], d)
		}
	}
}
