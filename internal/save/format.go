// Package save implements the binary, little-endian save file format:
// a header of section descriptors, a Sizes section, and an Array
// section holding one pointer-indexed, Huffman-coded blob per chunk.
package save

import (
	"encoding/binary"
	"fmt"

	"voxelarray/internal/chunk"
	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

// Section ids named in the file header. Both are required.
const (
	sectionSizes uint64 = 1
	sectionArray uint64 = 2
)

// fillDiscriminant is the one-byte tag at the start of a chunk blob.
const (
	fillDiscriminantDefault byte = 0
	fillDiscriminantAllSame byte = 1
)

// sectionDescriptor is one header entry: (section_id, absolute_offset,
// length), all u64.
type sectionDescriptor struct {
	id     uint64
	offset uint64
	length uint64
}

const sectionDescriptorSize = 8 + 8 + 8
const headerCountSize = 8

// writeHeader serializes the fixed-length descriptor table: a u64
// count followed by that many descriptors.
func writeHeader(descs []sectionDescriptor) []byte {
	buf := make([]byte, headerCountSize+len(descs)*sectionDescriptorSize)
	binary.LittleEndian.PutUint64(buf, uint64(len(descs)))
	off := headerCountSize
	for _, d := range descs {
		binary.LittleEndian.PutUint64(buf[off:], d.id)
		binary.LittleEndian.PutUint64(buf[off+8:], d.offset)
		binary.LittleEndian.PutUint64(buf[off+16:], d.length)
		off += sectionDescriptorSize
	}
	return buf
}

func readHeader(data []byte) ([]sectionDescriptor, error) {
	if len(data) < headerCountSize {
		return nil, &ReinterpretError{Reason: "truncated header count"}
	}
	count := binary.LittleEndian.Uint64(data)
	need := headerCountSize + int(count)*sectionDescriptorSize
	if len(data) < need {
		return nil, &ReinterpretError{Reason: "truncated header table"}
	}
	descs := make([]sectionDescriptor, count)
	off := headerCountSize
	for i := range descs {
		descs[i] = sectionDescriptor{
			id:     binary.LittleEndian.Uint64(data[off:]),
			offset: binary.LittleEndian.Uint64(data[off+8:]),
			length: binary.LittleEndian.Uint64(data[off+16:]),
		}
		off += sectionDescriptorSize
	}
	return descs, nil
}

func findSection(descs []sectionDescriptor, id uint64) (sectionDescriptor, error) {
	for _, d := range descs {
		if d.id == id {
			return d, nil
		}
	}
	return sectionDescriptor{}, &ReinterpretError{Reason: fmt.Sprintf("missing section %d", id)}
}

// encodeSizes serializes the Sizes section: three u64 (W, H, D).
func encodeSizes(sizes spatial.Vec3i) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint64(buf, uint64(sizes.X))
	binary.LittleEndian.PutUint64(buf[8:], uint64(sizes.Y))
	binary.LittleEndian.PutUint64(buf[16:], uint64(sizes.Z))
	return buf
}

func decodeSizes(data []byte) (spatial.Vec3i, error) {
	if len(data) < 24 {
		return spatial.Vec3i{}, &ReinterpretError{Reason: "truncated Sizes section"}
	}
	return spatial.Vec3i{
		X: int(binary.LittleEndian.Uint64(data)),
		Y: int(binary.LittleEndian.Uint64(data[8:])),
		Z: int(binary.LittleEndian.Uint64(data[16:])),
	}, nil
}

// pointerEntrySize is one (offset, length) pair in the Array section's
// pointer table.
const pointerEntrySize = 16

// assembleArraySection lays out the Array section: a volume-length
// pointer table of (offset, length) pairs, offsets absolute within
// the section, followed by the concatenated chunk blobs in
// linear-index order.
func assembleArraySection(blobs [][]byte) []byte {
	tableSize := len(blobs) * pointerEntrySize
	total := tableSize
	for _, b := range blobs {
		total += len(b)
	}
	out := make([]byte, total)

	cursor := uint64(tableSize)
	for i, b := range blobs {
		entryOff := i * pointerEntrySize
		binary.LittleEndian.PutUint64(out[entryOff:], cursor)
		binary.LittleEndian.PutUint64(out[entryOff+8:], uint64(len(b)))
		copy(out[cursor:], b)
		cursor += uint64(len(b))
	}
	return out
}

// readArraySection splits an Array section back into its per-chunk
// blobs using the pointer table.
func readArraySection(data []byte, volume int) ([][]byte, error) {
	tableSize := volume * pointerEntrySize
	if len(data) < tableSize {
		return nil, &ReinterpretError{Reason: "truncated Array pointer table"}
	}
	blobs := make([][]byte, volume)
	for i := 0; i < volume; i++ {
		entryOff := i * pointerEntrySize
		off := binary.LittleEndian.Uint64(data[entryOff:])
		length := binary.LittleEndian.Uint64(data[entryOff+8:])
		end := off + length
		if end > uint64(len(data)) || off > end {
			return nil, &ReinterpretError{Reason: fmt.Sprintf("chunk %d pointer out of range", i)}
		}
		blobs[i] = data[off:end]
	}
	return blobs, nil
}

// ChunkData is the decoded counterpart of a Chunk. IDs is populated
// only for FillDefault, nil for FillAllSame.
type ChunkData struct {
	Fill chunk.FillType
	IDs  []voxel.Id
}

// EncodeChunk serializes c's blob: a FillType discriminant, then
// either a bare id (AllSame) or a frequency table plus Huffman
// bitstream (Default).
func EncodeChunk(c *chunk.Chunk) ([]byte, error) {
	fill := c.FillType()
	if fill.Kind == chunk.FillAllSame {
		buf := make([]byte, 1+2)
		buf[0] = fillDiscriminantAllSame
		binary.LittleEndian.PutUint16(buf[1:], uint16(fill.Uniform))
		return buf, nil
	}
	return encodeDefaultChunk(c.VoxelIDs())
}

func encodeDefaultChunk(ids []voxel.Id) ([]byte, error) {
	counts := make(map[voxel.Id]uint64, 16)
	for _, id := range ids {
		counts[id]++
	}
	freqs := make([]freqEntry, 0, len(counts))
	for id, n := range counts {
		freqs = append(freqs, freqEntry{id: id, count: n})
	}
	sorted := sortedFreqs(freqs)
	lengths := codeLengths(sorted)
	codes := canonicalCodes(lengths)

	w := &bitWriter{}
	for _, id := range ids {
		c := codes[id]
		w.writeBits(c.bits, c.length)
	}
	bitstream := w.flush()

	// Frequency table: length-prefixed list of (id u16, count u64).
	freqBuf := make([]byte, 8+len(sorted)*10)
	binary.LittleEndian.PutUint64(freqBuf, uint64(len(sorted)))
	off := 8
	for _, f := range sorted {
		binary.LittleEndian.PutUint16(freqBuf[off:], uint16(f.id))
		binary.LittleEndian.PutUint64(freqBuf[off+2:], f.count)
		off += 10
	}

	buf := make([]byte, 0, 1+len(freqBuf)+len(bitstream))
	buf = append(buf, fillDiscriminantDefault)
	buf = append(buf, freqBuf...)
	buf = append(buf, bitstream...)
	return buf, nil
}

// DecodeChunk is the inverse of EncodeChunk: decode(encode(c)) == c
// for any well-formed chunk.
func DecodeChunk(blob []byte, volume int) (ChunkData, error) {
	if len(blob) < 1 {
		return ChunkData{}, &ReinterpretError{Reason: "empty chunk blob"}
	}
	switch blob[0] {
	case fillDiscriminantAllSame:
		if len(blob) < 3 {
			return ChunkData{}, &ReinterpretError{Reason: "truncated AllSame blob"}
		}
		id := voxel.Id(binary.LittleEndian.Uint16(blob[1:]))
		if !voxel.IsValid(id) {
			return ChunkData{}, &ReinterpretError{Reason: fmt.Sprintf("invalid uniform id %d", id)}
		}
		return ChunkData{Fill: chunk.FillType{Kind: chunk.FillAllSame, Uniform: id}}, nil
	case fillDiscriminantDefault:
		return decodeDefaultChunk(blob[1:], volume)
	default:
		return ChunkData{}, &ReinterpretError{Reason: fmt.Sprintf("unknown fill discriminant %d", blob[0])}
	}
}

func decodeDefaultChunk(data []byte, volume int) (ChunkData, error) {
	if len(data) < 8 {
		return ChunkData{}, &ReinterpretError{Reason: "truncated frequency table length"}
	}
	n := binary.LittleEndian.Uint64(data)
	need := 8 + int(n)*10
	if len(data) < need {
		return ChunkData{}, &ReinterpretError{Reason: "truncated frequency table"}
	}
	freqs := make([]freqEntry, n)
	off := 8
	var total uint64
	for i := range freqs {
		id := voxel.Id(binary.LittleEndian.Uint16(data[off:]))
		count := binary.LittleEndian.Uint64(data[off+2:])
		if !voxel.IsValid(id) {
			return ChunkData{}, &ReinterpretError{Reason: fmt.Sprintf("invalid frequency-table id %d", id)}
		}
		freqs[i] = freqEntry{id: id, count: count}
		total += count
		off += 10
	}
	if total != uint64(volume) {
		return ChunkData{}, &ReinterpretError{Reason: fmt.Sprintf("frequency counts sum to %d, want %d", total, volume)}
	}

	sorted := sortedFreqs(freqs)
	lengths := codeLengths(sorted)
	codes := canonicalCodes(lengths)
	trie := buildTrie(codes)

	r := &bitReader{buf: data[off:]}
	ids := make([]voxel.Id, volume)
	for i := 0; i < volume; i++ {
		sym, err := decodeSymbol(r, trie)
		if err != nil {
			return ChunkData{}, &ReinterpretError{Reason: err.Error()}
		}
		ids[i] = sym
	}
	return ChunkData{Fill: chunk.FillType{Kind: chunk.FillDefault}, IDs: ids}, nil
}
