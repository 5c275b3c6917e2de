package save

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"voxelarray/internal/chunk"
	"voxelarray/internal/gfx"
	"voxelarray/internal/spatial"
)

// Manager reads and writes save files under a fixed directory.
type Manager struct {
	saveDir string
}

// NewManager builds a Manager rooted at saveDir, creating it if
// necessary.
func NewManager(saveDir string) (*Manager, error) {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return nil, fmt.Errorf("save: create save dir: %w", err)
	}
	return &Manager{saveDir: saveDir}, nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.saveDir, name+".vxa")
}

// SaveToFile encodes sizes and every chunk in chunks (in linear grid
// order) into the named save file. Every chunk must already be
// generated; otherwise SaveToFile fails with NotAllGeneratedError.
// Per-chunk blob encoding runs concurrently via errgroup.
func (m *Manager) SaveToFile(sizes spatial.Vec3i, chunks []*chunk.Chunk, name string, observer gfx.LoadingObserver) error {
	var loading gfx.Loading
	if observer != nil {
		loading = observer.StartNew(fmt.Sprintf("Saving %s", name))
	}

	notGenerated := 0
	for _, c := range chunks {
		if !c.Generated() {
			notGenerated++
		}
	}
	if notGenerated > 0 {
		return &NotAllGeneratedError{Count: notGenerated}
	}

	blobs := make([][]byte, len(chunks))
	var mu sync.Mutex
	done := 0

	g := new(errgroup.Group)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			blob, err := EncodeChunk(c)
			if err != nil {
				return fmt.Errorf("save: encode chunk %d: %w", i, err)
			}
			blobs[i] = blob
			if loading != nil {
				mu.Lock()
				done++
				loading.Refresh(float64(done) / float64(len(chunks)))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sizesBlob := encodeSizes(sizes)
	arrayBlob := assembleArraySection(blobs)

	descs := []sectionDescriptor{
		{id: sectionSizes, length: uint64(len(sizesBlob))},
		{id: sectionArray, length: uint64(len(arrayBlob))},
	}
	header := writeHeader(descs)
	// Offsets are absolute from the start of the file; the header's
	// own length must be known before descs can record them, so lay
	// out the header once with placeholder offsets, then rewrite it
	// at its final size (the header's size never depends on content).
	sizesOff := uint64(len(header))
	arrayOff := sizesOff + uint64(len(sizesBlob))
	descs[0].offset = sizesOff
	descs[1].offset = arrayOff
	header = writeHeader(descs)

	out := make([]byte, 0, len(header)+len(sizesBlob)+len(arrayBlob))
	out = append(out, header...)
	out = append(out, sizesBlob...)
	out = append(out, arrayBlob...)

	tmp := m.path(name) + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("save: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, m.path(name)); err != nil {
		return fmt.Errorf("save: finalize %s: %w", name, err)
	}
	return nil
}

// ReadFromFile decodes the named save file back into its grid sizes
// and per-chunk data, in linear grid order. chunkSide is the caller's
// configured chunk side length; the file carries only the grid
// dimensions. A corrupt or foreign file fails with a
// *ReinterpretError. Per-chunk blob decoding runs concurrently via
// errgroup.
func (m *Manager) ReadFromFile(name string, chunkSide int, observer gfx.LoadingObserver) (spatial.Vec3i, []ChunkData, error) {
	var loading gfx.Loading
	if observer != nil {
		loading = observer.StartNew(fmt.Sprintf("Loading %s", name))
	}

	raw, err := os.ReadFile(m.path(name))
	if err != nil {
		return spatial.Vec3i{}, nil, fmt.Errorf("save: read %s: %w", name, err)
	}

	descs, err := readHeader(raw)
	if err != nil {
		return spatial.Vec3i{}, nil, err
	}
	sizesDesc, err := findSection(descs, sectionSizes)
	if err != nil {
		return spatial.Vec3i{}, nil, err
	}
	arrayDesc, err := findSection(descs, sectionArray)
	if err != nil {
		return spatial.Vec3i{}, nil, err
	}
	if uint64(len(raw)) < sizesDesc.offset+sizesDesc.length || uint64(len(raw)) < arrayDesc.offset+arrayDesc.length {
		return spatial.Vec3i{}, nil, &ReinterpretError{Reason: "section extends past end of file"}
	}

	sizes, err := decodeSizes(raw[sizesDesc.offset : sizesDesc.offset+sizesDesc.length])
	if err != nil {
		return spatial.Vec3i{}, nil, err
	}
	volume := sizes.X * sizes.Y * sizes.Z

	arrayData := raw[arrayDesc.offset : arrayDesc.offset+arrayDesc.length]
	blobs, err := readArraySection(arrayData, volume)
	if err != nil {
		return spatial.Vec3i{}, nil, err
	}

	chunkVolume := chunkSide * chunkSide * chunkSide
	results := make([]ChunkData, volume)
	var mu sync.Mutex
	done := 0

	g := new(errgroup.Group)
	for i, blob := range blobs {
		i, blob := i, blob
		g.Go(func() error {
			data, err := DecodeChunk(blob, chunkVolume)
			if err != nil {
				return fmt.Errorf("save: decode chunk %d: %w", i, err)
			}
			results[i] = data
			if loading != nil {
				mu.Lock()
				done++
				loading.Refresh(float64(done) / float64(volume))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return spatial.Vec3i{}, nil, err
	}
	return sizes, results, nil
}
