package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"
)

// TextureManager owns the block texture array the full-detail shader
// samples: one layer per atlas index the voxel registry references.
type TextureManager struct {
	BlockTextureArray uint32
	TextureSize       int32
}

// NewTextureManager creates a texture manager with the standard
// 16x16-pixel block texture size.
func NewTextureManager() *TextureManager {
	return &TextureManager{TextureSize: 16}
}

// LoadBlockTextures loads image files from disk into a 2D texture
// array, one file per layer in list order. A file that fails to load
// gets a magenta placeholder layer so a missing asset is visible
// instead of fatal.
func (tm *TextureManager) LoadBlockTextures(files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("render: no texture files to load")
	}

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, textureID)

	mipLevels := int32(1)
	for size := tm.TextureSize; size > 1; size /= 2 {
		mipLevels++
	}
	gl.TexStorage3D(gl.TEXTURE_2D_ARRAY, mipLevels, gl.RGBA8, tm.TextureSize, tm.TextureSize, int32(len(files)))

	for i, file := range files {
		rgba, err := loadLayerImage(file, int(tm.TextureSize))
		if err != nil {
			fmt.Printf("[TextureManager] %s: %v, using placeholder\n", file, err)
			rgba = placeholderLayer(int(tm.TextureSize))
		}
		gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0, 0, 0, int32(i), tm.TextureSize, tm.TextureSize, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}

	gl.GenerateMipmap(gl.TEXTURE_2D_ARRAY)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.NEAREST_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.REPEAT)

	tm.BlockTextureArray = textureID
	return nil
}

// BindBlockTextures binds the texture array to a texture unit.
func (tm *TextureManager) BindBlockTextures(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, tm.BlockTextureArray)
}

// Cleanup releases the texture array.
func (tm *TextureManager) Cleanup() {
	if tm.BlockTextureArray != 0 {
		gl.DeleteTextures(1, &tm.BlockTextureArray)
		tm.BlockTextureArray = 0
	}
}

// loadLayerImage decodes a file and scales it to size x size RGBA.
// Nearest-neighbor keeps pixel-art textures crisp when the source size
// doesn't match the layer size.
func loadLayerImage(path string, size int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}

func placeholderLayer(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	magenta := color.RGBA{255, 0, 255, 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, magenta)
		}
	}
	return img
}
