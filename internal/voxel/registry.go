package voxel

// hexToRGB converts a "#rrggbb" string to normalized RGB.
func hexToRGB(hex string) [3]float32 {
	if len(hex) < 7 || hex[0] != '#' {
		return [3]float32{1, 0, 1} // magenta for invalid
	}
	return [3]float32{
		float32(hexByte(hex[1:3])) / 255.0,
		float32(hexByte(hex[3:5])) / 255.0,
		float32(hexByte(hex[5:7])) / 255.0,
	}
}

func hexByte(s string) int {
	val := 0
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			val += int(c-'A') + 10
		}
	}
	return val
}

// Registry contains every defined voxel id. Id 0 (Air) must always be
// present and transparent.
var Registry = map[Id]Definition{
	Air: {
		Name:        "air",
		Solid:       false,
		Transparent: true,
		Color:       [3]float32{0, 0, 0},
		Opacity:     0,
	},
	1: {
		Name:          "stone",
		Solid:         true,
		Color:         hexToRGB("#7a7a7a"),
		Opacity:       1,
		Material:      MaterialStone,
		TextureTop:    0,
		TextureSide:   0,
		TextureBottom: 0,
	},
	2: {
		Name:          "dirt",
		Solid:         true,
		Color:         hexToRGB("#8b6914"),
		Opacity:       1,
		TextureTop:    1,
		TextureSide:   1,
		TextureBottom: 1,
	},
	3: {
		Name:          "grass",
		Solid:         true,
		Color:         hexToRGB("#567d46"),
		Opacity:       1,
		TextureTop:    2,
		TextureSide:   3,
		TextureBottom: 1,
	},
	4: {
		Name:          "sand",
		Solid:         true,
		Color:         hexToRGB("#e0c090"),
		Opacity:       1,
		TextureTop:    4,
		TextureSide:   4,
		TextureBottom: 4,
	},
	5: {
		Name:          "snow",
		Solid:         true,
		Color:         hexToRGB("#f0f0f0"),
		Opacity:       1,
		TextureTop:    5,
		TextureSide:   5,
		TextureBottom: 5,
	},
	6: {
		Name:          "water",
		Solid:         false,
		Transparent:   true,
		Liquid:        true,
		Color:         hexToRGB("#3498db"),
		Opacity:       0.6,
		Material:      MaterialLiquid,
		TextureTop:    6,
		TextureSide:   6,
		TextureBottom: 6,
	},
	7: {
		Name:          "glass",
		Solid:         true,
		Transparent:   true,
		Color:         hexToRGB("#c8dbe0"),
		Opacity:       0.3,
		Material:      MaterialGlass,
		TextureTop:    7,
		TextureSide:   7,
		TextureBottom: 7,
	},
	8: {
		Name:          "wood",
		Solid:         true,
		Color:         hexToRGB("#8b5a2b"),
		Opacity:       1,
		TextureTop:    8,
		TextureSide:   8,
		TextureBottom: 8,
	},
	9: {
		Name:          "leaves",
		Solid:         true,
		Transparent:   true,
		Color:         hexToRGB("#228b22"),
		Opacity:       0.9,
		Material:      MaterialFoliage,
		TextureTop:    9,
		TextureSide:   9,
		TextureBottom: 9,
	},
	10: {
		Name:          "cobblestone",
		Solid:         true,
		Color:         hexToRGB("#5a5a5a"),
		Opacity:       1,
		TextureTop:    10,
		TextureSide:   10,
		TextureBottom: 10,
	},
	11: {
		Name:          "bedrock",
		Solid:         true,
		Color:         hexToRGB("#1a1a1a"),
		Opacity:       1,
		TextureTop:    11,
		TextureSide:   11,
		TextureBottom: 11,
	},
}
