package noise

// FBMConfig shapes the octave accumulation: how many layers, how
// frequency and amplitude change per layer, and the base sampling
// scale.
type FBMConfig struct {
	Octaves     int
	Lacunarity  float64 // frequency multiplier per octave
	Persistence float64 // amplitude multiplier per octave
	Scale       float64
	OffsetX     float64
	OffsetZ     float64
}

// DefaultFBMConfig returns the reference terrain parameters.
func DefaultFBMConfig() FBMConfig {
	return FBMConfig{
		Octaves:     6,
		Lacunarity:  2.0,
		Persistence: 0.5,
		Scale:       1.0,
	}
}

// FBM accumulates several octaves of simplex noise into fractal
// Brownian motion, the standard basis for natural-looking height
// fields.
type FBM struct {
	Config FBMConfig
}

// NewFBM creates an FBM accumulator with the given configuration.
func NewFBM(config FBMConfig) *FBM {
	return &FBM{Config: config}
}

// Sample2D returns octave-summed noise at (x, z), normalized to the
// approximate range [-1, 1].
func (f *FBM) Sample2D(noise *SimplexNoise, x, z float64) float64 {
	value := 0.0
	amplitude := 1.0
	frequency := f.Config.Scale
	maxValue := 0.0

	for i := 0; i < f.Config.Octaves; i++ {
		value += amplitude * noise.Noise2D(
			(x+f.Config.OffsetX)*frequency,
			(z+f.Config.OffsetZ)*frequency,
		)
		maxValue += amplitude
		amplitude *= f.Config.Persistence
		frequency *= f.Config.Lacunarity
	}

	return value / maxValue
}

// Sample3D returns octave-summed noise at (x, y, z), normalized to the
// approximate range [-1, 1].
func (f *FBM) Sample3D(noise *SimplexNoise, x, y, z float64) float64 {
	value := 0.0
	amplitude := 1.0
	frequency := f.Config.Scale
	maxValue := 0.0

	for i := 0; i < f.Config.Octaves; i++ {
		value += amplitude * noise.Noise3D(
			(x+f.Config.OffsetX)*frequency,
			y*frequency,
			(z+f.Config.OffsetZ)*frequency,
		)
		maxValue += amplitude
		amplitude *= f.Config.Persistence
		frequency *= f.Config.Lacunarity
	}

	return value / maxValue
}
