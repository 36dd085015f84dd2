package raster

import (
	"math"

	"hand-sword-fx/internal/mathutil"
)

// PointLight is an omni light; only its direction matters for flat shading.
type PointLight struct {
	Position  mathutil.Vec3
	Color     [3]float64 // linear RGB
	Intensity float64
}

// LightConfig holds the scene lighting.
type LightConfig struct {
	Ambient   float64
	Lights    []PointLight
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig is a soft ambient fill, a white key light up and to the
// right of the camera and a dim blue light from below-behind.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Ambient: 0.5,
		Lights: []PointLight{
			{Position: mathutil.Vec3{10, 10, 10}, Color: [3]float64{1, 1, 1}, Intensity: 1},
			{Position: mathutil.Vec3{-10, -10, -10}, Color: [3]float64{0, 0, 1}, Intensity: 0.5},
		},
		SpecInt:   0.9,
		SpecPow:   48,
		Exposure:  1.05,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the per-channel lighting multiplier for a face with
// unit normal n at world point p, seen along view (unit, toward the eye).
// Faces are lit double-sided.
func (lc *LightConfig) ComputeShade(n, p, view mathutil.Vec3) [3]float64 {
	shade := [3]float64{lc.Ambient, lc.Ambient, lc.Ambient}
	if n.Dot(view) < 0 {
		n = n.Mul(-1)
	}
	for _, l := range lc.Lights {
		ld := l.Position.Sub(p)
		if ld.Len() < 1e-9 {
			continue
		}
		ld = ld.Normalize()

		ndl := math.Abs(n.Dot(ld))
		ndh := n.Dot(ld.Add(view).Normalize())
		if ndh < 0 {
			ndh = 0
		}
		spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt
		for c := 0; c < 3; c++ {
			shade[c] += (ndl + spec) * l.Intensity * l.Color[c]
		}
	}
	return shade
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
