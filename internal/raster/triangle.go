package raster

import (
	"image"
	"math"
)

// Vertex is a projected vertex: pixel position, depth (larger is nearer)
// and texture coordinates.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Blend selects how a surface is written to the frame buffer.
type Blend uint8

const (
	// Opaque surfaces are lit, tone mapped and write depth.
	Opaque Blend = iota
	// Alpha surfaces are unlit and composited over the buffer with their
	// alpha. Texels above the cutoff write depth.
	Alpha
)

// Surface describes how a triangle is colored.
type Surface struct {
	Tex   *image.NRGBA // optional; sampled with the vertex UVs
	Color [4]uint8     // sRGB base color, used when Tex is nil
	Shade [3]float64   // per-channel lighting for Opaque surfaces
	Blend Blend
}

// alpha below this is treated as empty
const alphaCutoff = 8

// RasterizeTriangle rasterizes a single triangle with a z-buffer, flat
// lighting, sRGB-correct shading and ACES tone mapping.
//
// Hot path: no allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, v [3]Vertex, s *Surface, lc *LightConfig) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Opaque surfaces without a texture shade to a single color per face.
	var flatR, flatG, flatB uint8
	if s.Blend == Opaque && s.Tex == nil {
		flatR, flatG, flatB = shadePixel(s.Color[0], s.Color[1], s.Color[2], &s.Shade, lc)
	}

	for sy := minY; sy <= maxY; sy++ {
		// sample at pixel centres
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := s.Color[0], s.Color[1], s.Color[2], s.Color[3]
			if s.Tex != nil {
				u := w0*v[0].U + w1*v[1].U + w2*v[2].U
				tv := w0*v[0].V + w1*v[1].V + w2*v[2].V
				cr, cg, cb, ca = SampleTexture(s.Tex, u, tv)
			}
			if ca < alphaCutoff {
				continue
			}

			pxIdx := zIdx * 4
			switch s.Blend {
			case Alpha:
				a := float64(ca) / 255
				fb.Color[pxIdx] = clamp255(float64(cr)*a + float64(fb.Color[pxIdx])*(1-a))
				fb.Color[pxIdx+1] = clamp255(float64(cg)*a + float64(fb.Color[pxIdx+1])*(1-a))
				fb.Color[pxIdx+2] = clamp255(float64(cb)*a + float64(fb.Color[pxIdx+2])*(1-a))
				if ca > fb.Color[pxIdx+3] {
					fb.Color[pxIdx+3] = ca
				}
				if ca == 255 {
					fb.ZBuf[zIdx] = z
				}
			default:
				fb.ZBuf[zIdx] = z
				if s.Tex != nil {
					flatR, flatG, flatB = shadePixel(cr, cg, cb, &s.Shade, lc)
				}
				fb.Color[pxIdx] = flatR
				fb.Color[pxIdx+1] = flatG
				fb.Color[pxIdx+2] = flatB
				fb.Color[pxIdx+3] = 255
			}
		}
	}
}

// shadePixel decodes sRGB, applies lighting and exposure, tone maps and
// re-encodes.
func shadePixel(r, g, b uint8, shade *[3]float64, lc *LightConfig) (uint8, uint8, uint8) {
	lr := srgbToLinear[r] * shade[0] * lc.Exposure
	lg := srgbToLinear[g] * shade[1] * lc.Exposure
	lb := srgbToLinear[b] * shade[2] * lc.Exposure

	fr := math.Pow(ACESTonemap(lr), lc.InvGamma)
	fg := math.Pow(ACESTonemap(lg), lc.InvGamma)
	fb := math.Pow(ACESTonemap(lb), lc.InvGamma)
	return clamp255(fr * 255), clamp255(fg * 255), clamp255(fb * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
