// Package viewmatrix builds the preview camera's view-projection transform
// and projects world points to pixel coordinates.
package viewmatrix

import (
	"github.com/go-gl/mathgl/mgl64"

	"hand-sword-fx/internal/mathutil"
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	Eye    mathutil.Vec3
	Target mathutil.Vec3
	FovY   float64 // degrees
	Near   float64
	Far    float64
}

// DefaultCamera sits at (0,0,10) looking at the origin with a 60° vertical fov.
func DefaultCamera() Camera {
	return Camera{
		Eye:  mathutil.Vec3{0, 0, 10},
		FovY: 60,
		Near: 0.1,
		Far:  1000,
	}
}

// Viewport is a camera bound to an output size.
type Viewport struct {
	Camera
	Width, Height int
	viewProj      mgl64.Mat4
}

// NewViewport precomputes the combined view-projection matrix.
func NewViewport(cam Camera, w, h int) *Viewport {
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	proj := mgl64.Perspective(mathutil.Deg2Rad(cam.FovY), aspect, cam.Near, cam.Far)
	view := mgl64.LookAtV(cam.Eye, cam.Target, mathutil.Up)
	return &Viewport{Camera: cam, Width: w, Height: h, viewProj: proj.Mul4(view)}
}

// Project maps a world point to pixel coordinates. depth grows toward the
// camera (it is -w, the negated view-space z), matching a z-buffer cleared
// to -inf. ok is false for points behind the near plane.
func (vp *Viewport) Project(p mathutil.Vec3) (x, y, depth float64, ok bool) {
	c := vp.viewProj.Mul4x1(p.Vec4(1))
	w := c[3]
	if w < vp.Near {
		return 0, 0, 0, false
	}
	ndcX, ndcY := c[0]/w, c[1]/w
	x = (ndcX + 1) * 0.5 * float64(vp.Width)
	y = (1 - ndcY) * 0.5 * float64(vp.Height)
	return x, y, -w, true
}

// ViewDir returns the unit direction from p toward the eye.
func (vp *Viewport) ViewDir(p mathutil.Vec3) mathutil.Vec3 {
	d := vp.Eye.Sub(p)
	if d.Len() < 1e-12 {
		return mathutil.Vec3{0, 0, 1}
	}
	return d.Normalize()
}
