// Package raster is a software renderer for swarm frames: flat-shaded
// swords over an optional backdrop sprite.
package raster

import (
	"image"
	"math"

	"hand-sword-fx/internal/mathutil"
	"hand-sword-fx/internal/mesh"
	"hand-sword-fx/internal/swarm"
	"hand-sword-fx/internal/viewmatrix"
)

// Scene is everything that stays fixed across frames.
type Scene struct {
	Mesh       *mesh.Mesh
	Camera     viewmatrix.Camera
	Light      LightConfig
	Background [4]uint8
	Backdrop   *Backdrop // optional
}

// DefaultScene renders the sword mesh from the default camera on a
// near-black background.
func DefaultScene() Scene {
	return Scene{
		Mesh:       mesh.Sword(),
		Camera:     viewmatrix.DefaultCamera(),
		Light:      DefaultLightConfig(),
		Background: [4]uint8{5, 5, 5, 255},
	}
}

// Renderer owns a frame buffer and scratch space. It is not safe for
// concurrent use; give each worker its own.
type Renderer struct {
	scene   Scene
	vp      *viewmatrix.Viewport
	fb      *FrameBuffer
	normals []mathutil.Vec3
	world   []mathutil.Vec3
	proj    []Vertex
	clipped []bool
}

// NewRenderer binds a scene to an output size.
func NewRenderer(scene Scene, w, h int) *Renderer {
	r := &Renderer{
		scene: scene,
		vp:    viewmatrix.NewViewport(scene.Camera, w, h),
		fb:    NewFrameBuffer(w, h),
	}
	if m := scene.Mesh; m != nil {
		r.normals = make([]mathutil.Vec3, len(m.Tris))
		for i := range m.Tris {
			r.normals[i] = m.Normal(i)
		}
		r.world = make([]mathutil.Vec3, len(m.Verts))
		r.proj = make([]Vertex, len(m.Verts))
		r.clipped = make([]bool, len(m.Verts))
	}
	return r
}

// Render draws f and returns a new image.
func (r *Renderer) Render(f *swarm.Frame) *image.NRGBA {
	r.fb.Clear(r.scene.Background)
	if r.scene.Mesh != nil {
		for i := range f.Instances {
			r.drawInstance(&f.Instances[i])
		}
	}
	if r.scene.Backdrop != nil {
		r.scene.Backdrop.draw(r, f.Time)
	}
	return r.fb.Image()
}

func (r *Renderer) drawInstance(inst *swarm.Instance) {
	m := r.scene.Mesh
	rot := inst.Orientation
	model := inst.Matrix()
	for i, v := range m.Verts {
		w := model.Mul4x1(v.Vec4(1)).Vec3()
		r.world[i] = w
		x, y, z, ok := r.vp.Project(w)
		r.proj[i] = Vertex{X: x, Y: y, Z: z}
		r.clipped[i] = !ok
	}

	cr, cg, cb, _ := inst.Color.RGBA8()
	s := Surface{Color: [4]uint8{cr, cg, cb, 255}, Blend: Opaque}
	for ti, tri := range m.Tris {
		if r.clipped[tri[0]] || r.clipped[tri[1]] || r.clipped[tri[2]] {
			continue
		}
		n := rot.Rotate(r.normals[ti])
		if n.Len() < 1e-9 {
			continue
		}
		c := r.world[tri[0]].Add(r.world[tri[1]]).Add(r.world[tri[2]]).Mul(1.0 / 3)
		s.Shade = r.scene.Light.ComputeShade(n, c, r.vp.ViewDir(c))
		RasterizeTriangle(r.fb, [3]Vertex{r.proj[tri[0]], r.proj[tri[1]], r.proj[tri[2]]}, &s, &r.scene.Light)
	}
}

// drawWorld projects and rasterizes a world-space triangle.
func (r *Renderer) drawWorld(p [3]mathutil.Vec3, uv [3][2]float64, s *Surface) {
	var v [3]Vertex
	for i := range p {
		x, y, z, ok := r.vp.Project(p[i])
		if !ok {
			return
		}
		v[i] = Vertex{X: x, Y: y, Z: z, U: uv[i][0], V: uv[i][1]}
	}
	RasterizeTriangle(r.fb, v, s, &r.scene.Light)
}

// Backdrop is a camera-facing character sprite with a soft ground shadow,
// bobbing slowly.
type Backdrop struct {
	Sprite       *image.NRGBA // nil draws only the shadow
	Size         float64
	ShadowRadius float64
	Segments     int
}

// NewBackdrop returns a 4×4 unit sprite with a 1.5 unit shadow.
func NewBackdrop(sprite *image.NRGBA) *Backdrop {
	return &Backdrop{Sprite: sprite, Size: 4, ShadowRadius: 1.5, Segments: 32}
}

// Bob returns the vertical offset of the backdrop group at t seconds.
func Bob(t float64) float64 {
	return -0.5 + math.Sin(t)*0.05
}

func (b *Backdrop) draw(r *Renderer, t float64) {
	base := Bob(t)

	shadow := Surface{Color: [4]uint8{0, 0, 0, 128}, Blend: Alpha}
	cy := base - 1
	centre := mathutil.Vec3{0, cy, 0}
	for i := 0; i < b.Segments; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(b.Segments)
		a1 := 2 * math.Pi * float64(i+1) / float64(b.Segments)
		p0 := mathutil.Vec3{math.Cos(a0) * b.ShadowRadius, cy, -math.Sin(a0) * b.ShadowRadius}
		p1 := mathutil.Vec3{math.Cos(a1) * b.ShadowRadius, cy, -math.Sin(a1) * b.ShadowRadius}
		r.drawWorld([3]mathutil.Vec3{centre, p0, p1}, [3][2]float64{}, &shadow)
	}

	if b.Sprite == nil {
		return
	}
	h := b.Size / 2
	sy := base + 1
	tl := mathutil.Vec3{-h, sy + h, 0}
	tr := mathutil.Vec3{h, sy + h, 0}
	bl := mathutil.Vec3{-h, sy - h, 0}
	br := mathutil.Vec3{h, sy - h, 0}
	sprite := Surface{Tex: b.Sprite, Blend: Alpha}
	r.drawWorld([3]mathutil.Vec3{tl, tr, br}, [3][2]float64{{0, 0}, {1, 0}, {1, 1}}, &sprite)
	r.drawWorld([3]mathutil.Vec3{tl, br, bl}, [3][2]float64{{0, 0}, {1, 1}, {0, 1}}, &sprite)
}
