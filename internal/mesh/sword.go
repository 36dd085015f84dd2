// Package mesh builds the sword geometry shared by every swarm instance.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"hand-sword-fx/internal/mathutil"
)

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	Verts []mathutil.Vec3
	Tris  [][3]int
}

// Sword outline dimensions, in world units.
const (
	HandleWidth  = 0.04
	GuardWidth   = 0.15
	BladeWidth   = 0.06
	HandleLength = 0.4
	BladeLength  = 1.4
	Depth        = 0.04
)

// fan centre for the cap triangulation; the outline is star-shaped about it
var capCentre = [2]float64{0, 0.05}

// Outline returns the closed sword silhouette in the XY plane, counter-clockwise,
// blade tip at +Y. The closing point is not repeated.
func Outline() [][2]float64 {
	return [][2]float64{
		{-HandleWidth, -HandleLength},
		{HandleWidth, -HandleLength},
		{HandleWidth, 0},
		{GuardWidth, 0.05},
		{BladeWidth, 0.15},
		{BladeWidth * 0.8, BladeLength * 0.8},
		{0, BladeLength},
		{-BladeWidth * 0.8, BladeLength * 0.8},
		{-BladeWidth, 0.15},
		{-GuardWidth, 0.05},
		{-HandleWidth, 0},
	}
}

// Sword extrudes the outline by Depth, centres the result on its bounding
// box and rotates it -90° about X so the blade lies along -Z.
func Sword() *Mesh {
	outline := Outline()
	n := len(outline)
	m := &Mesh{Verts: make([]mathutil.Vec3, 0, 2*n+2)}

	// front ring 0..n-1, back ring n..2n-1, then the two cap centres
	for _, p := range outline {
		m.Verts = append(m.Verts, mathutil.Vec3{p[0], p[1], 0})
	}
	for _, p := range outline {
		m.Verts = append(m.Verts, mathutil.Vec3{p[0], p[1], Depth})
	}
	front := len(m.Verts)
	m.Verts = append(m.Verts, mathutil.Vec3{capCentre[0], capCentre[1], 0})
	back := len(m.Verts)
	m.Verts = append(m.Verts, mathutil.Vec3{capCentre[0], capCentre[1], Depth})

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		// front cap faces -Z, back cap +Z
		m.Tris = append(m.Tris, [3]int{front, j, i})
		m.Tris = append(m.Tris, [3]int{back, n + i, n + j})
		// side wall quad
		m.Tris = append(m.Tris, [3]int{i, j, n + j})
		m.Tris = append(m.Tris, [3]int{i, n + j, n + i})
	}

	m.center()
	m.Transform(mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0}))
	return m
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi mathutil.Vec3) {
	if len(m.Verts) == 0 {
		return
	}
	lo, hi = m.Verts[0], m.Verts[0]
	for _, v := range m.Verts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

func (m *Mesh) center() {
	lo, hi := m.Bounds()
	c := lo.Add(hi).Mul(0.5)
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Sub(c)
	}
}

// Transform applies a rotation to every vertex in place.
func (m *Mesh) Transform(r mathutil.Quat) {
	for i, v := range m.Verts {
		m.Verts[i] = r.Rotate(v)
	}
}

// Normal returns the unit face normal of triangle i, or zero when degenerate.
func (m *Mesh) Normal(i int) mathutil.Vec3 {
	t := m.Tris[i]
	a, b, c := m.Verts[t[0]], m.Verts[t[1]], m.Verts[t[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return mathutil.Vec3{}
	}
	return n.Normalize()
}
