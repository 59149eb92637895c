package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Transform returns the sphere in the space of t. The radius grows with the
// largest scale axis so the result still bounds non-uniformly scaled geometry.
func (s Sphere) Transform(t Transform) Sphere {
	return Sphere{
		Center: t.Apply(s.Center),
		Radius: s.Radius * t.MaxScale(),
	}
}

// Plane is n·p + D = 0 with a unit normal pointing into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

// Frustum is the six clip planes of a camera: left, right, bottom, top, near, far.
type Frustum [6]Plane

// FrustumFromMatrix extracts the planes of a combined projection * view matrix
// (OpenGL clip conventions, as produced by mgl32.Perspective).
func FrustumFromMatrix(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	raw := [6]mgl32.Vec4{
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
		r3.Add(r2),
		r3.Sub(r2),
	}
	var f Frustum
	for i, v := range raw {
		n := mgl32.Vec3{v[0], v[1], v[2]}
		l := n.Len()
		if l == 0 {
			continue
		}
		f[i] = Plane{Normal: n.Mul(1 / l), D: v[3] / l}
	}
	return f
}

// IntersectsSphere reports whether any part of s lies inside the frustum.
func (f Frustum) IntersectsSphere(s Sphere) bool {
	for _, p := range f {
		if p.Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether v lies inside the frustum.
func (f Frustum) ContainsPoint(v mgl32.Vec3) bool {
	return f.IntersectsSphere(Sphere{Center: v})
}

// ScreenSize estimates the on-screen height in pixels of a sphere of the given
// radius seen at distance by a perspective camera with vertical field of view
// fovY (degrees) and a viewport viewportHeight pixels tall. A non-positive
// distance means the camera is inside the sphere and returns MaxFloat32.
func ScreenSize(radius, distance, fovY, viewportHeight float32) float32 {
	if distance <= 0 {
		return math32.MaxFloat32
	}
	visibleHeight := 2 * math32.Tan(mgl32.DegToRad(fovY)/2) * distance
	if visibleHeight <= 0 {
		return math32.MaxFloat32
	}
	return (radius * 2 / visibleHeight) * viewportHeight
}
