package primitives

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"lod-engine/internal/geom"
)

// Default resolutions, used when a definition leaves resolution at zero.
const (
	defaultCubeSubdivisions = 1
	defaultSphereSegments   = 16
	defaultCylinderSlices   = 16
	defaultPlaneSubdivision = 1
)

// builder appends counter-clockwise triangles with per-vertex normals.
type builder struct {
	g geom.Geometry
}

func (b *builder) tri(a, c, d, na, nc, nd mgl32.Vec3) {
	b.g.Positions = append(b.g.Positions, a, c, d)
	b.g.Normals = append(b.g.Normals, na, nc, nd)
}

// quad splits a-b-c-d (counter-clockwise) into two flat-shaded triangles.
func (b *builder) quad(a, c, d, e, n mgl32.Vec3) {
	b.tri(a, c, d, n, n, n)
	b.tri(a, d, e, n, n, n)
}

// Cube returns a unit cube centered at the origin, each face split into n×n quads.
func Cube(n int) *geom.Geometry {
	if n <= 0 {
		n = defaultCubeSubdivisions
	}
	faces := [6][3]mgl32.Vec3{ // normal, u, v with u×v = normal
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	var b builder
	step := 1 / float32(n)
	for _, f := range faces {
		normal, u, v := f[0], f[1], f[2]
		at := func(i, j int) mgl32.Vec3 {
			return normal.Mul(0.5).
				Add(u.Mul(float32(i)*step - 0.5)).
				Add(v.Mul(float32(j)*step - 0.5))
		}
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				b.quad(at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1), normal)
			}
		}
	}
	return &b.g
}

// Sphere returns a UV sphere of radius 0.5 with the given number of rings and
// slices. Pole bands use single triangles.
func Sphere(rings, slices int) *geom.Geometry {
	if rings < 2 {
		rings = defaultSphereSegments
	}
	if slices < 3 {
		slices = defaultSphereSegments
	}
	point := func(ring, slice int) mgl32.Vec3 {
		theta := math32.Pi * float32(ring) / float32(rings)
		phi := 2 * math32.Pi * float32(slice) / float32(slices)
		return mgl32.Vec3{
			math32.Sin(theta) * math32.Cos(phi),
			math32.Cos(theta),
			math32.Sin(theta) * math32.Sin(phi),
		}
	}
	var b builder
	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			n00, n01 := point(r, s), point(r, s+1)
			n10, n11 := point(r+1, s), point(r+1, s+1)
			switch r {
			case 0:
				b.tri(n00.Mul(0.5), n11.Mul(0.5), n10.Mul(0.5), n00, n11, n10)
			case rings - 1:
				b.tri(n00.Mul(0.5), n01.Mul(0.5), n10.Mul(0.5), n00, n01, n10)
			default:
				b.tri(n00.Mul(0.5), n01.Mul(0.5), n11.Mul(0.5), n00, n01, n11)
				b.tri(n00.Mul(0.5), n11.Mul(0.5), n10.Mul(0.5), n00, n11, n10)
			}
		}
	}
	return &b.g
}

// Cylinder returns a capped cylinder of radius 0.5 and height 1 centered at the origin.
func Cylinder(slices int) *geom.Geometry {
	if slices < 3 {
		slices = defaultCylinderSlices
	}
	up, down := mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, -1, 0}
	top, bottom := mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, -0.5, 0}
	rim := func(s int) mgl32.Vec3 {
		phi := 2 * math32.Pi * float32(s) / float32(slices)
		return mgl32.Vec3{math32.Cos(phi), 0, math32.Sin(phi)}
	}
	var b builder
	for s := 0; s < slices; s++ {
		r0, r1 := rim(s), rim(s+1)
		lo0, lo1 := r0.Mul(0.5).Add(bottom), r1.Mul(0.5).Add(bottom)
		hi0, hi1 := r0.Mul(0.5).Add(top), r1.Mul(0.5).Add(top)
		b.tri(lo0, hi1, lo1, r0, r1, r1)
		b.tri(lo0, hi0, hi1, r0, r0, r1)
		b.tri(top, hi1, hi0, up, up, up)
		b.tri(bottom, lo0, lo1, down, down, down)
	}
	return &b.g
}

// Plane returns a 1×1 plane in XZ facing +Y, split into n×n quads.
func Plane(n int) *geom.Geometry {
	if n <= 0 {
		n = defaultPlaneSubdivision
	}
	up := mgl32.Vec3{0, 1, 0}
	step := 1 / float32(n)
	at := func(i, j int) mgl32.Vec3 {
		return mgl32.Vec3{float32(i)*step - 0.5, 0, 0.5 - float32(j)*step}
	}
	var b builder
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			b.quad(at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1), up)
		}
	}
	return &b.g
}
