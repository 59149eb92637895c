package geom

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoGeometry is returned when a bounding volume cannot be computed yet,
// e.g. because the vertex data is still streaming in.
var ErrNoGeometry = errors.New("geom: no vertex data")

// Geometry is a non-indexed triangle list: every three positions form a triangle.
// Normals, when present, are parallel to Positions.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
}

// TriangleCount returns the number of complete triangles.
func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 3
}

// BoundingSphere returns a sphere centered on the bounding box center with the
// radius of the farthest vertex.
func (g *Geometry) BoundingSphere() (Sphere, error) {
	if g == nil || len(g.Positions) == 0 {
		return Sphere{}, ErrNoGeometry
	}
	lo, hi := g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], p[i])
			hi[i] = math32.Max(hi[i], p[i])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	var r2 float32
	for _, p := range g.Positions {
		d := p.Sub(center)
		r2 = math32.Max(r2, d.Dot(d))
	}
	return Sphere{Center: center, Radius: math32.Sqrt(r2)}, nil
}

// Decimate keeps roughly ratio of the triangles by taking every n-th one, with
// n = round(1/ratio). It is a uniform stride reduction, not a quality
// simplification. ratio >= 1 returns a copy; a non-empty geometry always keeps
// at least one triangle.
func (g *Geometry) Decimate(ratio float32) *Geometry {
	if g == nil {
		return nil
	}
	tris := g.TriangleCount()
	if ratio >= 1 || tris == 0 {
		return g.clone()
	}
	if ratio <= 0 {
		ratio = 1 / float32(tris)
	}
	stride := int(math32.Round(1 / ratio))
	if stride < 1 {
		stride = 1
	}
	hasNormals := len(g.Normals) == len(g.Positions)
	out := &Geometry{Positions: make([]mgl32.Vec3, 0, (tris/stride+1)*3)}
	if hasNormals {
		out.Normals = make([]mgl32.Vec3, 0, cap(out.Positions))
	}
	for t := 0; t < tris; t += stride {
		i := t * 3
		out.Positions = append(out.Positions, g.Positions[i:i+3]...)
		if hasNormals {
			out.Normals = append(out.Normals, g.Normals[i:i+3]...)
		}
	}
	return out
}

func (g *Geometry) clone() *Geometry {
	out := &Geometry{Positions: append([]mgl32.Vec3(nil), g.Positions[:g.TriangleCount()*3]...)}
	if len(g.Normals) == len(g.Positions) {
		out.Normals = append([]mgl32.Vec3(nil), g.Normals[:len(out.Positions)]...)
	}
	return out
}
