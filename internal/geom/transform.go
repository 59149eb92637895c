// Package geom holds the geometry helpers used for visibility decisions:
// transforms, bounding spheres, view frustums, screen-space size estimation and
// triangle geometry with stride decimation.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a node's position, rotation and scale in world space.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// Identity returns a transform at the origin with no rotation and unit scale.
func Identity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// At returns an identity transform moved to p.
func At(p mgl32.Vec3) Transform {
	t := Identity()
	t.Position = p
	return t
}

// Matrix returns translate * rotate * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	rot := t.rotation().Mat4()
	s := t.scale()
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// Apply maps a local-space point into world space.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	s := t.scale()
	scaled := mgl32.Vec3{p[0] * s[0], p[1] * s[1], p[2] * s[2]}
	return t.rotation().Rotate(scaled).Add(t.Position)
}

// MaxScale returns the largest absolute scale component.
func (t Transform) MaxScale() float32 {
	s := t.scale()
	return math32.Max(math32.Abs(s[0]), math32.Max(math32.Abs(s[1]), math32.Abs(s[2])))
}

// scale treats an all-zero scale (a zero-value Transform) as unit scale.
func (t Transform) scale() mgl32.Vec3 {
	if t.Scale == (mgl32.Vec3{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return t.Scale
}

// rotation treats the zero quaternion as identity.
func (t Transform) rotation() mgl32.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	return t.Rotation
}
