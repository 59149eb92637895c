package scenegraph

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera looking from Eye at Target.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32 // vertical field of view, degrees
	Near   float32
	Far    float32
	Width  float32 // viewport size in pixels
	Height float32
}

// NewCamera returns a camera at eye looking at target with a 45° field of view
// over a 1280x720 viewport.
func NewCamera(eye, target mgl32.Vec3) *Camera {
	return &Camera{
		Eye:    eye,
		Target: target,
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   45,
		Near:   0.1,
		Far:    1000,
		Width:  1280,
		Height: 720,
	}
}

// Position returns the camera's world position.
func (c *Camera) Position() mgl32.Vec3 { return c.Eye }

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 { return c.FovY }

// ViewportHeight returns the viewport height in pixels.
func (c *Camera) ViewportHeight() float32 { return c.Height }

// ViewMatrix returns the world-to-camera (world inverse) matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = c.Width / c.Height
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}
