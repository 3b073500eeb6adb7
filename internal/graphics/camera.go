package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera produces the view and projection matrices for the viewport. Yaw
// and pitch are in degrees; pitch is clamped so the view never flips.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Yaw:         -90.0,
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// SetViewport updates the aspect ratio for the given surface size.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Front returns the unit view direction derived from yaw and pitch.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// LookAt aims the camera at a world-space target point.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(d.Y()))))
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(d.Z()), float64(d.X()))))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	front := c.Front()
	return mgl32.LookAtV(c.Position, c.Position.Add(front), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
