package camera

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Placer is a transform the orbit controller can move.
type Placer interface {
	SetPosition(world math.Vec3)
	SetRotation(world math.Quat)
}

// Orbit orbits a camera transform around a center point.
type Orbit struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit controller with default settings.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        10.0,
		RotationX:       0.5,
		RotationY:       0.0,
		MinDistance:     1.0,
		MaxDistance:     500.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// offset is the vector from the center to the eye.
func (o *Orbit) offset() math.Vec3 {
	cp := math32.Cos(o.RotationX)
	return math.Vec3{
		X: o.Distance * cp * math32.Sin(o.RotationY),
		Y: o.Distance * math32.Sin(o.RotationX),
		Z: o.Distance * cp * math32.Cos(o.RotationY),
	}
}

// Position returns the eye position in world space.
func (o *Orbit) Position() math.Vec3 {
	return o.Center.Add(o.offset())
}

// Rotation returns the orientation whose forward axis points at the center.
func (o *Orbit) Rotation() math.Quat {
	return math.QuatFromEuler(o.RotationX, o.RotationY+gomath.Pi, 0)
}

// Apply moves t to the orbit pose.
func (o *Orbit) Apply(t Placer) {
	t.SetPosition(o.Position())
	t.SetRotation(o.Rotation())
}

// HandleDrag updates rotation based on mouse drag delta.
func (o *Orbit) HandleDrag(deltaX, deltaY float32) {
	o.RotationY -= deltaX * o.DragSensitivity
	o.RotationX += deltaY * o.DragSensitivity
	o.RotationX = math32.Min(math32.Max(o.RotationX, o.MinPitch), o.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.Distance = math32.Min(math32.Max(o.Distance, o.MinDistance), o.MaxDistance)
}

// HandleMovement pans the center point on the XZ plane relative to the current yaw.
func (o *Orbit) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := o.Distance * 0.01

	dirX := math32.Sin(o.RotationY)
	dirZ := math32.Cos(o.RotationY)

	// The eye looks along -offset; right is up x forward.
	o.Center.X += (-dirX*forward - dirZ*right) * speed
	o.Center.Z += (-dirZ*forward + dirX*right) * speed
	o.Center.Y += up * speed
}

// FitToBounds centers on the box and backs off far enough to see it.
func (o *Orbit) FitToBounds(box math.AABB) {
	o.Center = box.Center()

	size := box.Extents().Scale(2)
	o.Distance = math32.Max(math32.Max(size.X, size.Z), size.Y) * 1.5
	o.Distance = math32.Min(math32.Max(o.Distance, o.MinDistance), o.MaxDistance)

	o.RotationX = 0.6 // Look down at ~35 degrees
	o.RotationY = 0.0
}
