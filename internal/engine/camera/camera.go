// Package camera provides the scene camera component and an orbit controller.
package camera

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/picking"
	"github.com/Faultbox/midgard-scene/internal/engine/viewport"
	"github.com/Faultbox/midgard-scene/pkg/formats"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// ComponentName is the tag the camera is registered under.
const ComponentName = "Camera"

// MinNearPlane is the smallest accepted near plane distance.
const MinNearPlane float32 = 0.01

// Defaults for a new camera.
const (
	DefaultNearPlane float32 = 0.3
	DefaultFarPlane  float32 = 1000
	DefaultFOVDeg    float32 = 90
)

// DefaultClearColor is cornflower blue.
var DefaultClearColor = [4]float32{0.396, 0.611, 0.937, 1}

// baseViewEye is the fixed reference eye of the base view matrix.
var baseViewEye = math.Vec3{Z: -0.3}

// Projection is the camera projection kind.
type Projection uint8

const (
	Perspective Projection = iota
	Orthographic
)

// String returns the projection name.
func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Projection(%d)", uint8(p))
	}
}

// TransformSource provides the world-space pose the camera looks from.
type TransformSource interface {
	Position() math.Vec3
	Rotation() math.Quat
}

// Options configures a camera at construction.
type Options struct {
	// ReverseZ maps the near plane to depth 1 and the far plane to depth 0.
	ReverseZ bool
	Logger   *zap.Logger
}

// derived is the state recomputed together whenever the camera is dirty.
type derived struct {
	baseView          math.Mat4
	view              math.Mat4
	projection        math.Mat4
	viewProjection    math.Mat4
	invViewProjection math.Mat4
	frustum           math.Frustum
}

// Camera is a component that turns a transform and viewport into view and projection
// matrices. Derived matrices are recomputed lazily, at most once per change.
type Camera struct {
	transform TransformSource
	viewport  viewport.Provider
	reverseZ  bool
	log       *zap.Logger

	near       float32
	far        float32
	projection Projection
	fovH       float32 // radians
	clearColor [4]float32

	initialized  bool
	dirty        bool
	lastPosition math.Vec3
	lastRotation math.Quat
	lastViewport viewport.Rect

	state      derived
	recomputes int
}

// New creates a camera with default parameters.
func New(transform TransformSource, vp viewport.Provider, opts Options) *Camera {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Camera{
		transform:  transform,
		viewport:   vp,
		reverseZ:   opts.ReverseZ,
		log:        log,
		near:       DefaultNearPlane,
		far:        DefaultFarPlane,
		projection: Perspective,
		fovH:       math.DegToRad(DefaultFOVDeg),
		clearColor: DefaultClearColor,
		dirty:      true,
	}
}

// ComponentName implements entity.Component.
func (c *Camera) ComponentName() string {
	return ComponentName
}

// NearPlane returns the near plane distance.
func (c *Camera) NearPlane() float32 { return c.near }

// FarPlane returns the far plane distance.
func (c *Camera) FarPlane() float32 { return c.far }

// Projection returns the projection kind.
func (c *Camera) Projection() Projection { return c.projection }

// FOVHorizontal returns the horizontal field of view in radians.
func (c *Camera) FOVHorizontal() float32 { return c.fovH }

// FOVHorizontalDeg returns the horizontal field of view in degrees.
func (c *Camera) FOVHorizontalDeg() float32 { return math.RadToDeg(c.fovH) }

// ClearColor returns the RGBA clear color.
func (c *Camera) ClearColor() [4]float32 { return c.clearColor }

// ReverseZ reports the depth convention.
func (c *Camera) ReverseZ() bool { return c.reverseZ }

// SetNearPlane sets the near plane, clamped to MinNearPlane.
func (c *Camera) SetNearPlane(v float32) {
	c.near = math32.Max(v, MinNearPlane)
	c.dirty = true
}

// SetFarPlane sets the far plane.
func (c *Camera) SetFarPlane(v float32) {
	c.far = v
	c.dirty = true
}

// SetProjection sets the projection kind.
func (c *Camera) SetProjection(p Projection) {
	c.projection = p
	c.dirty = true
}

// SetFOVHorizontalDeg sets the horizontal field of view in degrees.
func (c *Camera) SetFOVHorizontalDeg(deg float32) {
	c.fovH = math.DegToRad(deg)
	c.dirty = true
}

// SetClearColor sets the RGBA clear color. Matrices are unaffected.
func (c *Camera) SetClearColor(rgba [4]float32) {
	c.clearColor = rgba
}

// Recomputes returns how many times derived state has been rebuilt.
func (c *Camera) Recomputes() int {
	return c.recomputes
}

// Tick compares the transform and viewport against the cached inputs and rebuilds
// derived state if anything changed.
func (c *Camera) Tick() {
	pos := c.transform.Position()
	rot := c.transform.Rotation()
	vp := c.viewport.Viewport()

	if !c.initialized || pos != c.lastPosition || rot != c.lastRotation || vp != c.lastViewport {
		c.dirty = true
	}
	if !c.dirty {
		return
	}

	c.lastPosition = pos
	c.lastRotation = rot
	c.lastViewport = vp
	c.state = c.compute(pos, rot, vp)
	c.initialized = true
	c.dirty = false
	c.recomputes++

	c.log.Debug("camera recomputed",
		zap.Stringer("projection", c.projection),
		zap.Float32("near", c.near),
		zap.Float32("far", c.far),
		zap.Float32("width", vp.Width),
		zap.Float32("height", vp.Height))
}

func (c *Camera) compute(pos math.Vec3, rot math.Quat, vp viewport.Rect) derived {
	var d derived
	d.baseView = math.LookAtLH(baseViewEye, baseViewEye.Add(math.Vec3Forward), math.Vec3Up)
	d.view = math.LookAtLH(pos, pos.Add(rot.Forward()), rot.Up())

	near, far := c.near, c.far
	if c.reverseZ {
		near, far = far, near
	}
	switch c.projection {
	case Orthographic:
		d.projection = math.OrthographicLH(vp.Width, vp.Height, near, far)
	default:
		// Vertical FOV from the horizontal one.
		fovV := 2 * math32.Atan(math32.Tan(c.fovH/2)/vp.AspectRatio())
		d.projection = math.PerspectiveLH(fovV, vp.AspectRatio(), near, far)
	}

	d.viewProjection = d.projection.Mul(d.view)
	d.invViewProjection = d.viewProjection.Inverse()
	d.frustum = math.FrustumFromViewProjection(d.viewProjection)
	return d
}

// BaseViewMatrix returns the fixed reference view matrix.
func (c *Camera) BaseViewMatrix() math.Mat4 {
	c.Tick()
	return c.state.baseView
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() math.Mat4 {
	c.Tick()
	return c.state.view
}

// ProjectionMatrix returns the view-to-clip matrix.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	c.Tick()
	return c.state.projection
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() math.Mat4 {
	c.Tick()
	return c.state.viewProjection
}

// InverseViewProjection returns the inverse of ViewProjection.
func (c *Camera) InverseViewProjection() math.Mat4 {
	c.Tick()
	return c.state.invViewProjection
}

// Frustum returns the six world-space frustum planes.
func (c *Camera) Frustum() math.Frustum {
	c.Tick()
	return c.state.frustum
}

// NearDepth returns the NDC depth of the near plane.
func (c *Camera) NearDepth() float32 {
	if c.reverseZ {
		return 1
	}
	return 0
}

// FarDepth returns the NDC depth of the far plane.
func (c *Camera) FarDepth() float32 {
	if c.reverseZ {
		return 0
	}
	return 1
}

// Position returns the camera's world-space position.
func (c *Camera) Position() math.Vec3 {
	return c.transform.Position()
}

// IsInViewFrustum reports whether the box is at least partially visible.
func (c *Camera) IsInViewFrustum(center, extents math.Vec3) bool {
	return c.Frustum().CheckCube(center, extents) != math.Outside
}

// IsInViewFrustumAABB is IsInViewFrustum for an AABB.
func (c *Camera) IsInViewFrustumAABB(box math.AABB) bool {
	return c.IsInViewFrustum(box.Center(), box.Extents())
}

// WorldToScreenPoint projects a world point to viewport-local pixels.
// The result's Z is the NDC depth.
func (c *Camera) WorldToScreenPoint(world math.Vec3) math.Vec3 {
	ndc := c.ViewProjection().MulVec4(world.Vec4(1)).PerspectiveDivide()
	vp := c.lastViewport
	return math.Vec3{
		X: (ndc.X + 1) / 2 * vp.Width,
		Y: (1 - ndc.Y) / 2 * vp.Height,
		Z: ndc.Z,
	}
}

// ScreenToWorldPoint unprojects viewport-local pixels with NDC depth in Z.
func (c *Camera) ScreenToWorldPoint(screen math.Vec3) math.Vec3 {
	inv := c.InverseViewProjection()
	vp := c.lastViewport
	ndc := math.Vec4{
		2*screen.X/vp.Width - 1,
		1 - 2*screen.Y/vp.Height,
		screen.Z,
		1,
	}
	return inv.MulVec4(ndc).PerspectiveDivide()
}

// Ray builds a world-space ray through a window pixel.
func (c *Camera) Ray(screen math.Vec2) picking.Ray {
	c.Tick()
	local := screen.Sub(c.lastViewport.TopLeft())

	far := c.ScreenToWorldPoint(local.WithDepth(c.FarDepth()))
	origin := c.transform.Position()
	if c.projection == Orthographic {
		origin = c.ScreenToWorldPoint(local.WithDepth(c.NearDepth()))
	}
	return picking.NewRay(origin, far)
}

// Pick traces a ray through a window pixel and returns the closest hit whose
// volume did not contain the ray origin.
func (c *Camera) Pick(screen math.Vec2, tracer picking.Tracer) (picking.Hit, bool) {
	return picking.Closest(tracer.Trace(c.Ray(screen)))
}

// Serialize writes clear color, projection, FOV (radians), near and far.
func (c *Camera) Serialize(enc *formats.Encoder) {
	enc.WriteColor(c.clearColor)
	enc.WriteUint8(uint8(c.projection))
	enc.WriteFloat32(c.fovH)
	enc.WriteFloat32(c.near)
	enc.WriteFloat32(c.far)
}

// Deserialize reads the fields written by Serialize and marks the camera dirty.
func (c *Camera) Deserialize(dec *formats.Decoder) error {
	color := dec.ReadColor()
	proj := Projection(dec.ReadUint8())
	fov := dec.ReadFloat32()
	near := dec.ReadFloat32()
	far := dec.ReadFloat32()
	if err := dec.Err(); err != nil {
		return err
	}
	if proj > Orthographic {
		return fmt.Errorf("camera: unknown projection %d", uint8(proj))
	}

	c.clearColor = color
	c.projection = proj
	c.fovH = fov
	c.SetNearPlane(near)
	c.SetFarPlane(far)
	return nil
}
