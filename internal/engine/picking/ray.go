// Package picking provides ray casting and object picking utilities.
package picking

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray starting at start and pointing through end.
func NewRay(start, end math.Vec3) Ray {
	return Ray{Origin: start, Direction: end.Sub(start).Normalize()}
}

// PointAt returns Origin + t*Direction.
func (r Ray) PointAt(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts pixel coordinates within a resolution to a world-space ray.
// invViewProj is the inverse of projection*view; nearDepth and farDepth are the NDC
// depths of the near and far planes (swapped under reverse-Z).
func ScreenToRay(screen, resolution math.Vec2, invViewProj math.Mat4, nearDepth, farDepth float32) Ray {
	ndcX := 2*screen.X/resolution.X - 1
	ndcY := 1 - 2*screen.Y/resolution.Y // Flip Y

	nearWorld := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, nearDepth, 1}).PerspectiveDivide()
	farWorld := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, farDepth, 1}).PerspectiveDivide()

	return NewRay(nearWorld, farWorld)
}

// IntersectsSphere reports whether the infinite line through the ray touches the sphere.
// It solves |o + t*d - c|^2 = r^2 and only checks the discriminant, so the sign of the
// direction and the position of the hit along the line do not matter.
func (r Ray) IntersectsSphere(s math.Sphere) bool {
	oc := r.Origin.Sub(s.Center)

	a := r.Direction.Dot(r.Direction)
	b := 2 * r.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	return b*b-4*a*c >= 0
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to the entry point, whether the origin lies inside the box
// (in which case the exit distance is returned), and whether the ray hits at all.
func (r Ray) IntersectAABB(box math.AABB) (t float32, inside bool, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	bmin := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	bmax := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < bmin[axis] || origin[axis] > bmax[axis] {
				return 0, false, false
			}
			continue
		}
		t1 := (bmin[axis] - origin[axis]) / dir[axis]
		t2 := (bmax[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false, false
	}
	if tmin < 0 {
		return tmax, true, true
	}
	return tmin, false, true
}
