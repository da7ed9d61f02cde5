package math

import "github.com/chewxy/math32"

// Intersection classifies a volume against a frustum.
type Intersection uint8

const (
	Outside Intersection = iota
	Inside
	Intersects
)

// String returns a human-readable classification.
func (i Intersection) String() string {
	switch i {
	case Outside:
		return "Outside"
	case Inside:
		return "Inside"
	case Intersects:
		return "Intersects"
	default:
		return "Unknown"
	}
}

// Plane is the half-space Normal·p + D >= 0. Normal points inside.
type Plane struct {
	Normal Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(pt Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

func planeFromVec4(v Vec4) Plane {
	n := Vec3{v[0], v[1], v[2]}
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Scale(1 / l), D: v[3] / l}
}

// Frustum holds the six clip planes of a view volume: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromViewProjection extracts the planes of viewProj (projection * view) for
// clip depth in 0..w. Both standard and reverse depth produce the same six planes;
// only the roles of the two depth planes swap.
func FrustumFromViewProjection(viewProj Mat4) Frustum {
	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	add := func(a, b Vec4) Vec4 { return Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]} }
	sub := func(a, b Vec4) Vec4 { return Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]} }

	return Frustum{Planes: [6]Plane{
		planeFromVec4(add(r3, r0)),
		planeFromVec4(sub(r3, r0)),
		planeFromVec4(add(r3, r1)),
		planeFromVec4(sub(r3, r1)),
		planeFromVec4(r2),
		planeFromVec4(sub(r3, r2)),
	}}
}

// CheckCube classifies the box given by center and half-size extents.
func (f Frustum) CheckCube(center, extents Vec3) Intersection {
	result := Inside
	for _, p := range f.Planes {
		d := p.Distance(center)
		r := math32.Abs(p.Normal.X)*extents.X + math32.Abs(p.Normal.Y)*extents.Y + math32.Abs(p.Normal.Z)*extents.Z
		if d < -r {
			return Outside
		}
		if d < r {
			result = Intersects
		}
	}
	return result
}

// CheckSphere classifies a sphere.
func (f Frustum) CheckSphere(center Vec3, radius float32) Intersection {
	result := Inside
	for _, p := range f.Planes {
		d := p.Distance(center)
		if d < -radius {
			return Outside
		}
		if d < radius {
			result = Intersects
		}
	}
	return result
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
