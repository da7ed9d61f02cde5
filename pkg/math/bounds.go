package math

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// AABBFromCenterExtents builds a box from its center and half-size.
func AABBFromCenterExtents(center, extents Vec3) AABB {
	e := extents.Abs()
	return AABB{Min: center.Sub(e), Max: center.Add(e)}
}

// Center returns the center point of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extents returns the half-size of the box.
func (b AABB) Extents() Vec3 {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns the world-space box enclosing the 8 transformed corners.
func (b AABB) Transform(m Mat4) AABB {
	mn, mx := b.Min, b.Max
	corners := [8]Vec3{
		{mn.X, mn.Y, mn.Z},
		{mx.X, mn.Y, mn.Z},
		{mn.X, mx.Y, mn.Z},
		{mx.X, mx.Y, mn.Z},
		{mn.X, mn.Y, mx.Z},
		{mx.X, mn.Y, mx.Z},
		{mn.X, mx.Y, mx.Z},
		{mx.X, mx.Y, mx.Z},
	}

	first := m.TransformPoint(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := m.TransformPoint(c)
		out.Min = Vec3{math32.Min(out.Min.X, p.X), math32.Min(out.Min.Y, p.Y), math32.Min(out.Min.Z, p.Z)}
		out.Max = Vec3{math32.Max(out.Max.X, p.X), math32.Max(out.Max.Y, p.Y), math32.Max(out.Max.Z, p.Z)}
	}
	return out
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

// BoundingSphereRadius returns the conservative sphere radius used for picking:
// the largest absolute extent component.
func BoundingSphereRadius(extents Vec3) float32 {
	return extents.Abs().MaxComponent()
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: Vec3{math32.Min(b.Min.X, other.Min.X), math32.Min(b.Min.Y, other.Min.Y), math32.Min(b.Min.Z, other.Min.Z)},
		Max: Vec3{math32.Max(b.Max.X, other.Max.X), math32.Max(b.Max.Y, other.Max.Y), math32.Max(b.Max.Z, other.Max.Z)},
	}
}
