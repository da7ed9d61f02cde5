// Package model provides the geometry and material components that make an entity renderable.
package model

import (
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Vertex is a mesh vertex with position, normal, and texture coordinates.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// Mesh holds indexed triangle data.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the local-space box enclosing every vertex.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() math.AABB {
	if len(m.Vertices) == 0 {
		return math.AABB{}
	}
	b := math.AABB{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		updateBounds(&b, v.Position)
	}
	return b
}

// Cube returns a unit-extent box mesh centered on the origin with per-face normals.
func Cube() *Mesh {
	faces := [6]struct{ normal, u, v math.Vec3 }{
		{math.Vec3Right, math.Vec3Forward.Neg(), math.Vec3Up},
		{math.Vec3Right.Neg(), math.Vec3Forward, math.Vec3Up},
		{math.Vec3Up, math.Vec3Right, math.Vec3Forward.Neg()},
		{math.Vec3Up.Neg(), math.Vec3Right, math.Vec3Forward},
		{math.Vec3Forward, math.Vec3Right, math.Vec3Up},
		{math.Vec3Forward.Neg(), math.Vec3Right.Neg(), math.Vec3Up},
	}
	corners := [4]math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}

	mesh := &Mesh{}
	for _, f := range faces {
		base := uint32(len(mesh.Vertices))
		for _, c := range corners {
			pos := f.normal.Add(f.u.Scale(c.X)).Add(f.v.Scale(c.Y))
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				Normal:   f.normal,
				TexCoord: math.Vec2{X: (c.X + 1) / 2, Y: (1 - c.Y) / 2},
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// CenterXZ centers the mesh horizontally (X/Z) but preserves Y offset.
// Returns the centering offset applied.
func (m *Mesh) CenterXZ() (centerX, centerZ float32) {
	c := m.Bounds().Center()
	for i := range m.Vertices {
		m.Vertices[i].Position.X -= c.X
		m.Vertices[i].Position.Z -= c.Z
	}
	return c.X, c.Z
}

// SmoothNormals averages normals at shared vertex positions.
func (m *Mesh) SmoothNormals() {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i, v := range m.Vertices {
		key := [3]int32{
			int32(v.Position.X / epsilon),
			int32(v.Position.Y / epsilon),
			int32(v.Position.Z / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}
		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(m.Vertices[idx].Normal)
		}
		avg := sum.Normalize()
		for _, idx := range idxs {
			m.Vertices[idx].Normal = avg
		}
	}
}

func updateBounds(b *math.AABB, p math.Vec3) {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Min.Z = min(b.Min.Z, p.Z)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	b.Max.Z = max(b.Max.Z, p.Z)
}
