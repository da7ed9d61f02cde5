package model

import (
	"github.com/Faultbox/midgard-scene/pkg/formats"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Component tags.
const (
	MeshFilterName   = "MeshFilter"
	MeshRendererName = "MeshRenderer"
	SkyboxName       = "Skybox"
)

// BuiltinCube is the mesh path that resolves to Cube.
const BuiltinCube = "builtin:cube"

// MeshFilter provides geometry: a mesh resource path and its local bounds.
type MeshFilter struct {
	Mesh   string    // Resource path
	Center math.Vec3 // Local bounds center
	Extent math.Vec3 // Local bounds half-size
}

// NewMeshFilter creates a filter whose bounds enclose mesh.
func NewMeshFilter(path string, mesh *Mesh) *MeshFilter {
	b := mesh.Bounds()
	return &MeshFilter{Mesh: path, Center: b.Center(), Extent: b.Extents()}
}

// ComponentName implements entity.Component.
func (*MeshFilter) ComponentName() string { return MeshFilterName }

// LocalBounds returns the local-space box.
func (f *MeshFilter) LocalBounds() math.AABB {
	return math.AABBFromCenterExtents(f.Center, f.Extent)
}

// WorldBounds returns the box enclosing the local bounds under world.
func (f *MeshFilter) WorldBounds(world math.Mat4) math.AABB {
	return f.LocalBounds().Transform(world)
}

// BoundingRadius returns the pick radius for the given world scale: the largest
// absolute extent component after scaling.
func (f *MeshFilter) BoundingRadius(scale math.Vec3) float32 {
	return math.BoundingSphereRadius(f.Extent.Mul(scale))
}

// Serialize writes the mesh path and bounds.
func (f *MeshFilter) Serialize(enc *formats.Encoder) {
	enc.WriteString(f.Mesh)
	enc.WriteVec3(f.Center)
	enc.WriteVec3(f.Extent)
}

// Deserialize reads the fields written by Serialize.
func (f *MeshFilter) Deserialize(dec *formats.Decoder) error {
	f.Mesh = dec.ReadString()
	f.Center = dec.ReadVec3()
	f.Extent = dec.ReadVec3()
	return dec.Err()
}

// MeshRenderer provides the render material for a MeshFilter.
type MeshRenderer struct {
	Material    string // Material path
	CastShadows bool
}

// ComponentName implements entity.Component.
func (*MeshRenderer) ComponentName() string { return MeshRendererName }

// Serialize writes the material path and shadow flag.
func (r *MeshRenderer) Serialize(enc *formats.Encoder) {
	enc.WriteString(r.Material)
	enc.WriteBool(r.CastShadows)
}

// Deserialize reads the fields written by Serialize.
func (r *MeshRenderer) Deserialize(dec *formats.Decoder) error {
	r.Material = dec.ReadString()
	r.CastShadows = dec.ReadBool()
	return dec.Err()
}

// Skybox marks the entity that draws the sky.
type Skybox struct {
	Material string
}

// ComponentName implements entity.Component.
func (*Skybox) ComponentName() string { return SkyboxName }

// Serialize writes the sky material path.
func (s *Skybox) Serialize(enc *formats.Encoder) {
	enc.WriteString(s.Material)
}

// Deserialize reads the sky material path.
func (s *Skybox) Deserialize(dec *formats.Decoder) error {
	s.Material = dec.ReadString()
	return dec.Err()
}
