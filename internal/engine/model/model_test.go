package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-scene/pkg/formats"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

func TestCube(t *testing.T) {
	cube := Cube()
	assert.Len(t, cube.Vertices, 24)
	assert.Len(t, cube.Indices, 36)

	b := cube.Bounds()
	assert.Equal(t, math.Vec3{X: -1, Y: -1, Z: -1}, b.Min)
	assert.Equal(t, math.Vec3One, b.Max)

	for _, v := range cube.Vertices {
		// Each vertex lies on the face its normal points out of.
		assert.InDelta(t, 1, v.Position.Dot(v.Normal), 1e-6)
	}
}

func TestEmptyMeshBounds(t *testing.T) {
	assert.Equal(t, math.AABB{}, (&Mesh{}).Bounds())
}

func TestCenterXZ(t *testing.T) {
	m := &Mesh{Vertices: []Vertex{
		{Position: math.Vec3{X: 2, Y: 0, Z: 4}},
		{Position: math.Vec3{X: 4, Y: 3, Z: 8}},
	}}
	cx, cz := m.CenterXZ()
	assert.Equal(t, float32(3), cx)
	assert.Equal(t, float32(6), cz)

	b := m.Bounds()
	assert.Equal(t, math.Vec3{X: -1, Y: 0, Z: -2}, b.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 3, Z: 2}, b.Max)
}

func TestSmoothNormals(t *testing.T) {
	m := &Mesh{Vertices: []Vertex{
		{Position: math.Vec3One, Normal: math.Vec3Right},
		{Position: math.Vec3One, Normal: math.Vec3Up},
		{Position: math.Vec3Zero, Normal: math.Vec3Forward},
	}}
	m.SmoothNormals()

	want := math.Vec3{X: 1, Y: 1}.Normalize()
	assert.True(t, m.Vertices[0].Normal.ApproxEqual(want, 1e-6))
	assert.True(t, m.Vertices[1].Normal.ApproxEqual(want, 1e-6))
	assert.Equal(t, math.Vec3Forward, m.Vertices[2].Normal)
}

func TestMeshFilterBounds(t *testing.T) {
	f := NewMeshFilter(BuiltinCube, Cube())
	assert.Equal(t, math.Vec3Zero, f.Center)
	assert.Equal(t, math.Vec3One, f.Extent)

	assert.Equal(t, float32(3), f.BoundingRadius(math.Vec3{X: 1, Y: -3, Z: 2}))

	world := f.WorldBounds(math.TRS(math.Vec3{X: 5}, math.QuatIdentity(), math.Vec3{X: 2, Y: 1, Z: 1}))
	assert.True(t, world.Min.ApproxEqual(math.Vec3{X: 3, Y: -1, Z: -1}, 1e-5), "min %v", world.Min)
	assert.True(t, world.Max.ApproxEqual(math.Vec3{X: 7, Y: 1, Z: 1}, 1e-5), "max %v", world.Max)
}

func TestComponentsSerialize(t *testing.T) {
	type serializable interface {
		Serialize(*formats.Encoder)
		Deserialize(*formats.Decoder) error
	}
	tests := []struct {
		name string
		src  serializable
		dst  serializable
	}{
		{"mesh filter", &MeshFilter{Mesh: "meshes/crate.mesh", Center: math.Vec3{Y: 1}, Extent: math.Vec3{X: 1, Y: 2, Z: 3}}, &MeshFilter{}},
		{"mesh renderer", &MeshRenderer{Material: "materials/wood.mat", CastShadows: true}, &MeshRenderer{}},
		{"skybox", &Skybox{Material: "materials/sky.mat"}, &Skybox{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := formats.NewEncoder(&buf)
			tt.src.Serialize(enc)
			require.NoError(t, enc.Err())
			require.NoError(t, tt.dst.Deserialize(formats.NewDecoder(&buf)))
			assert.Equal(t, tt.src, tt.dst)
		})
	}
}
