// Package lighting provides the light component and point light buffers for rendering.
package lighting

import (
	"fmt"

	"github.com/Faultbox/midgard-scene/pkg/formats"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// ComponentName is the tag the light is registered under.
const ComponentName = "Light"

// Type is the light kind.
type Type uint8

const (
	Directional Type = iota
	Point
)

// String returns the light type name.
func (t Type) String() string {
	switch t {
	case Directional:
		return "directional"
	case Point:
		return "point"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Light is a light source component. Position and direction come from the
// owning entity's transform.
type Light struct {
	Type      Type
	Intensity float32
	Color     [3]float32 // RGB color (0-1 range)
	Range     float32    // Falloff distance for point lights
}

// NewDirectional creates a white directional light.
func NewDirectional(intensity float32) *Light {
	return &Light{Type: Directional, Intensity: intensity, Color: [3]float32{1, 1, 1}}
}

// NewPoint creates a white point light.
func NewPoint(intensity, lightRange float32) *Light {
	return &Light{Type: Point, Intensity: intensity, Color: [3]float32{1, 1, 1}, Range: lightRange}
}

// ComponentName implements entity.Component.
func (l *Light) ComponentName() string {
	return ComponentName
}

// Serialize writes type, intensity, color and range.
func (l *Light) Serialize(enc *formats.Encoder) {
	enc.WriteUint8(uint8(l.Type))
	enc.WriteFloat32(l.Intensity)
	for _, c := range l.Color {
		enc.WriteFloat32(c)
	}
	enc.WriteFloat32(l.Range)
}

// Deserialize reads the fields written by Serialize.
func (l *Light) Deserialize(dec *formats.Decoder) error {
	t := Type(dec.ReadUint8())
	l.Intensity = dec.ReadFloat32()
	for i := range l.Color {
		l.Color[i] = dec.ReadFloat32()
	}
	l.Range = dec.ReadFloat32()
	if err := dec.Err(); err != nil {
		return err
	}
	if t > Point {
		return fmt.Errorf("light: unknown type %d", uint8(t))
	}
	l.Type = t
	return nil
}

// Direction returns the direction a light with the given rotation shines toward.
func Direction(rotation math.Quat) math.Vec3 {
	return rotation.Forward().Normalize()
}

// ToLight returns the normalized vector pointing back at a directional light,
// as used by diffuse shading.
func ToLight(rotation math.Quat) math.Vec3 {
	return Direction(rotation).Neg()
}
