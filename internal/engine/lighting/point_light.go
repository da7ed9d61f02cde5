package lighting

import (
	"github.com/Faultbox/midgard-scene/internal/world/entity"
)

// MaxPointLights is the number of point light slots a frame uploads.
const MaxPointLights = 32

// defaultRange applies to point lights without a positive range.
const defaultRange = 10.0

// PointLight is a point light flattened to world space.
type PointLight struct {
	Position  [3]float32
	Color     [3]float32 // Clamped to 0..1
	Range     float32
	Intensity float32
}

// PointLightBuffer is a fixed-capacity set of point lights in upload layout.
type PointLightBuffer struct {
	lights []PointLight
}

// NewPointLightBuffer creates an empty buffer.
func NewPointLightBuffer() *PointLightBuffer {
	return &PointLightBuffer{lights: make([]PointLight, 0, MaxPointLights)}
}

// FromEntities flattens resolved point-light entities in order. Entities without a
// point Light component are skipped.
func FromEntities(entities []*entity.Entity) []PointLight {
	lights := make([]PointLight, 0, len(entities))
	for _, e := range entities {
		l, ok := entity.Get[*Light](e)
		if !ok || l.Type != Point {
			continue
		}
		pos := e.Transform.Position()
		pl := PointLight{
			Position:  [3]float32{pos.X, pos.Y, pos.Z},
			Range:     l.Range,
			Intensity: l.Intensity,
		}
		for i, c := range l.Color {
			pl.Color[i] = min(max(c, 0), 1)
		}
		if pl.Range <= 0 {
			pl.Range = defaultRange
		}
		lights = append(lights, pl)
	}
	return lights
}

// Len returns the number of lights held.
func (b *PointLightBuffer) Len() int { return len(b.lights) }

// Lights returns the held lights.
func (b *PointLightBuffer) Lights() []PointLight { return b.lights }

// Clear empties the buffer.
func (b *PointLightBuffer) Clear() {
	b.lights = b.lights[:0]
}

// AddLight appends light, returning false when the buffer is full.
func (b *PointLightBuffer) AddLight(light PointLight) bool {
	if len(b.lights) >= MaxPointLights {
		return false
	}
	b.lights = append(b.lights, light)
	return true
}

// SetLights replaces the contents with the first MaxPointLights of lights and
// returns how many were dropped.
func (b *PointLightBuffer) SetLights(lights []PointLight) (dropped int) {
	b.Clear()
	n := min(len(lights), MaxPointLights)
	b.lights = append(b.lights, lights[:n]...)
	return len(lights) - n
}

// Positions returns xyz triples padded to MaxPointLights slots.
func (b *PointLightBuffer) Positions() []float32 {
	return flatten(b.lights, 3, func(l PointLight) []float32 { return l.Position[:] })
}

// Colors returns rgb triples padded to MaxPointLights slots.
func (b *PointLightBuffer) Colors() []float32 {
	return flatten(b.lights, 3, func(l PointLight) []float32 { return l.Color[:] })
}

// Ranges returns one range per slot.
func (b *PointLightBuffer) Ranges() []float32 {
	return flatten(b.lights, 1, func(l PointLight) []float32 { return []float32{l.Range} })
}

// Intensities returns one intensity per slot.
func (b *PointLightBuffer) Intensities() []float32 {
	return flatten(b.lights, 1, func(l PointLight) []float32 { return []float32{l.Intensity} })
}

func flatten(lights []PointLight, stride int, field func(PointLight) []float32) []float32 {
	out := make([]float32, MaxPointLights*stride)
	for i, l := range lights {
		copy(out[i*stride:], field(l))
	}
	return out
}
