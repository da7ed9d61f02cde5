package entity

import (
	"slices"

	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Transform holds local position, rotation and scale, composed with the parent chain
// to produce world values.
type Transform struct {
	LocalPosition math.Vec3
	LocalRotation math.Quat
	LocalScale    math.Vec3

	owner    *Entity
	parent   *Transform
	children []*Transform
}

func newTransform(owner *Entity) *Transform {
	return &Transform{
		LocalRotation: math.QuatIdentity(),
		LocalScale:    math.Vec3One,
		owner:         owner,
	}
}

// Parent returns the parent transform, or nil.
func (t *Transform) Parent() *Transform {
	return t.parent
}

// Children returns the direct children.
func (t *Transform) Children() []*Transform {
	return t.children
}

// Entity returns the owning entity.
func (t *Transform) Entity() *Entity {
	return t.owner
}

// SetParent moves t under p, keeping local values. Cycles are rejected.
func (t *Transform) SetParent(p *Transform) bool {
	for anc := p; anc != nil; anc = anc.parent {
		if anc == t {
			return false
		}
	}
	if t.parent != nil {
		siblings := t.parent.children
		if i := slices.Index(siblings, t); i >= 0 {
			t.parent.children = slices.Delete(siblings, i, i+1)
		}
	}
	t.parent = p
	if p != nil {
		p.children = append(p.children, t)
	}
	return true
}

// Position returns the world-space position.
func (t *Transform) Position() math.Vec3 {
	if t.parent == nil {
		return t.LocalPosition
	}
	p := t.parent
	return p.Position().Add(p.Rotation().Rotate(t.LocalPosition.Mul(p.Scale())))
}

// Rotation returns the world-space rotation.
func (t *Transform) Rotation() math.Quat {
	if t.parent == nil {
		return t.LocalRotation
	}
	return t.parent.Rotation().Mul(t.LocalRotation).Normalize()
}

// Scale returns the world-space scale, ignoring shear from rotated parents.
func (t *Transform) Scale() math.Vec3 {
	if t.parent == nil {
		return t.LocalScale
	}
	return t.parent.Scale().Mul(t.LocalScale)
}

// SetPosition places t at a world-space position.
func (t *Transform) SetPosition(world math.Vec3) {
	if t.parent == nil {
		t.LocalPosition = world
		return
	}
	p := t.parent
	local := p.Rotation().Conjugate().Rotate(world.Sub(p.Position()))
	s := p.Scale()
	t.LocalPosition = math.Vec3{X: safeDiv(local.X, s.X), Y: safeDiv(local.Y, s.Y), Z: safeDiv(local.Z, s.Z)}
}

// SetRotation sets the world-space rotation.
func (t *Transform) SetRotation(world math.Quat) {
	if t.parent == nil {
		t.LocalRotation = world
		return
	}
	t.LocalRotation = t.parent.Rotation().Conjugate().Mul(world).Normalize()
}

// LocalMatrix returns the TRS matrix relative to the parent.
func (t *Transform) LocalMatrix() math.Mat4 {
	return math.TRS(t.LocalPosition, t.LocalRotation, t.LocalScale)
}

// WorldMatrix returns the full local-to-world matrix.
func (t *Transform) WorldMatrix() math.Mat4 {
	if t.parent == nil {
		return t.LocalMatrix()
	}
	return t.parent.WorldMatrix().Mul(t.LocalMatrix())
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}
