package entity

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Faultbox/midgard-scene/pkg/formats"
)

// ErrUnknownComponent is returned when a scene references a component tag with no
// registered factory.
var ErrUnknownComponent = errors.New("unknown component")

// maxComponentSize bounds a single component payload.
const maxComponentSize = 1 << 24

// Serializable is a component that can be written to and read from a scene file.
type Serializable interface {
	Component
	Serialize(enc *formats.Encoder)
	Deserialize(dec *formats.Decoder) error
}

// Factory builds an empty component for the entity being decoded.
type Factory func(e *Entity) Serializable

// Registry maps component tags to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a component tag to a factory, replacing any earlier binding.
func (r *Registry) Register(tag string, f Factory) {
	r.factories[tag] = f
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	return len(r.factories)
}

// Serialize writes every entity in pool order. Components that are not Serializable are skipped.
//
// Per entity: id (16 bytes), name, hierarchy flag, parent flag + parent id,
// local position, rotation, scale, then a counted list of (tag, uint32 size, payload).
func (p *Pool) Serialize(enc *formats.Encoder) error {
	enc.WriteUint32(uint32(len(p.entities)))
	for _, e := range p.entities {
		enc.WriteBytes(e.ID[:])
		enc.WriteString(e.Name)
		enc.WriteBool(e.HierarchyVisible)

		parent := e.Parent()
		enc.WriteBool(parent != nil)
		if parent != nil {
			enc.WriteBytes(parent.ID[:])
		}

		enc.WriteVec3(e.Transform.LocalPosition)
		enc.WriteQuat(e.Transform.LocalRotation)
		enc.WriteVec3(e.Transform.LocalScale)

		var comps []Serializable
		for _, c := range e.components {
			if s, ok := c.(Serializable); ok {
				comps = append(comps, s)
			}
		}
		enc.WriteUint32(uint32(len(comps)))
		for _, c := range comps {
			var payload bytes.Buffer
			sub := formats.NewEncoder(&payload)
			c.Serialize(sub)
			if err := sub.Err(); err != nil {
				return fmt.Errorf("serializing %s on %s: %w", c.ComponentName(), e.Name, err)
			}
			enc.WriteString(c.ComponentName())
			enc.WriteUint32(uint32(payload.Len()))
			enc.WriteBytes(payload.Bytes())
		}
	}
	return enc.Err()
}

// Deserialize reads entities written by Serialize and appends them to the pool.
// Parents are linked after all entities are read, so order in the file does not matter.
// A parent id that is not in the file leaves the child as a root.
func (p *Pool) Deserialize(dec *formats.Decoder, reg *Registry) error {
	count := dec.ReadUint32()
	if err := dec.Err(); err != nil {
		return err
	}

	type pending struct {
		child  *Entity
		parent uuid.UUID
	}
	var (
		decoded []*Entity
		links   []pending
	)

	for i := uint32(0); i < count; i++ {
		var id uuid.UUID
		dec.ReadBytes(id[:])
		e := NewWithID(id, dec.ReadString())
		e.HierarchyVisible = dec.ReadBool()

		if dec.ReadBool() {
			var pid uuid.UUID
			dec.ReadBytes(pid[:])
			links = append(links, pending{child: e, parent: pid})
		}

		e.Transform.LocalPosition = dec.ReadVec3()
		e.Transform.LocalRotation = dec.ReadQuat()
		e.Transform.LocalScale = dec.ReadVec3()

		n := dec.ReadUint32()
		if err := dec.Err(); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		for j := uint32(0); j < n; j++ {
			if err := decodeComponent(dec, reg, e); err != nil {
				return fmt.Errorf("entity %s: %w", e.Name, err)
			}
		}
		decoded = append(decoded, e)
	}

	byID := make(map[uuid.UUID]*Entity, len(decoded))
	for _, e := range decoded {
		byID[e.ID] = e
	}
	for _, l := range links {
		if parent, ok := byID[l.parent]; ok {
			l.child.SetParent(parent)
		} else if parent, ok := p.Get(l.parent); ok {
			l.child.SetParent(parent)
		}
	}
	for _, e := range decoded {
		p.Add(e)
	}
	return nil
}

func decodeComponent(dec *formats.Decoder, reg *Registry, e *Entity) error {
	tag := dec.ReadString()
	size := dec.ReadUint32()
	if err := dec.Err(); err != nil {
		return err
	}
	factory, ok := reg.factories[tag]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, tag)
	}
	if size > maxComponentSize {
		return fmt.Errorf("%w: component %s size %d", formats.ErrTruncatedSceneData, tag, size)
	}
	payload := make([]byte, size)
	dec.ReadBytes(payload)
	if err := dec.Err(); err != nil {
		return err
	}

	c := factory(e)
	sub := formats.NewDecoder(bytes.NewReader(payload))
	if err := c.Deserialize(sub); err != nil {
		return fmt.Errorf("decoding %s: %w", tag, err)
	}
	e.AddComponent(c)
	return nil
}
