// Package entity implements scene entities, their components and the live entity pool.
package entity

import (
	"github.com/google/uuid"
)

// Component is a capability attached to an entity.
// At most one component per ComponentName is attached to an entity.
type Component interface {
	ComponentName() string
}

// Entity is a named node in the scene holding a Transform and an ordered set of components.
type Entity struct {
	ID               uuid.UUID
	Name             string
	HierarchyVisible bool // Shown in the editor hierarchy

	Transform *Transform

	components []Component
}

// New creates an entity with a fresh id and an identity transform.
func New(name string) *Entity {
	return NewWithID(uuid.New(), name)
}

// NewWithID creates an entity with a known id.
func NewWithID(id uuid.UUID, name string) *Entity {
	e := &Entity{
		ID:               id,
		Name:             name,
		HierarchyVisible: true,
	}
	e.Transform = newTransform(e)
	return e
}

// AddComponent attaches c and returns it. If a component with the same name is
// already attached, the existing one is returned and c is discarded.
func (e *Entity) AddComponent(c Component) Component {
	if existing := e.Component(c.ComponentName()); existing != nil {
		return existing
	}
	e.components = append(e.components, c)
	return c
}

// Component returns the attached component with the given name, or nil.
func (e *Entity) Component(name string) Component {
	for _, c := range e.components {
		if c.ComponentName() == name {
			return c
		}
	}
	return nil
}

// RemoveComponent detaches the named component, keeping the order of the rest.
func (e *Entity) RemoveComponent(name string) bool {
	for i, c := range e.components {
		if c.ComponentName() == name {
			e.components = append(e.components[:i], e.components[i+1:]...)
			return true
		}
	}
	return false
}

// Components returns the attached components in attachment order.
func (e *Entity) Components() []Component {
	return e.components
}

// Parent returns the entity owning the parent transform, or nil for roots.
func (e *Entity) Parent() *Entity {
	if p := e.Transform.Parent(); p != nil {
		return p.owner
	}
	return nil
}

// SetParent reparents e under p. A nil p makes e a root.
func (e *Entity) SetParent(p *Entity) {
	if p == nil {
		e.Transform.SetParent(nil)
		return
	}
	e.Transform.SetParent(p.Transform)
}

// Get returns the first component of type T attached to e.
func Get[T Component](e *Entity) (T, bool) {
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether e holds a component of type T.
func Has[T Component](e *Entity) bool {
	_, ok := Get[T](e)
	return ok
}
