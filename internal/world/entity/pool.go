package entity

import (
	"github.com/google/uuid"
)

// Pool is the ordered set of live entities. Iteration order is insertion order.
type Pool struct {
	entities []*Entity
	index    map[uuid.UUID]int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		index: make(map[uuid.UUID]int),
	}
}

// Create adds a new root entity with the given name.
func (p *Pool) Create(name string) *Entity {
	e := New(name)
	p.Add(e)
	return e
}

// Add inserts an entity. Adding an id that is already present is a no-op.
func (p *Pool) Add(e *Entity) bool {
	if _, ok := p.index[e.ID]; ok {
		return false
	}
	p.index[e.ID] = len(p.entities)
	p.entities = append(p.entities, e)
	return true
}

// Remove deletes an entity, detaching it from its parent. Its children become roots.
func (p *Pool) Remove(id uuid.UUID) bool {
	i, ok := p.index[id]
	if !ok {
		return false
	}
	e := p.entities[i]
	for _, child := range append([]*Transform(nil), e.Transform.children...) {
		child.SetParent(nil)
	}
	e.Transform.SetParent(nil)

	p.entities = append(p.entities[:i], p.entities[i+1:]...)
	delete(p.index, id)
	for j := i; j < len(p.entities); j++ {
		p.index[p.entities[j].ID] = j
	}
	return true
}

// Get returns an entity by id.
func (p *Pool) Get(id uuid.UUID) (*Entity, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return p.entities[i], true
}

// All returns all live entities in pool order.
// The returned slice is owned by the pool and is only valid until the next mutation.
func (p *Pool) All() []*Entity {
	return p.entities
}

// Count returns the number of live entities.
func (p *Pool) Count() int {
	return len(p.entities)
}

// Clear removes all entities.
func (p *Pool) Clear() {
	p.entities = nil
	p.index = make(map[uuid.UUID]int)
}
