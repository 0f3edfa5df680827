package ecs

import "github.com/milk9111/fracture2d/ecs/component"

// System updates a world once per frame.
type System interface {
	Update(w *World)
}

// World owns entities, component stores, system order, and the frame
// event queue. All mutation happens on the single update thread.
type World struct {
	entities entityStore
	stores   map[component.ID]*SparseSet
	systems  []System
	events   EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity kills an entity and drops all of its components. It
// returns false for handles that are already dead or stale.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	for _, store := range w.stores {
		store.Remove(int(e.id()))
	}
	return true
}

// IsAlive reports whether an entity handle is still valid.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Update runs all systems once, then clears the frame's events.
func (w *World) Update() {
	if w == nil {
		return
	}
	for _, s := range w.systems {
		s.Update(w)
	}
	w.events.flush()
}

// Events returns the world event queue. Events pushed during a frame are
// visible to systems running later in the same frame and are cleared when
// the frame ends.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Query returns the live entities that carry every listed component kind,
// in the dense order of the first kind's store.
func (w *World) Query(kinds ...component.ID) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	first := w.stores[kinds[0]]
	if first == nil {
		return nil
	}
	var out []Entity
	for _, id := range first.Entities() {
		e, ok := w.entities.entityAt(entityID(id))
		if !ok {
			continue
		}
		match := true
		for _, kind := range kinds[1:] {
			if !w.stores[kind].Has(id) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// First returns any single live entity carrying the component kind.
func (w *World) First(kind component.ID) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	store := w.stores[kind]
	if store == nil {
		return 0, false
	}
	for _, id := range store.Entities() {
		if e, ok := w.entities.entityAt(entityID(id)); ok {
			return e, true
		}
	}
	return 0, false
}

// Count returns how many live entities carry the component kind.
func (w *World) Count(kind component.ID) int {
	if w == nil {
		return 0
	}
	store := w.stores[kind]
	if store == nil {
		return 0
	}
	n := 0
	for _, id := range store.Entities() {
		if _, ok := w.entities.entityAt(entityID(id)); ok {
			n++
		}
	}
	return n
}

func (w *World) store(kind component.ID, create bool) *SparseSet {
	if s := w.stores[kind]; s != nil {
		return s
	}
	if !create {
		return nil
	}
	s := &SparseSet{}
	w.stores[kind] = s
	return s
}
