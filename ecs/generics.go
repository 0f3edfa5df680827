package ecs

import "github.com/milk9111/fracture2d/ecs/component"

// Add sets a component value on a live entity.
func Add[T any](w *World, e Entity, h component.Handle[T], value T) error {
	if !h.Valid() {
		return component.ErrInvalidKind
	}
	if !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	w.store(h.Kind(), true).Set(int(e.id()), value)
	return nil
}

// Remove drops a component from an entity, reporting whether it existed.
func Remove[T any](w *World, e Entity, h component.Handle[T]) bool {
	if !h.Valid() || !w.IsAlive(e) {
		return false
	}
	return w.store(h.Kind(), false).Remove(int(e.id()))
}

// Has reports whether a live entity carries the component.
func Has[T any](w *World, e Entity, h component.Handle[T]) bool {
	if !h.Valid() || !w.IsAlive(e) {
		return false
	}
	return w.store(h.Kind(), false).Has(int(e.id()))
}

// Get returns a copy of the entity's component value. Mutations must be
// written back with Add.
func Get[T any](w *World, e Entity, h component.Handle[T]) (T, bool) {
	var zero T
	if !h.Valid() || !w.IsAlive(e) {
		return zero, false
	}
	v := w.store(h.Kind(), false).Get(int(e.id()))
	if v == nil {
		return zero, false
	}
	cast, ok := v.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}
