package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	ErrInvalidKind    = errors.New("ecs: invalid component kind")
)

// ID uniquely identifies a registered component type.
type ID uint32

var nextID atomic.Uint32

// Handle is a typed key for a component type. Declare one package-level
// handle per component and pass it to the ecs generics.
type Handle[T any] struct {
	id ID
}

// NewComponent registers a component type and returns its handle.
func NewComponent[T any]() Handle[T] {
	return Handle[T]{id: ID(nextID.Add(1))}
}

// Kind returns the component's registry ID, used for untyped queries.
func (h Handle[T]) Kind() ID {
	return h.id
}

// Valid reports whether the handle came from NewComponent.
func (h Handle[T]) Valid() bool {
	return h.id != 0
}
