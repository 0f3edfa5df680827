package entity

import (
	"fmt"

	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
)

// NewGround creates an invisible static box collider centered at (x, y),
// used by scenes to give pieces something to land on.
func NewGround(w *ecs.World, x, y, width, height float64) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("entity: world is nil")
	}
	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("entity: ground transform: %w", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{
		Kind:     component.BodySolid,
		Width:    width,
		Height:   height,
		Static:   true,
		Friction: 0.8,
	}); err != nil {
		return 0, fmt.Errorf("entity: ground body: %w", err)
	}
	return e, nil
}
