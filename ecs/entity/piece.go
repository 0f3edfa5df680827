package entity

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp/v2"
	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
	"github.com/milk9111/fracture2d/fracture"
)

// PieceParams assembles one fracture piece entity from a sliced tile.
type PieceParams struct {
	Tile  fracture.Tile
	Image *ebiten.Image
	Layer int
	Group uint64

	Position cp.Vector
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	// Width/Height are the collider dimensions in world units.
	Width  float64
	Height float64
	PPU    float64

	Impulse cp.Vector
	Torque  float64

	// Source carries the lifecycle configuration shared by the event.
	Source component.FractureSource
}

// NewPiece spawns a physical+visual piece. Its sprite sub-slices the
// shared source image; its body launches with the given impulse on the
// next physics sync.
func NewPiece(w *ecs.World, p PieceParams) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("entity: world is nil")
	}

	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{
		X:        p.Position.X,
		Y:        p.Position.Y,
		Rotation: p.Rotation,
		ScaleX:   p.ScaleX,
		ScaleY:   p.ScaleY,
	}); err != nil {
		return 0, fmt.Errorf("entity: piece transform: %w", err)
	}
	if err := ecs.Add(w, e, component.SpriteComponent, component.Sprite{
		Image:         p.Image,
		Source:        p.Tile.PixelRect,
		UseSource:     true,
		OriginX:       float64(p.Tile.PixelRect.Dx()) / 2,
		OriginY:       float64(p.Tile.PixelRect.Dy()) / 2,
		PixelsPerUnit: p.PPU,
	}); err != nil {
		return 0, fmt.Errorf("entity: piece sprite: %w", err)
	}
	if err := ecs.Add(w, e, component.RenderLayerComponent, component.RenderLayer{
		Index: p.Layer,
	}); err != nil {
		return 0, fmt.Errorf("entity: piece render layer: %w", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{
		Kind:       component.BodyPiece,
		Width:      p.Width,
		Height:     p.Height,
		Mass:       p.Source.PieceMass,
		Friction:   p.Source.PieceFriction,
		Elasticity: p.Source.PieceElasticity,
		Sensor:     p.Source.PiecesAsTrigger,
		Group:      uint(p.Group),
		Impulse:    p.Impulse,
		Torque:     p.Torque,
	}); err != nil {
		return 0, fmt.Errorf("entity: piece body: %w", err)
	}
	if err := ecs.Add(w, e, component.PieceComponent, component.Piece{
		Group:              p.Group,
		State:              component.PieceSpawned,
		ArmDelay:           p.Source.ArmDelay,
		DestroyPieces:      p.Source.DestroyPieces,
		Lifetime:           p.Source.Lifetime,
		DestroyOnCollision: p.Source.DestroyOnCollision,
		UseBlink:           p.Source.UseBlink,
		BlinkDuration:      p.Source.BlinkDuration,
		BlinkFrequency:     p.Source.BlinkFrequency,
	}); err != nil {
		return 0, fmt.Errorf("entity: piece lifecycle: %w", err)
	}
	return e, nil
}
