package entity

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp/v2"
	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
	"github.com/milk9111/fracture2d/prefabs"
)

// FractureSourceParams assembles a fracturable sprite entity. Img is what
// gets drawn; Pixels is the CPU-readable buffer the slicer scans (decode
// the same bytes once and pass both). Callbacks are optional.
type FractureSourceParams struct {
	Spec   *prefabs.FractureSpec
	Img    *ebiten.Image
	Pixels image.Image
	// TextureRect selects the sprite's sub-rectangle of Pixels. Empty
	// means the whole image.
	TextureRect image.Rectangle
	X, Y        float64
	Rotation    float64
	Mass        float64
	// OwnsImage hands Img to the fracture group for deallocation once all
	// pieces are gone. Leave false when Img is shared.
	OwnsImage bool

	OnFracture       func()
	OnPieceDestroyed func()
}

// NewFractureSource builds a sprite entity that fractures per its prefab
// spec: Transform, Sprite, RenderLayer, PhysicsBody, and FractureSource.
func NewFractureSource(w *ecs.World, p FractureSourceParams) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("entity: world is nil")
	}
	if p.Spec == nil {
		return 0, fmt.Errorf("entity: fracture spec is nil")
	}

	rect := p.TextureRect
	if rect.Empty() && p.Pixels != nil {
		rect = p.Pixels.Bounds()
	}

	ppu := p.Spec.PixelsPerUnit
	if ppu <= 0 {
		ppu = 1
	}
	pivot := cp.Vector{
		X: float64(rect.Dx()) * p.Spec.PivotX,
		Y: float64(rect.Dy()) * p.Spec.PivotY,
	}

	mass := p.Mass
	if mass <= 0 {
		mass = 1
	}

	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{
		X:        p.X,
		Y:        p.Y,
		Rotation: p.Rotation,
		ScaleX:   1,
		ScaleY:   1,
	}); err != nil {
		return 0, fmt.Errorf("entity: fracture source transform: %w", err)
	}
	if err := ecs.Add(w, e, component.SpriteComponent, component.Sprite{
		Image:         p.Img,
		Source:        rect,
		UseSource:     true,
		OriginX:       pivot.X,
		OriginY:       pivot.Y,
		PixelsPerUnit: ppu,
	}); err != nil {
		return 0, fmt.Errorf("entity: fracture source sprite: %w", err)
	}
	if err := ecs.Add(w, e, component.RenderLayerComponent, component.RenderLayer{
		Index: p.Spec.RenderLayer,
	}); err != nil {
		return 0, fmt.Errorf("entity: fracture source render layer: %w", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{
		Kind:       component.BodySource,
		Width:      float64(rect.Dx()) / ppu,
		Height:     float64(rect.Dy()) / ppu,
		Mass:       mass,
		Friction:   p.Spec.PieceFriction,
		Elasticity: p.Spec.PieceElasticity,
		Sensor:     p.Spec.TriggerMode() == component.TriggerOnTriggerEnter,
	}); err != nil {
		return 0, fmt.Errorf("entity: fracture source body: %w", err)
	}
	if err := ecs.Add(w, e, component.FractureSourceComponent, component.FractureSource{
		Columns:            p.Spec.Columns,
		Rows:               p.Spec.Rows,
		Trigger:            p.Spec.TriggerMode(),
		StartDelay:         p.Spec.StartDelay,
		Force:              p.Spec.Force,
		UpwardModifier:     p.Spec.UpwardModifier,
		TorqueRange:        p.Spec.TorqueRange,
		PieceMass:          p.Spec.PieceMass,
		PieceFriction:      p.Spec.PieceFriction,
		PieceElasticity:    p.Spec.PieceElasticity,
		PiecesAsTrigger:    p.Spec.PiecesAsTrigger,
		DestroyPieces:      p.Spec.DestroyPieces,
		Lifetime:           p.Spec.Lifetime,
		DestroyOnCollision: p.Spec.DestroyOnCollision,
		UseBlink:           p.Spec.UseBlink,
		BlinkDuration:      p.Spec.BlinkDuration,
		BlinkFrequency:     p.Spec.BlinkFrequency,
		ArmDelay:           p.Spec.ArmDelay,
		PixelsPerUnit:      ppu,
		Pivot:              pivot,
		Pixels:             p.Pixels,
		TextureRect:        rect,
		OwnsImage:          p.OwnsImage,
		ForceScript:        p.Spec.ForceScript,
		OnFracture:         p.OnFracture,
		OnPieceDestroyed:   p.OnPieceDestroyed,
	}); err != nil {
		return 0, fmt.Errorf("entity: fracture source config: %w", err)
	}
	return e, nil
}
