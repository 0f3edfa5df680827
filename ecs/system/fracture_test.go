package system

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp/v2"

	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
	"github.com/milk9111/fracture2d/fracture"
)

func opaquePixels(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

type sourceConfig struct {
	cols, rows int
	pixels     image.Image
	rect       image.Rectangle
	trigger    component.TriggerMode
	startDelay float64
	force      float64
	upward     float64
	torque     float64
	destroy    bool
	lifetime   float64
	script     string
	onFracture func()
	withBody   bool
	noSprite   bool
}

func newTestSource(t *testing.T, w *ecs.World, x, y float64, cfg sourceConfig) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent, component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if !cfg.noSprite {
		if err := ecs.Add(w, e, component.SpriteComponent, component.Sprite{PixelsPerUnit: 1}); err != nil {
			t.Fatalf("add sprite: %v", err)
		}
	}
	if cfg.withBody {
		if err := ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{
			Kind: component.BodySource, Width: 2, Height: 2, Mass: 1,
		}); err != nil {
			t.Fatalf("add body: %v", err)
		}
	}
	pivot := cp.Vector{X: float64(cfg.rect.Dx()) / 2, Y: float64(cfg.rect.Dy()) / 2}
	if err := ecs.Add(w, e, component.FractureSourceComponent, component.FractureSource{
		Columns:        cfg.cols,
		Rows:           cfg.rows,
		Trigger:        cfg.trigger,
		StartDelay:     cfg.startDelay,
		Force:          cfg.force,
		UpwardModifier: cfg.upward,
		TorqueRange:    cfg.torque,
		PieceMass:      0.1,
		DestroyPieces:  cfg.destroy,
		Lifetime:       cfg.lifetime,
		ArmDelay:       0.05,
		PixelsPerUnit:  1,
		Pivot:          pivot,
		Pixels:         cfg.pixels,
		TextureRect:    cfg.rect,
		ForceScript:    cfg.script,
		OnFracture:     cfg.onFracture,
	}); err != nil {
		t.Fatalf("add fracture source: %v", err)
	}
	return e
}

func pieceEntities(w *ecs.World) []ecs.Entity {
	return w.Query(component.PieceComponent.Kind())
}

func TestFractureOpaqueGrid(t *testing.T) {
	// A 2x1 grid over a fully opaque sprite yields exactly two pieces,
	// one per cell, centered on their cells.
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 100, 100, sourceConfig{
		cols: 2, rows: 1,
		pixels: opaquePixels(2, 1),
		rect:   image.Rect(0, 0, 2, 1),
		force:  200, torque: 50,
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("fracture: %v", err)
	}

	fs.Update(w) // row 0 spawns
	pieces := pieceEntities(w)
	if len(pieces) != 2 {
		t.Fatalf("pieces after slicing = %d, want 2", len(pieces))
	}

	wantX := []float64{99.5, 100.5}
	for i, p := range pieces {
		tr, ok := ecs.Get(w, p, component.TransformComponent)
		if !ok {
			t.Fatalf("piece %d has no transform", i)
		}
		if math.Abs(tr.X-wantX[i]) > 1e-9 || math.Abs(tr.Y-100) > 1e-9 {
			t.Fatalf("piece %d at (%v, %v), want (%v, 100)", i, tr.X, tr.Y, wantX[i])
		}
		body, ok := ecs.Get(w, p, component.PhysicsBodyComponent)
		if !ok {
			t.Fatalf("piece %d has no physics body", i)
		}
		if body.Width != 1 || body.Height != 1 {
			t.Fatalf("piece %d body %vx%v, want 1x1", i, body.Width, body.Height)
		}
		if body.Impulse.Length() == 0 {
			t.Fatalf("piece %d got no launch impulse", i)
		}
	}

	pc0, _ := ecs.Get(w, pieces[0], component.PieceComponent)
	pc1, _ := ecs.Get(w, pieces[1], component.PieceComponent)
	if pc0.Group == 0 || pc0.Group != pc1.Group {
		t.Fatalf("pieces should share a nonzero group, got %d and %d", pc0.Group, pc1.Group)
	}

	fs.Update(w) // slicing done, source retires
	if w.IsAlive(src) {
		t.Fatalf("source should be destroyed once slicing completes")
	}
	if len(pieceEntities(w)) != 2 {
		t.Fatalf("finishing must not add or remove pieces")
	}
}

func TestFractureFullyTransparentSprite(t *testing.T) {
	// Zero pieces, but the fracture still runs to completion: callback
	// fires once and the source is removed.
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	fractured := 0
	src := newTestSource(t, w, 50, 50, sourceConfig{
		cols: 2, rows: 2,
		pixels: image.NewRGBA(image.Rect(0, 0, 4, 4)),
		rect:   image.Rect(0, 0, 4, 4),
		force:  200,
		onFracture: func() {
			fractured++
		},
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("fracture: %v", err)
	}

	for i := 0; i < 4; i++ {
		fs.Update(w)
	}
	if got := len(pieceEntities(w)); got != 0 {
		t.Fatalf("transparent sprite spawned %d pieces, want 0", got)
	}
	if fractured != 1 {
		t.Fatalf("fracture callback fired %d times, want 1", fractured)
	}
	if w.IsAlive(src) {
		t.Fatalf("source should be destroyed after an empty fracture")
	}
}

func TestFractureUnreadableSource(t *testing.T) {
	// No pixel data: one error, no side effects on the entity, and the
	// attempt latches so nothing retries it.
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 2, rows: 2,
		pixels:   nil,
		rect:     image.Rect(0, 0, 4, 4),
		withBody: true,
	})

	err := fs.Fracture(w, src)
	if !errors.Is(err, fracture.ErrSourceUnreadable) {
		t.Fatalf("got err %v, want ErrSourceUnreadable", err)
	}
	if !w.IsAlive(src) {
		t.Fatalf("source must survive a failed fracture")
	}
	if !ecs.Has(w, src, component.PhysicsBodyComponent) {
		t.Fatalf("failed fracture must not strip the physics body")
	}
	if sprite, _ := ecs.Get(w, src, component.SpriteComponent); sprite.Hidden {
		t.Fatalf("failed fracture must not hide the sprite")
	}
	if got := len(pieceEntities(w)); got != 0 {
		t.Fatalf("failed fracture spawned %d pieces", got)
	}

	fsrc, _ := ecs.Get(w, src, component.FractureSourceComponent)
	if !fsrc.Fractured {
		t.Fatalf("failed attempt should latch the source")
	}
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("second trigger should be a silent no-op, got %v", err)
	}
}

func TestFractureSpritelessSource(t *testing.T) {
	// An entity can fracture off its pixel buffer alone; triggering must
	// not graft a zero-value sprite onto it.
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 2, rows: 1,
		pixels:   opaquePixels(2, 1),
		rect:     image.Rect(0, 0, 2, 1),
		force:    100,
		noSprite: true,
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("fracture: %v", err)
	}
	if ecs.Has(w, src, component.SpriteComponent) {
		t.Fatalf("trigger added a sprite to a spriteless source")
	}

	fs.Update(w)
	if got := len(pieceEntities(w)); got != 2 {
		t.Fatalf("pieces = %d, want 2", got)
	}
}

func TestFractureTwiceIsNoOp(t *testing.T) {
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 1, rows: 1,
		pixels: opaquePixels(2, 2),
		rect:   image.Rect(0, 0, 2, 2),
		force:  100,
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("first fracture: %v", err)
	}
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("second fracture should be a no-op, got %v", err)
	}

	fs.Update(w)
	fs.Update(w)
	if got := len(pieceEntities(w)); got != 1 {
		t.Fatalf("pieces = %d, want 1", got)
	}
}

func TestSlicingPacedOneRowPerUpdate(t *testing.T) {
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 3, rows: 3,
		pixels: opaquePixels(9, 9),
		rect:   image.Rect(0, 0, 9, 9),
		force:  100,
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("fracture: %v", err)
	}

	for row := 1; row <= 3; row++ {
		fs.Update(w)
		if got := len(pieceEntities(w)); got != row*3 {
			t.Fatalf("after update %d: pieces = %d, want %d", row, got, row*3)
		}
	}
	fs.Update(w)
	if w.IsAlive(src) {
		t.Fatalf("source should retire after the last row")
	}
}

func TestSlicingCancelledWhenSourceDies(t *testing.T) {
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 2, rows: 4,
		pixels:  opaquePixels(8, 8),
		rect:    image.Rect(0, 0, 8, 8),
		force:   100,
		destroy: true, lifetime: 1,
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("fracture: %v", err)
	}

	fs.Update(w)
	spawned := len(pieceEntities(w))
	if spawned != 2 {
		t.Fatalf("pieces after first row = %d, want 2", spawned)
	}

	w.DestroyEntity(src)
	for i := 0; i < 4; i++ {
		fs.Update(w)
	}
	if got := len(pieceEntities(w)); got != spawned {
		t.Fatalf("cancelled run kept spawning: %d pieces, want %d", got, spawned)
	}

	// Cleanup timer still runs for the orphaned pieces.
	groupEntity, ok := w.First(component.FractureGroupComponent.Kind())
	if !ok {
		t.Fatalf("group entity missing after cancellation")
	}
	group, _ := ecs.Get(w, groupEntity, component.FractureGroupComponent)
	if !group.Armed {
		t.Fatalf("cancelled run should still arm the cleanup timer")
	}
}

func TestGroupCleanupSafetyNet(t *testing.T) {
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 1, rows: 1,
		pixels:  opaquePixels(2, 2),
		rect:    image.Rect(0, 0, 2, 2),
		force:   100,
		destroy: true, lifetime: 0.2,
	})
	if err := fs.Fracture(w, src); err != nil {
		t.Fatalf("fracture: %v", err)
	}
	fs.Update(w)
	fs.Update(w)

	if _, ok := w.First(component.FractureGroupComponent.Kind()); !ok {
		t.Fatalf("group entity should exist after fracture")
	}
	for i := 0; i < 20; i++ {
		fs.Update(w)
	}
	if _, ok := w.First(component.FractureGroupComponent.Kind()); ok {
		t.Fatalf("group entity should be reclaimed after the max lifetime")
	}
}

func TestAutoStartTrigger(t *testing.T) {
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))
	w.AddSystem(fs)

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 1, rows: 1,
		pixels:     opaquePixels(2, 2),
		rect:       image.Rect(0, 0, 2, 2),
		trigger:    component.TriggerAutoStart,
		startDelay: 0.05,
		force:      100,
	})

	w.Update()
	if fsrc, _ := ecs.Get(w, src, component.FractureSourceComponent); fsrc.Fractured {
		t.Fatalf("auto trigger fired before its delay")
	}
	for i := 0; i < 5; i++ {
		w.Update()
	}
	if len(pieceEntities(w)) != 1 {
		t.Fatalf("auto trigger should have fractured by now")
	}
}

func TestCollisionTrigger(t *testing.T) {
	w := ecs.NewWorld()
	fs := NewFractureSystem(rand.New(rand.NewSource(1)))

	src := newTestSource(t, w, 0, 0, sourceConfig{
		cols: 1, rows: 1,
		pixels:  opaquePixels(2, 2),
		rect:    image.Rect(0, 0, 2, 2),
		trigger: component.TriggerOnCollision,
		force:   100,
	})

	fs.Update(w)
	if fsrc, _ := ecs.Get(w, src, component.FractureSourceComponent); fsrc.Fractured {
		t.Fatalf("collision trigger fired without a contact")
	}

	w.Events().Push(ecs.Event{Type: ecs.EventSourceContact, Data: ecs.SourceContactEvent{Source: src}})
	fs.Update(w)
	fsrc, _ := ecs.Get(w, src, component.FractureSourceComponent)
	if !fsrc.Fractured {
		t.Fatalf("contact should trigger a collision-mode source")
	}
}

func TestForceScriptScalesImpulse(t *testing.T) {
	launch := func(script string) float64 {
		w := ecs.NewWorld()
		fs := NewFractureSystem(rand.New(rand.NewSource(7)))
		src := newTestSource(t, w, 10, 10, sourceConfig{
			cols: 1, rows: 1,
			pixels: opaquePixels(4, 4),
			rect:   image.Rect(0, 0, 4, 4),
			force:  100,
			script: script,
		})
		if err := fs.Fracture(w, src); err != nil {
			t.Fatalf("fracture: %v", err)
		}
		fs.Update(w)
		pieces := pieceEntities(w)
		if len(pieces) != 1 {
			t.Fatalf("pieces = %d, want 1", len(pieces))
		}
		body, _ := ecs.Get(w, pieces[0], component.PhysicsBodyComponent)
		return body.Impulse.Length()
	}

	base := launch("")
	doubled := launch(`scale := 2.0`)
	if math.Abs(doubled-2*base) > 1e-6 {
		t.Fatalf("scripted impulse = %v, want %v", doubled, 2*base)
	}
}
