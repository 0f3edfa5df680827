package system

import (
	"fmt"
	"image"
	"log"
	"math/rand"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp/v2"
	"github.com/milk9111/fracture2d/common"
	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
	"github.com/milk9111/fracture2d/ecs/entity"
	"github.com/milk9111/fracture2d/fracture"
)

// FractureSystem is the orchestrator: it watches source entities for
// trigger conditions, runs the slicing pass one grid row per frame so big
// grids never stall the frame loop, spawns pieces with placement and
// impulse, and handles source removal and group bulk cleanup.
type FractureSystem struct {
	rng       *rand.Rand
	dt        float64
	nextGroup uint64
	runs      map[ecs.Entity]*fractureRun
}

// fractureRun is the in-flight slicing state for one fracture event.
type fractureRun struct {
	slicer      *fracture.Slicer
	req         fracture.Request
	cfg         component.FractureSource
	rect        image.Rectangle
	img         *ebiten.Image
	layer       int
	group       uint64
	groupEntity ecs.Entity
	forceScript *tengo.Compiled
	spawned     int
}

func NewFractureSystem(rng *rand.Rand) *FractureSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &FractureSystem{
		rng:  rng,
		dt:   common.FrameDt,
		runs: make(map[ecs.Entity]*fractureRun),
	}
}

func (fs *FractureSystem) Update(w *ecs.World) {
	if fs == nil || w == nil {
		return
	}
	fs.checkTriggers(w)
	fs.advanceRuns(w)
	fs.cleanupGroups(w)
}

// Fracture manually triggers a source entity. Triggering an
// already-fractured source is a silent no-op; an unreadable source logs
// one diagnostic, latches the attempt, and returns the error.
func (fs *FractureSystem) Fracture(w *ecs.World, e ecs.Entity) error {
	src, ok := ecs.Get(w, e, component.FractureSourceComponent)
	if !ok {
		return fmt.Errorf("fracture: entity %s has no fracture source", e)
	}
	if src.Fractured {
		return nil
	}
	return fs.trigger(w, e, src)
}

func (fs *FractureSystem) checkTriggers(w *ecs.World) {
	contacts := make(map[ecs.Entity]bool)
	for _, evt := range w.Events().Items() {
		if c, ok := evt.Data.(ecs.SourceContactEvent); ok {
			contacts[c.Source] = true
		}
	}

	for _, e := range w.Query(component.FractureSourceComponent.Kind(), component.TransformComponent.Kind()) {
		src, ok := ecs.Get(w, e, component.FractureSourceComponent)
		if !ok || src.Fractured {
			continue
		}
		switch src.Trigger {
		case component.TriggerAutoStart:
			src.Elapsed += fs.dt
			if src.Elapsed >= src.StartDelay {
				_ = fs.trigger(w, e, src)
				continue
			}
			_ = ecs.Add(w, e, component.FractureSourceComponent, src)
		case component.TriggerOnCollision, component.TriggerOnTriggerEnter:
			if contacts[e] {
				_ = fs.trigger(w, e, src)
			}
		}
	}
}

func (fs *FractureSystem) trigger(w *ecs.World, e ecs.Entity, src component.FractureSource) error {
	// Latch first: a failed attempt is never retried automatically.
	src.Fractured = true
	_ = ecs.Add(w, e, component.FractureSourceComponent, src)

	slicer, err := fracture.NewSlicer(src.Pixels, src.TextureRect, src.Columns, src.Rows)
	if err != nil {
		log.Printf("fracture: source %s: %v", e, err)
		return err
	}

	transform, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return fmt.Errorf("fracture: entity %s has no transform", e)
	}
	sprite, hasSprite := ecs.Get(w, e, component.SpriteComponent)
	layer := 0
	if rl, ok := ecs.Get(w, e, component.RenderLayerComponent); ok {
		layer = rl.Index
	}

	// The original object stops rendering and colliding immediately; the
	// pieces take over its silhouette.
	if hasSprite {
		sprite.Hidden = true
		_ = ecs.Add(w, e, component.SpriteComponent, sprite)
	}
	ecs.Remove(w, e, component.PhysicsBodyComponent)

	fs.nextGroup++
	group := fs.nextGroup

	groupEntity := w.CreateEntity()
	_ = ecs.Add(w, groupEntity, component.FractureGroupComponent, component.FractureGroup{
		Group:            group,
		Image:            sprite.Image,
		OwnsImage:        src.OwnsImage,
		OnPieceDestroyed: src.OnPieceDestroyed,
	})

	run := &fractureRun{
		slicer: slicer,
		req: fracture.Request{
			Origin:        cp.Vector{X: transform.X, Y: transform.Y},
			Rotation:      transform.Rotation,
			ScaleX:        transform.ScaleX,
			ScaleY:        transform.ScaleY,
			PixelsPerUnit: src.PixelsPerUnit,
			Pivot:         src.Pivot,
		},
		cfg:         src,
		rect:        src.TextureRect,
		img:         sprite.Image,
		layer:       layer,
		group:       group,
		groupEntity: groupEntity,
	}
	if src.ForceScript != "" {
		run.forceScript = compileForceScript(src.ForceScript)
	}
	fs.runs[e] = run

	w.Events().Push(ecs.Event{Type: ecs.EventFractureStarted, Data: ecs.FractureStartedEvent{
		Source: e,
		Group:  group,
	}})
	return nil
}

func (fs *FractureSystem) advanceRuns(w *ecs.World) {
	for srcEntity, run := range fs.runs {
		// Cancellation: the owner died mid-slicing. Spawn nothing more;
		// pieces already out keep living and the group cleanup timer
		// still reclaims the shared buffer.
		if !w.IsAlive(srcEntity) {
			fs.armGroup(w, run)
			delete(fs.runs, srcEntity)
			continue
		}

		tiles, more := run.slicer.NextRow()
		if !more {
			fs.finish(w, srcEntity, run)
			continue
		}
		for _, tile := range tiles {
			fs.spawnPiece(w, run, tile)
		}
	}
}

func (fs *FractureSystem) spawnPiece(w *ecs.World, run *fractureRun, tile fracture.Tile) {
	pos := fracture.PiecePosition(tile, run.rect, run.req)
	pw, ph := fracture.PieceSize(tile, run.req)

	force := run.cfg.Force
	if run.forceScript != nil {
		force *= fs.forceScale(run, pos)
	}
	impulse, torque := fracture.Impulse(fs.rng, pos, run.req.Origin, fracture.ImpulseParams{
		Force:          force,
		UpwardModifier: run.cfg.UpwardModifier,
		TorqueRange:    run.cfg.TorqueRange,
	})

	_, err := entity.NewPiece(w, entity.PieceParams{
		Tile:     tile,
		Image:    run.img,
		Layer:    run.layer,
		Group:    run.group,
		Position: pos,
		Rotation: run.req.Rotation,
		ScaleX:   run.req.ScaleX,
		ScaleY:   run.req.ScaleY,
		Width:    pw,
		Height:   ph,
		PPU:      run.req.PixelsPerUnit,
		Impulse:  impulse,
		Torque:   torque,
		Source:   run.cfg,
	})
	if err != nil {
		log.Printf("fracture: spawn piece (%d,%d): %v", tile.GridX, tile.GridY, err)
		return
	}
	run.spawned++
}

func (fs *FractureSystem) finish(w *ecs.World, srcEntity ecs.Entity, run *fractureRun) {
	delete(fs.runs, srcEntity)

	if run.spawned == 0 {
		// Nothing visible to slice. No pieces means nothing holds the
		// group or the shared image.
		if group, ok := ecs.Get(w, run.groupEntity, component.FractureGroupComponent); ok {
			if group.OwnsImage && group.Image != nil {
				group.Image.Deallocate()
			}
		}
		w.DestroyEntity(run.groupEntity)
	} else {
		if group, ok := ecs.Get(w, run.groupEntity, component.FractureGroupComponent); ok {
			group.Live = run.spawned
			_ = ecs.Add(w, run.groupEntity, component.FractureGroupComponent, group)
		}
		fs.armGroup(w, run)
	}

	w.Events().Push(ecs.Event{Type: ecs.EventFractureComplete, Data: ecs.FractureCompletedEvent{
		Source: srcEntity,
		Group:  run.group,
		Pieces: run.spawned,
	}})
	if run.cfg.OnFracture != nil {
		run.cfg.OnFracture()
	}

	// The original object has been replaced by its pieces.
	w.DestroyEntity(srcEntity)
}

// armGroup starts the bulk-cleanup countdown at the maximum possible piece
// lifetime. Early piece destruction by collision does not shorten it; the
// timer is a safety net, not a refcount.
func (fs *FractureSystem) armGroup(w *ecs.World, run *fractureRun) {
	group, ok := ecs.Get(w, run.groupEntity, component.FractureGroupComponent)
	if !ok {
		return
	}
	if run.cfg.DestroyPieces {
		group.Armed = true
		group.TTL = run.cfg.Lifetime
	}
	_ = ecs.Add(w, run.groupEntity, component.FractureGroupComponent, group)
}

func (fs *FractureSystem) cleanupGroups(w *ecs.World) {
	for _, e := range w.Query(component.FractureGroupComponent.Kind()) {
		group, ok := ecs.Get(w, e, component.FractureGroupComponent)
		if !ok || !group.Armed {
			continue
		}
		group.TTL -= fs.dt
		if group.TTL > 0 {
			_ = ecs.Add(w, e, component.FractureGroupComponent, group)
			continue
		}
		// All pieces are past their maximum lifetime; the shared pixel
		// buffer can finally go.
		if group.OwnsImage && group.Image != nil {
			group.Image.Deallocate()
		}
		w.DestroyEntity(e)
	}
}

func (fs *FractureSystem) forceScale(run *fractureRun, pos cp.Vector) float64 {
	c := run.forceScript
	if c == nil {
		return 1
	}
	_ = c.Set("x", pos.X)
	_ = c.Set("y", pos.Y)
	_ = c.Set("dist", pos.Sub(run.req.Origin).Length())
	if err := c.Run(); err != nil {
		log.Printf("fracture: force script: %v", err)
		run.forceScript = nil
		return 1
	}
	scale := c.Get("scale").Float()
	if scale <= 0 {
		return 1
	}
	return scale
}

func compileForceScript(src string) *tengo.Compiled {
	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("math"))
	_ = script.Add("x", 0.0)
	_ = script.Add("y", 0.0)
	_ = script.Add("dist", 0.0)
	compiled, err := script.Compile()
	if err != nil {
		log.Printf("fracture: compile force script: %v", err)
		return nil
	}
	return compiled
}
