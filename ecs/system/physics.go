package system

import (
	"github.com/jakecoffman/cp/v2"
	"github.com/milk9111/fracture2d/common"
	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeSource
	collisionTypePiece
)

// PhysicsSystem owns the Chipmunk space. It creates bodies for entities
// carrying PhysicsBody+Transform, applies their spawn impulses, steps the
// space at a fixed dt, writes poses back to transforms, and turns contact
// begins into world events for the fracture systems.
type PhysicsSystem struct {
	space         *cp.Space
	dt            float64
	handlersReady bool

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]ecs.Entity

	// contacts collected by collision handlers during Step, flushed to
	// the event queue afterwards.
	pendingSource []ecs.SourceContactEvent
	pendingPiece  []ecs.PieceContactEvent
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	static bool
}

func NewPhysicsSystem() *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity})
	return &PhysicsSystem{
		space:    space,
		dt:       common.FrameDt,
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]ecs.Entity),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	ps.ensureHandlers(w)
	ps.cleanupEntities(w)
	ps.syncEntities(w)

	ps.space.Step(ps.dt)

	ps.flushContacts(w)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) ensureHandlers(w *ecs.World) {
	if ps.handlersReady || ps.space == nil {
		return
	}

	sourceHandler := ps.space.NewWildcardCollisionHandler(collisionTypeSource)
	sourceHandler.UserData = ps
	sourceHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		src, other := sys.resolvePair(shapeA, shapeB, collisionTypeSource)
		if src == 0 {
			return true
		}
		sys.pendingSource = append(sys.pendingSource, ecs.SourceContactEvent{
			Source: src,
			Other:  other,
			Sensor: shapeA.Sensor() || shapeB.Sensor(),
		})
		return true
	}

	pieceHandler := ps.space.NewWildcardCollisionHandler(collisionTypePiece)
	pieceHandler.UserData = ps
	pieceHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		piece, other := sys.resolvePair(shapeA, shapeB, collisionTypePiece)
		if piece == 0 {
			return true
		}
		// Same-group pairs are already excluded by the shape filter;
		// the group id still travels with the event so the lifecycle
		// system can compare by value.
		sys.pendingPiece = append(sys.pendingPiece, ecs.PieceContactEvent{
			Piece:      piece,
			Other:      other,
			OtherGroup: uint64(shapeOther(shapeA, shapeB, collisionTypePiece).Filter.Group),
		})
		return true
	}

	ps.handlersReady = true
}

// resolvePair picks the entity whose shape has the wanted collision type
// and the entity on the other side (zero if the other shape is unmanaged,
// e.g. a static segment).
func (ps *PhysicsSystem) resolvePair(a, b *cp.Shape, want cp.CollisionType) (ecs.Entity, ecs.Entity) {
	if a.CollisionType() == want {
		return ps.shapes[a], ps.shapes[b]
	}
	if b.CollisionType() == want {
		return ps.shapes[b], ps.shapes[a]
	}
	return 0, 0
}

func shapeOther(a, b *cp.Shape, want cp.CollisionType) *cp.Shape {
	if a.CollisionType() == want {
		return b
	}
	return a
}

func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	events := w.Events()
	for _, evt := range ps.pendingSource {
		events.Push(ecs.Event{Type: ecs.EventSourceContact, Data: evt})
	}
	for _, evt := range ps.pendingPiece {
		events.Push(ecs.Event{Type: ecs.EventPieceContact, Data: evt})
	}
	ps.pendingSource = ps.pendingSource[:0]
	ps.pendingPiece = ps.pendingPiece[:0]
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	if ps.space == nil {
		return
	}

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok {
			continue
		}
		if info := ps.entities[e]; info != nil {
			if bodyComp.Body == nil || bodyComp.Shape == nil {
				bodyComp.Body = info.body
				bodyComp.Shape = info.shape
				_ = ecs.Add(w, e, component.PhysicsBodyComponent, bodyComp)
			}
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}

		var layer component.CollisionLayer
		layer, _ = ecs.Get(w, e, component.CollisionLayerComponent)

		info := ps.createBodyInfo(transform, &bodyComp, layer)
		if info == nil {
			continue
		}
		ps.entities[e] = info
		ps.shapes[info.shape] = e

		bodyComp.Body = info.body
		bodyComp.Shape = info.shape
		_ = ecs.Add(w, e, component.PhysicsBodyComponent, bodyComp)
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform component.Transform, bodyComp *component.PhysicsBody, layer component.CollisionLayer) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}

	collisionType := collisionTypeSolid
	switch bodyComp.Kind {
	case component.BodySource:
		collisionType = collisionTypeSource
	case component.BodyPiece:
		collisionType = collisionTypePiece
	}

	filter := cp.SHAPE_FILTER_ALL
	if layer.Category != 0 {
		filter.Categories = uint(layer.Category)
	}
	if layer.Mask != 0 {
		filter.Mask = uint(layer.Mask)
	}
	if bodyComp.Group != 0 {
		filter.Group = bodyComp.Group
	}

	if bodyComp.Static {
		center := cp.Vector{X: transform.X, Y: transform.Y}
		bb := cp.BB{
			L: center.X - width/2,
			B: center.Y - height/2,
			R: center.X + width/2,
			T: center.Y + height/2,
		}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		shape.SetCollisionType(collisionType)
		shape.SetFilter(filter)
		shape.SetSensor(bodyComp.Sensor)
		ps.space.AddShape(shape)
		return &bodyInfo{body: ps.space.StaticBody, shape: shape, static: true}
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}

	body := cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(transform.Rotation)

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetCollisionType(collisionType)
	shape.SetFilter(filter)
	shape.SetSensor(bodyComp.Sensor)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	if bodyComp.Impulse != (cp.Vector{}) {
		body.ApplyImpulseAtWorldPoint(bodyComp.Impulse, body.Position())
		bodyComp.Impulse = cp.Vector{}
	}
	if bodyComp.Torque != 0 {
		body.SetAngularVelocity(body.AngularVelocity() + bodyComp.Torque/body.Moment())
		bodyComp.Torque = 0
	}

	return &bodyInfo{body: body, shape: shape}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok || bodyComp.Body == nil || bodyComp.Static {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
		_ = ecs.Add(w, e, component.TransformComponent, transform)
	}
}

// cleanupEntities reaps bodies whose entity died or dropped its
// PhysicsBody component (a fracturing source disables its collider by
// removing the component).
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyComponent) {
			continue
		}
		if info.shape != nil {
			ps.space.RemoveShape(info.shape)
			delete(ps.shapes, info.shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}
