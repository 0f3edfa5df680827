package component

import "github.com/jakecoffman/cp/v2"

// BodyKind selects the collision type the physics system assigns to an
// entity's shape, which decides which contact events it produces.
type BodyKind int

const (
	// BodySolid is inert scenery: walls, floors, debris catchers.
	BodySolid BodyKind = iota
	// BodySource marks an unfractured sprite; contacts feed the
	// collision/trigger-enter fracture triggers.
	BodySource
	// BodyPiece marks a fracture piece; cross-group contacts feed the
	// piece lifecycle.
	BodyPiece
)

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Body and Shape are populated by the physics system on first sync.
type PhysicsBody struct {
	Body  *cp.Body
	Shape *cp.Shape

	Kind       BodyKind
	Width      float64
	Height     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Static     bool
	// Sensor makes the shape a non-blocking trigger volume; contacts are
	// still reported.
	Sensor bool
	// Group is the Chipmunk shape-filter group. Shapes sharing a nonzero
	// group never collide with each other; every piece of one fracture
	// event shares its group id.
	Group uint

	// Impulse and Torque are applied once when the body is created, then
	// cleared. The fracture orchestrator uses them to launch pieces.
	Impulse cp.Vector
	Torque  float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
