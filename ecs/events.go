package ecs

// Event is a frame-scoped notification payload.
type Event struct {
	Type string
	Data any
}

// Event types pushed by the fracture systems.
const (
	EventSourceContact    = "source_contact"
	EventPieceContact     = "piece_contact"
	EventFractureStarted  = "fracture_started"
	EventFractureComplete = "fracture_complete"
	EventPieceDestroyed   = "piece_destroyed"
)

// SourceContactEvent fires when an unfractured source's collider touches
// something, feeding the collision/trigger-enter fracture triggers.
type SourceContactEvent struct {
	Source Entity
	Other  Entity
	Sensor bool
}

// PieceContactEvent fires when a piece's collider begins contact with an
// object outside its fracture group. Sibling contacts are filtered out in
// the physics layer and never appear here.
type PieceContactEvent struct {
	Piece      Entity
	Other      Entity
	OtherGroup uint64
}

// FractureStartedEvent fires when a trigger is accepted and slicing begins.
type FractureStartedEvent struct {
	Source Entity
	Group  uint64
}

// FractureCompletedEvent fires once per fracture event, after the last
// row has been sliced and every piece spawned.
type FractureCompletedEvent struct {
	Source Entity
	Group  uint64
	Pieces int
}

// PieceDestroyedEvent fires exactly once per piece, at the Destroyed
// transition.
type PieceDestroyedEvent struct {
	Piece Entity
	Group uint64
}

// EventQueue is a FIFO of the current frame's events.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Items returns the events pushed so far this frame.
func (q *EventQueue) Items() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
