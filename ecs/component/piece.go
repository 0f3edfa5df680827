package component

// PieceState is the lifecycle state of one fracture piece.
type PieceState int

const (
	// PieceSpawned is the creation state; it advances to PieceArming on
	// the first lifecycle tick.
	PieceSpawned PieceState = iota
	// PieceArming suppresses collision-triggered destruction for the arm
	// delay so a piece cannot destroy itself against its siblings at the
	// moment of spawn.
	PieceArming
	// PieceArmed is the live state: both destruction pathways are active.
	PieceArmed
	// PieceBlinking is the visibility-toggling warning phase before
	// destruction.
	PieceBlinking
	// PieceDestroyed is terminal.
	PieceDestroyed
)

// Piece holds one fracture piece's lifecycle state and the per-event
// configuration copied from its source at spawn time. All timers are in
// seconds and advance only through lifecycle ticks.
type Piece struct {
	// Group identifies the fracture event this piece belongs to. Pieces
	// sharing a group never destroy each other.
	Group uint64

	State PieceState
	// Age counts seconds since spawn. The lifetime countdown, once armed,
	// is never paused or extended.
	Age float64

	ArmDelay           float64
	DestroyPieces      bool
	Lifetime           float64
	DestroyOnCollision bool

	UseBlink       bool
	BlinkDuration  float64
	BlinkFrequency float64
	// BlinkLeft counts down the active blink phase; it is set when the
	// piece enters PieceBlinking by either destruction pathway.
	BlinkLeft float64
}

var PieceComponent = NewComponent[Piece]()
