package component

import (
	"image"

	"github.com/jakecoffman/cp/v2"
)

// TriggerMode selects what starts a fracture.
type TriggerMode int

const (
	// TriggerManual fractures only on an explicit API call.
	TriggerManual TriggerMode = iota
	// TriggerAutoStart fractures once StartDelay has elapsed.
	TriggerAutoStart
	// TriggerOnCollision fractures on the first physical contact.
	TriggerOnCollision
	// TriggerOnTriggerEnter fractures when something enters the source's
	// sensor volume.
	TriggerOnTriggerEnter
)

// FractureSource configures and tracks fracturing for one sprite entity.
// The config half is a snapshot of a prefab spec; the runtime half is the
// Fractured latch and the auto-start clock. Grid slicing state lives in
// the fracture system, not here.
type FractureSource struct {
	Columns int
	Rows    int

	Trigger    TriggerMode
	StartDelay float64

	Force          float64
	UpwardModifier float64
	TorqueRange    float64

	PieceMass       float64
	PieceFriction   float64
	PieceElasticity float64
	PiecesAsTrigger bool

	DestroyPieces      bool
	Lifetime           float64
	DestroyOnCollision bool
	UseBlink           bool
	BlinkDuration      float64
	BlinkFrequency     float64
	ArmDelay           float64

	// PixelsPerUnit and Pivot describe the sprite's pixel metrics. Pivot
	// is in pixels from the texture rect's top-left corner.
	PixelsPerUnit float64
	Pivot         cp.Vector

	// Pixels is the CPU-readable pixel buffer backing the sprite. A nil
	// Pixels (or a TextureRect outside its bounds) makes the source
	// unreadable and any fracture attempt fails.
	Pixels      image.Image
	TextureRect image.Rectangle

	// OwnsImage transfers ownership of the sprite's GPU image to the
	// fracture group, which deallocates it after the last piece is gone.
	// Leave false for images shared with other entities.
	OwnsImage bool

	// ForceScript is an optional Tengo expression evaluated per piece
	// with `x`, `y` (world position) and `dist` (distance from the
	// fracture origin); it must assign `scale`, which multiplies Force.
	ForceScript string

	// OnFracture is invoked exactly once per fracture event, after every
	// piece has been spawned.
	OnFracture func()
	// OnPieceDestroyed is invoked exactly once per piece, at its
	// Destroyed transition.
	OnPieceDestroyed func()

	// Fractured latches after the first accepted trigger, including
	// attempts that failed on an unreadable source. It is never reset.
	Fractured bool
	// Elapsed is the auto-start clock.
	Elapsed float64
}

var FractureSourceComponent = NewComponent[FractureSource]()
