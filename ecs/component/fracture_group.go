package component

import "github.com/hajimehoshi/ebiten/v2"

// FractureGroup is the logical parent of all pieces from one fracture
// event. It carries the shared destruction callback and the bulk-cleanup
// timer: the group entity is destroyed once the last piece's maximum
// possible lifetime has elapsed, even when collisions emptied the group
// earlier. That safety net also bounds how long the shared pixel buffer
// must stay alive.
type FractureGroup struct {
	Group uint64

	// Live is the number of pieces not yet destroyed.
	Live int

	// Armed becomes true once spawning completes; only then does TTL
	// count down. TTL stays disarmed when pieces have no lifetime.
	Armed bool
	TTL   float64

	// Image is the GPU pixel buffer every piece sprite sub-slices. When
	// OwnsImage is set the group deallocates it at cleanup; pieces are
	// guaranteed gone by then.
	Image     *ebiten.Image
	OwnsImage bool

	OnPieceDestroyed func()
}

var FractureGroupComponent = NewComponent[FractureGroup]()
