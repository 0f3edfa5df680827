package component

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is an entity's visual. When UseSource is set, only the Source
// sub-rectangle of Image is drawn; fracture pieces use this to share the
// source sprite's pixel buffer instead of copying it. Hidden supports the
// blink-warning phase; the zero value renders normally.
type Sprite struct {
	Image     *ebiten.Image
	Source    image.Rectangle
	UseSource bool
	// OriginX/OriginY is the rotation/placement origin in image pixels.
	OriginX float64
	OriginY float64
	// PixelsPerUnit converts image pixels to world units at draw time.
	// Zero means 1.
	PixelsPerUnit float64
	Hidden        bool
}

var SpriteComponent = NewComponent[Sprite]()
