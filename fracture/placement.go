package fracture

import (
	"image"
	"math"

	"github.com/jakecoffman/cp/v2"
)

// Request is a snapshot of the source sprite's transform and pixel metrics
// taken at the moment a fracture starts. Pieces are placed against this
// snapshot; later movement of the (dying) source does not affect them.
type Request struct {
	// Origin is the sprite's world position, i.e. where the pivot sits.
	Origin cp.Vector
	// Rotation is the sprite's world rotation in radians (screen-down Y).
	Rotation float64
	// ScaleX and ScaleY are the sprite's world scale. Zero means 1.
	ScaleX float64
	ScaleY float64
	// PixelsPerUnit converts source pixels to world units. Zero means 1.
	PixelsPerUnit float64
	// Pivot is the sprite's local origin in pixels, measured from the
	// texture rect's top-left corner.
	Pivot cp.Vector
}

func (r Request) scale() (float64, float64) {
	sx, sy := r.ScaleX, r.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

func (r Request) ppu() float64 {
	if r.PixelsPerUnit <= 0 {
		return 1
	}
	return r.PixelsPerUnit
}

// PiecePosition returns the world-space center of a tile such that the
// assembly of all tiles reproduces the source sprite's silhouette. The
// tile's own clamped pixel rect drives the math, so edge tiles that came
// out narrower than the interior cell size still land exactly.
func PiecePosition(t Tile, rect image.Rectangle, req Request) cp.Vector {
	ppu := req.ppu()
	sx, sy := req.scale()

	// Tile center offset from the pivot, in world units before transform.
	cx := float64(t.PixelRect.Min.X-rect.Min.X) + float64(t.PixelRect.Dx())/2
	cy := float64(t.PixelRect.Min.Y-rect.Min.Y) + float64(t.PixelRect.Dy())/2
	local := cp.Vector{
		X: (cx - req.Pivot.X) / ppu * sx,
		Y: (cy - req.Pivot.Y) / ppu * sy,
	}

	sin, cos := math.Sincos(req.Rotation)
	rotated := cp.Vector{
		X: local.X*cos - local.Y*sin,
		Y: local.X*sin + local.Y*cos,
	}
	return req.Origin.Add(rotated)
}

// PieceSize returns the tile's world-unit dimensions under the request's
// scale, used to size the piece's collider.
func PieceSize(t Tile, req Request) (float64, float64) {
	ppu := req.ppu()
	sx, sy := req.scale()
	w := float64(t.PixelRect.Dx()) / ppu * math.Abs(sx)
	h := float64(t.PixelRect.Dy()) / ppu * math.Abs(sy)
	return w, h
}
