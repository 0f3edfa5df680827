package fracture

import (
	"errors"
	"image"
)

// ErrSourceUnreadable is returned when the source sprite has no readable
// pixel data to slice.
var ErrSourceUnreadable = errors.New("fracture: source image is not readable")

// alphaThreshold16 is 1% of full alpha on the 16-bit scale returned by
// image.Color.RGBA(). Cells whose pixels never exceed it are skipped.
const alphaThreshold16 = uint32(0xffff / 100)

// Tile is one non-empty cell of the fracture grid. PixelRect is in the
// coordinate space of the source image, clamped to the texture rect, so
// tiles along the far edges may be narrower or shorter than interior ones.
type Tile struct {
	GridX     int
	GridY     int
	PixelRect image.Rectangle
}

// Slicer partitions a texture rect of a source image into a columns×rows
// grid and yields the non-empty cells in row-major order, one row per
// NextRow call so callers can spread the pixel scan across frames.
type Slicer struct {
	src   image.Image
	rect  image.Rectangle
	cols  int
	rows  int
	cellW int
	cellH int
	row   int
}

// NewSlicer validates the source and prepares a slicing pass. Columns and
// rows below 1 are clamped to 1.
func NewSlicer(src image.Image, rect image.Rectangle, cols, rows int) (*Slicer, error) {
	if src == nil {
		return nil, ErrSourceUnreadable
	}
	bounds := src.Bounds()
	if bounds.Empty() || rect.Empty() || !rect.In(bounds) {
		return nil, ErrSourceUnreadable
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Slicer{
		src:   src,
		rect:  rect,
		cols:  cols,
		rows:  rows,
		cellW: ceilDiv(rect.Dx(), cols),
		cellH: ceilDiv(rect.Dy(), rows),
	}, nil
}

// Columns returns the grid column count after clamping.
func (s *Slicer) Columns() int { return s.cols }

// Rows returns the grid row count after clamping.
func (s *Slicer) Rows() int { return s.rows }

// CellSize returns the interior tile size in pixels.
func (s *Slicer) CellSize() (int, int) { return s.cellW, s.cellH }

// Done reports whether every row has been yielded.
func (s *Slicer) Done() bool { return s.row >= s.rows }

// NextRow yields the non-empty tiles of the next grid row, left to right.
// It returns false once all rows have been consumed. A row whose cells are
// all transparent yields an empty slice and true.
func (s *Slicer) NextRow() ([]Tile, bool) {
	if s == nil || s.Done() {
		return nil, false
	}
	gy := s.row
	s.row++

	top := s.rect.Min.Y + gy*s.cellH
	bottom := min(top+s.cellH, s.rect.Max.Y)
	if top >= bottom {
		return nil, true
	}

	var tiles []Tile
	for gx := 0; gx < s.cols; gx++ {
		left := s.rect.Min.X + gx*s.cellW
		right := min(left+s.cellW, s.rect.Max.X)
		if left >= right {
			continue
		}
		cell := image.Rect(left, top, right, bottom)
		if !s.hasVisiblePixel(cell) {
			continue
		}
		tiles = append(tiles, Tile{GridX: gx, GridY: gy, PixelRect: cell})
	}
	return tiles, true
}

// Tiles runs a full slicing pass and returns every non-empty tile in
// row-major order. Convenience for callers that do not need the
// row-per-frame pacing of NextRow.
func Tiles(src image.Image, rect image.Rectangle, cols, rows int) ([]Tile, error) {
	s, err := NewSlicer(src, rect, cols, rows)
	if err != nil {
		return nil, err
	}
	var out []Tile
	for {
		row, more := s.NextRow()
		if !more {
			return out, nil
		}
		out = append(out, row...)
	}
}

func (s *Slicer) hasVisiblePixel(cell image.Rectangle) bool {
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			if _, _, _, a := s.src.At(x, y).RGBA(); a > alphaThreshold16 {
				return true
			}
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
