package fracture

import (
	"image"
	"math"
	"testing"

	"github.com/jakecoffman/cp/v2"
)

func TestPiecePositionCenteredPivot(t *testing.T) {
	// 4x4 sprite, pivot at center, ppu 1: tile centers should mirror
	// around the origin.
	img := opaqueImage(4, 4)
	rect := img.Bounds()
	req := Request{
		Origin:        cp.Vector{X: 100, Y: 50},
		PixelsPerUnit: 1,
		Pivot:         cp.Vector{X: 2, Y: 2},
	}

	tiles, err := Tiles(img, rect, 2, 2)
	if err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	want := []cp.Vector{
		{X: 99, Y: 49}, {X: 101, Y: 49},
		{X: 99, Y: 51}, {X: 101, Y: 51},
	}
	for i, tile := range tiles {
		got := PiecePosition(tile, rect, req)
		if math.Abs(got.X-want[i].X) > 1e-9 || math.Abs(got.Y-want[i].Y) > 1e-9 {
			t.Fatalf("tile %d at %v, want %v", i, got, want[i])
		}
	}
}

func TestPiecePositionPixelsPerUnit(t *testing.T) {
	img := opaqueImage(8, 8)
	rect := img.Bounds()
	req := Request{
		PixelsPerUnit: 4,
		Pivot:         cp.Vector{X: 4, Y: 4},
	}

	tiles, err := Tiles(img, rect, 2, 2)
	if err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	// Cells are 4px; at 4 ppu each tile is 1 world unit, centers at ±0.5.
	got := PiecePosition(tiles[0], rect, req)
	if math.Abs(got.X+0.5) > 1e-9 || math.Abs(got.Y+0.5) > 1e-9 {
		t.Fatalf("first tile at %v, want (-0.5,-0.5)", got)
	}
	w, h := PieceSize(tiles[0], req)
	if math.Abs(w-1) > 1e-9 || math.Abs(h-1) > 1e-9 {
		t.Fatalf("piece size %vx%v, want 1x1", w, h)
	}
}

func TestPiecePositionRotation(t *testing.T) {
	img := opaqueImage(2, 2)
	rect := img.Bounds()
	req := Request{
		Rotation:      math.Pi / 2,
		PixelsPerUnit: 1,
		Pivot:         cp.Vector{X: 1, Y: 1},
	}

	tiles, err := Tiles(img, rect, 2, 2)
	if err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	// Local (-0.5,-0.5) rotated 90° clockwise (screen-down) is (0.5,-0.5).
	got := PiecePosition(tiles[0], rect, req)
	if math.Abs(got.X-0.5) > 1e-9 || math.Abs(got.Y+0.5) > 1e-9 {
		t.Fatalf("rotated tile at %v, want (0.5,-0.5)", got)
	}
}

func TestReassemblyMatchesSourceBounds(t *testing.T) {
	cases := []struct {
		name       string
		imgW, imgH int
		cols, rows int
		ppu        float64
	}{
		{"square_grid", 12, 12, 3, 3, 1},
		{"uneven_grid", 10, 7, 4, 3, 1},
		{"scaled_units", 16, 8, 4, 2, 8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img := opaqueImage(c.imgW, c.imgH)
			rect := img.Bounds()
			req := Request{
				Origin:        cp.Vector{X: 3, Y: -2},
				PixelsPerUnit: c.ppu,
				Pivot:         cp.Vector{X: float64(c.imgW) / 2, Y: float64(c.imgH) / 2},
			}

			tiles, err := Tiles(img, rect, c.cols, c.rows)
			if err != nil {
				t.Fatalf("Tiles: %v", err)
			}

			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for _, tile := range tiles {
				pos := PiecePosition(tile, rect, req)
				w, h := PieceSize(tile, req)
				minX = math.Min(minX, pos.X-w/2)
				minY = math.Min(minY, pos.Y-h/2)
				maxX = math.Max(maxX, pos.X+w/2)
				maxY = math.Max(maxY, pos.Y+h/2)
			}

			wantW := float64(c.imgW) / c.ppu
			wantH := float64(c.imgH) / c.ppu
			tol := 1 / c.ppu
			if math.Abs((maxX-minX)-wantW) > tol || math.Abs((maxY-minY)-wantH) > tol {
				t.Fatalf("reassembled bounds %vx%v, want %vx%v", maxX-minX, maxY-minY, wantW, wantH)
			}
			wantMinX := req.Origin.X - float64(c.imgW)/2/c.ppu
			wantMinY := req.Origin.Y - float64(c.imgH)/2/c.ppu
			if math.Abs(minX-wantMinX) > tol || math.Abs(minY-wantMinY) > tol {
				t.Fatalf("reassembled min (%v,%v), want (%v,%v)", minX, minY, wantMinX, wantMinY)
			}
		})
	}
}

func TestPiecePositionAtlasSubRect(t *testing.T) {
	// The texture rect's own offset inside the atlas must not leak into
	// world placement.
	atlas := opaqueImage(32, 32)
	rect := image.Rect(16, 16, 20, 20)
	req := Request{PixelsPerUnit: 1, Pivot: cp.Vector{X: 2, Y: 2}}

	tiles, err := Tiles(atlas, rect, 2, 2)
	if err != nil {
		t.Fatalf("Tiles: %v", err)
	}
	got := PiecePosition(tiles[0], rect, req)
	if math.Abs(got.X+1) > 1e-9 || math.Abs(got.Y+1) > 1e-9 {
		t.Fatalf("first atlas tile at %v, want (-1,-1)", got)
	}
}
