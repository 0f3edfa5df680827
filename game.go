package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/fracture2d/ecs"
	"github.com/milk9111/fracture2d/ecs/component"
	"github.com/milk9111/fracture2d/ecs/entity"
	"github.com/milk9111/fracture2d/ecs/system"
	"github.com/milk9111/fracture2d/prefabs"
)

const (
	baseWidth  = 960
	baseHeight = 540
)

type Game struct {
	world    *ecs.World
	fracture *system.FractureSystem
	render   *system.RenderSystem

	crateSpec *prefabs.FractureSpec
	bombSpec  *prefabs.FractureSpec
	watcher   *prefabs.Watcher

	face ebtext.Face

	fractures int
	destroyed int
}

func NewGame(seed int64) *Game {
	crateSpec, err := prefabs.LoadFractureSpec("crate.yaml")
	if err != nil {
		log.Fatalf("load crate prefab: %v", err)
	}
	bombSpec, err := prefabs.LoadFractureSpec("bomb.yaml")
	if err != nil {
		log.Fatalf("load bomb prefab: %v", err)
	}

	w := ecs.NewWorld()
	fractureSystem := system.NewFractureSystem(rand.New(rand.NewSource(seed)))
	w.AddSystem(system.NewPhysicsSystem())
	w.AddSystem(fractureSystem)
	w.AddSystem(system.NewLifecycleSystem())

	g := &Game{
		world:     w,
		fracture:  fractureSystem,
		render:    system.NewRenderSystem(),
		crateSpec: crateSpec,
		bombSpec:  bombSpec,
		face:      ebtext.NewGoXFace(basicfont.Face7x13),
	}

	if _, err := entity.NewGround(w, baseWidth/2, baseHeight-10, baseWidth, 20); err != nil {
		log.Fatalf("build ground: %v", err)
	}

	// Hot reload for prefab edits. Only works when running next to the
	// prefabs/ directory; otherwise the embedded copies are all there is.
	if watcher, err := prefabs.NewWatcher("prefabs"); err == nil {
		g.watcher = watcher
	} else {
		log.Printf("prefab watch disabled: %v", err)
	}

	g.spawnCrate(baseWidth/2, 120)
	g.spawnBomb(baseWidth/4, baseHeight-80)
	return g
}

func (g *Game) spawnCrate(x, y float64) {
	img, pixels := crateImage(64, colornames.Peru, colornames.Saddlebrown)
	_, err := entity.NewFractureSource(g.world, entity.FractureSourceParams{
		Spec:       g.crateSpec,
		Img:        img,
		Pixels:     pixels,
		X:          x,
		Y:          y,
		Mass:       2,
		OwnsImage:  true,
		OnFracture: func() { g.fractures++ },
		OnPieceDestroyed: func() {
			g.destroyed++
		},
	})
	if err != nil {
		log.Printf("spawn crate: %v", err)
	}
}

func (g *Game) spawnBomb(x, y float64) {
	img, pixels := crateImage(48, colornames.Dimgray, colornames.Black)
	_, err := entity.NewFractureSource(g.world, entity.FractureSourceParams{
		Spec:       g.bombSpec,
		Img:        img,
		Pixels:     pixels,
		X:          x,
		Y:          y,
		Mass:       3,
		OwnsImage:  true,
		OnFracture: func() { g.fractures++ },
	})
	if err != nil {
		log.Printf("spawn bomb: %v", err)
	}
}

func (g *Game) Update() error {
	g.reloadPrefabs()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.spawnCrate(float64(x), float64(y))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		for _, e := range g.world.Query(component.FractureSourceComponent.Kind()) {
			if err := g.fracture.Fracture(g.world, e); err != nil {
				log.Printf("fracture: %v", err)
			}
		}
	}

	g.world.Update()
	return nil
}

// reloadPrefabs picks up edited prefab files so newly spawned sources use
// the fresh tuning. Already-spawned entities keep their old settings.
func (g *Game) reloadPrefabs() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			base := filepath.Base(name)
			spec, err := prefabs.LoadFractureSpec(base)
			if err != nil {
				log.Printf("reload prefab %s: %v", base, err)
				continue
			}
			switch spec.Name {
			case "crate":
				g.crateSpec = spec
			case "bomb":
				g.bombSpec = spec
			}
			log.Printf("reloaded prefab %s", base)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("prefab watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	g.render.Draw(g.world, screen)

	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.ColorScale.ScaleWithColor(colornames.White)
	msg := fmt.Sprintf("click: drop crate   space: fracture all   events: %d   pieces gone: %d   fps: %.0f",
		g.fractures, g.destroyed, ebiten.ActualFPS())
	ebtext.Draw(screen, msg, g.face, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

// crateImage draws a bordered box sprite and returns both the GPU image
// and the CPU pixels the slicer reads. No binary assets needed.
func crateImage(size int, fill, border color.RGBA) (*ebiten.Image, *image.RGBA) {
	pixels := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			onBorder := x < 3 || y < 3 || x >= size-3 || y >= size-3
			onCross := abs(x-y) < 2 || abs(x+y-size+1) < 2
			switch {
			case onBorder, onCross:
				pixels.SetRGBA(x, y, border)
			default:
				pixels.SetRGBA(x, y, fill)
			}
		}
	}
	return ebiten.NewImageFromImage(pixels), pixels
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
