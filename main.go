package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	seed := flag.Int64("seed", time.Now().UnixNano(), "explosion randomness seed")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("fracture2d")

	if err := ebiten.RunGame(NewGame(*seed)); err != nil {
		log.Fatal(err)
	}
}
