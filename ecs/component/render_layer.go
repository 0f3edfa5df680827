package component

// RenderLayer orders sprite drawing; lower indices draw first. Pieces copy
// the layer of the sprite they were fractured from.
type RenderLayer struct {
	Index int
}

var RenderLayerComponent = NewComponent[RenderLayer]()
