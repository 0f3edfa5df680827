package component

// Transform is an entity's world-space pose. X,Y are the entity's center
// in world units (screen-down Y). Zero scale is treated as 1.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

var TransformComponent = NewComponent[Transform]()
