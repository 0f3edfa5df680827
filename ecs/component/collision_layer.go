package component

// CollisionLayer declares a collision category and mask so the physics
// system can selectively enable collisions between groups of objects. A
// zero Category is treated as 1; a zero Mask collides with everything.
type CollisionLayer struct {
	Category uint32 `yaml:"category,omitempty"`
	Mask     uint32 `yaml:"mask,omitempty"`
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
