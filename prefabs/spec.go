package prefabs

import (
	"fmt"
	"strings"

	"github.com/milk9111/fracture2d/ecs/component"
	"gopkg.in/yaml.v3"
)

// FractureSpec is the YAML prefab for a fracturable sprite: grid
// resolution, trigger condition, explosion tuning, and the piece
// lifecycle parameters.
type FractureSpec struct {
	Name string `yaml:"name"`

	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`

	// Trigger is one of manual, auto, collision, trigger_enter.
	Trigger    string  `yaml:"trigger"`
	StartDelay float64 `yaml:"start_delay"`

	Force          float64 `yaml:"force"`
	UpwardModifier float64 `yaml:"upward_modifier"`
	TorqueRange    float64 `yaml:"torque_range"`

	PieceMass       float64 `yaml:"piece_mass"`
	PieceFriction   float64 `yaml:"piece_friction"`
	PieceElasticity float64 `yaml:"piece_elasticity"`
	PiecesAsTrigger bool    `yaml:"pieces_as_trigger"`

	DestroyPieces      bool    `yaml:"destroy_pieces"`
	Lifetime           float64 `yaml:"lifetime"`
	DestroyOnCollision bool    `yaml:"destroy_on_collision"`
	UseBlink           bool    `yaml:"use_blink"`
	BlinkDuration      float64 `yaml:"blink_duration"`
	BlinkFrequency     float64 `yaml:"blink_frequency"`
	ArmDelay           float64 `yaml:"arm_delay"`

	PixelsPerUnit float64 `yaml:"pixels_per_unit"`
	// PivotX/PivotY are the sprite pivot as fractions of the texture
	// rect, 0.5/0.5 being the center.
	PivotX float64 `yaml:"pivot_x"`
	PivotY float64 `yaml:"pivot_y"`

	RenderLayer int `yaml:"render_layer"`

	// ForceScript is an optional Tengo snippet that assigns `scale` from
	// `x`, `y`, and `dist` to vary the launch force per piece.
	ForceScript string `yaml:"force_script"`
}

// LoadFractureSpec loads and validates a fracture prefab by file name.
func LoadFractureSpec(name string) (*FractureSpec, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	var spec FractureSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}
	spec.applyDefaults()
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &spec, nil
}

// TriggerMode maps the YAML trigger name to its component constant.
// Unknown names fall back to manual.
func (s *FractureSpec) TriggerMode() component.TriggerMode {
	switch strings.ToLower(s.Trigger) {
	case "auto", "auto_start":
		return component.TriggerAutoStart
	case "collision":
		return component.TriggerOnCollision
	case "trigger_enter":
		return component.TriggerOnTriggerEnter
	default:
		return component.TriggerManual
	}
}

func (s *FractureSpec) applyDefaults() {
	if s.Columns < 1 {
		s.Columns = 1
	}
	if s.Rows < 1 {
		s.Rows = 1
	}
	if s.Force == 0 {
		s.Force = 200
	}
	if s.TorqueRange == 0 {
		s.TorqueRange = 100
	}
	if s.PieceMass <= 0 {
		s.PieceMass = 0.1
	}
	if s.PieceFriction == 0 {
		s.PieceFriction = 0.6
	}
	if s.Lifetime <= 0 {
		s.Lifetime = 5
	}
	if s.BlinkDuration <= 0 {
		s.BlinkDuration = 1
	}
	if s.BlinkFrequency <= 0 {
		s.BlinkFrequency = 8
	}
	if s.ArmDelay <= 0 {
		s.ArmDelay = 0.05
	}
	if s.PixelsPerUnit <= 0 {
		s.PixelsPerUnit = 1
	}
	if s.PivotX == 0 && s.PivotY == 0 {
		s.PivotX, s.PivotY = 0.5, 0.5
	}
}

func (s *FractureSpec) validate() error {
	if s.BlinkDuration > s.Lifetime {
		return fmt.Errorf("blink_duration %v exceeds lifetime %v", s.BlinkDuration, s.Lifetime)
	}
	if s.Trigger != "" && s.TriggerMode() == component.TriggerManual && !strings.EqualFold(s.Trigger, "manual") {
		return fmt.Errorf("unknown trigger %q", s.Trigger)
	}
	return nil
}
