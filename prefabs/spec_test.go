package prefabs

import (
	"strings"
	"testing"

	"github.com/milk9111/fracture2d/ecs/component"
)

func TestLoadFractureSpecCrate(t *testing.T) {
	spec, err := LoadFractureSpec("crate.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Name != "crate" {
		t.Fatalf("name = %q, want crate", spec.Name)
	}
	if spec.Columns != 6 || spec.Rows != 6 {
		t.Fatalf("grid = %dx%d, want 6x6", spec.Columns, spec.Rows)
	}
	if spec.TriggerMode() != component.TriggerOnCollision {
		t.Fatalf("trigger mode = %v, want TriggerOnCollision", spec.TriggerMode())
	}
	if !spec.DestroyPieces || !spec.UseBlink {
		t.Fatalf("crate should destroy and blink its pieces")
	}
	if spec.PivotX != 0.5 || spec.PivotY != 0.5 {
		t.Fatalf("pivot = (%v, %v), want centered default", spec.PivotX, spec.PivotY)
	}
}

func TestLoadFractureSpecBomb(t *testing.T) {
	spec, err := LoadFractureSpec("bomb.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.TriggerMode() != component.TriggerAutoStart {
		t.Fatalf("trigger mode = %v, want TriggerAutoStart", spec.TriggerMode())
	}
	if spec.StartDelay != 2.5 {
		t.Fatalf("start delay = %v, want 2.5", spec.StartDelay)
	}
	if !strings.Contains(spec.ForceScript, "scale") {
		t.Fatalf("bomb should carry a force script, got %q", spec.ForceScript)
	}
}

func TestLoadFractureSpecMissing(t *testing.T) {
	if _, err := LoadFractureSpec("no_such_prefab.yaml"); err == nil {
		t.Fatalf("loading a missing prefab should fail")
	}
}

func TestApplyDefaults(t *testing.T) {
	cases := []struct {
		name  string
		in    FractureSpec
		check func(t *testing.T, s FractureSpec)
	}{
		{
			name: "empty_gets_all_defaults",
			in:   FractureSpec{},
			check: func(t *testing.T, s FractureSpec) {
				if s.Columns != 1 || s.Rows != 1 {
					t.Fatalf("grid = %dx%d, want 1x1", s.Columns, s.Rows)
				}
				if s.Force != 200 || s.TorqueRange != 100 {
					t.Fatalf("force/torque = %v/%v, want 200/100", s.Force, s.TorqueRange)
				}
				if s.Lifetime != 5 || s.BlinkDuration != 1 || s.BlinkFrequency != 8 {
					t.Fatalf("lifecycle defaults wrong: %+v", s)
				}
				if s.ArmDelay != 0.05 || s.PixelsPerUnit != 1 {
					t.Fatalf("arm/ppu defaults wrong: %+v", s)
				}
				if s.PivotX != 0.5 || s.PivotY != 0.5 {
					t.Fatalf("pivot = (%v, %v), want (0.5, 0.5)", s.PivotX, s.PivotY)
				}
			},
		},
		{
			name: "explicit_values_kept",
			in:   FractureSpec{Columns: 8, Rows: 2, Force: 50, Lifetime: 2},
			check: func(t *testing.T, s FractureSpec) {
				if s.Columns != 8 || s.Rows != 2 || s.Force != 50 || s.Lifetime != 2 {
					t.Fatalf("explicit values were overridden: %+v", s)
				}
			},
		},
		{
			name: "explicit_corner_pivot_kept",
			in:   FractureSpec{PivotX: 0, PivotY: 1},
			check: func(t *testing.T, s FractureSpec) {
				if s.PivotX != 0 || s.PivotY != 1 {
					t.Fatalf("pivot = (%v, %v), want (0, 1)", s.PivotX, s.PivotY)
				}
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := c.in
			s.applyDefaults()
			c.check(t, s)
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      FractureSpec
		wantErr bool
	}{
		{"valid_manual", FractureSpec{Trigger: "manual", Lifetime: 5, BlinkDuration: 1}, false},
		{"valid_empty_trigger", FractureSpec{Lifetime: 5, BlinkDuration: 1}, false},
		{"unknown_trigger", FractureSpec{Trigger: "on_fire", Lifetime: 5, BlinkDuration: 1}, true},
		{"blink_longer_than_lifetime", FractureSpec{Lifetime: 1, BlinkDuration: 2}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.in.validate()
			if c.wantErr && err == nil {
				t.Fatalf("want error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("want nil, got %v", err)
			}
		})
	}
}

func TestTriggerModeMapping(t *testing.T) {
	cases := []struct {
		trigger string
		want    component.TriggerMode
	}{
		{"", component.TriggerManual},
		{"manual", component.TriggerManual},
		{"auto", component.TriggerAutoStart},
		{"auto_start", component.TriggerAutoStart},
		{"AUTO", component.TriggerAutoStart},
		{"collision", component.TriggerOnCollision},
		{"trigger_enter", component.TriggerOnTriggerEnter},
	}
	for _, c := range cases {
		s := FractureSpec{Trigger: c.trigger}
		if got := s.TriggerMode(); got != c.want {
			t.Fatalf("TriggerMode(%q) = %v, want %v", c.trigger, got, c.want)
		}
	}
}
