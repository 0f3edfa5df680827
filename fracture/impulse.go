package fracture

import (
	"math"
	"math/rand"

	"github.com/jakecoffman/cp/v2"
)

// jitterRadius bounds the random perturbation added to the launch
// direction before renormalizing, as a fraction of the unit circle.
const jitterRadius = 0.3

// up is straight up in screen-down coordinates, used for the upward bias
// and as the fallback direction when a piece sits exactly on the origin.
var up = cp.Vector{X: 0, Y: -1}

// ImpulseParams configures launch impulse generation for one fracture
// event.
type ImpulseParams struct {
	// Force scales the normalized launch direction into a linear impulse.
	Force float64
	// UpwardModifier blends an upward bias into the direction. Zero keeps
	// the pure radial direction.
	UpwardModifier float64
	// TorqueRange bounds the uniformly random angular impulse; each piece
	// gets a torque in [-TorqueRange, +TorqueRange].
	TorqueRange float64
}

// Impulse derives a piece's launch impulse and torque from its world
// position relative to the fracture origin. The radial direction is
// perturbed by a bounded random vector so the burst is not perfectly
// symmetric, then biased upward and scaled by the configured force.
func Impulse(rng *rand.Rand, pos, origin cp.Vector, p ImpulseParams) (cp.Vector, float64) {
	dir := normalizeOr(pos.Sub(origin), up)

	jitter := randInDisc(rng, jitterRadius)
	dir = normalizeOr(dir.Add(jitter), dir)

	if p.UpwardModifier != 0 {
		dir = normalizeOr(dir.Add(up.Mult(p.UpwardModifier)), dir)
	}

	torque := (rng.Float64()*2 - 1) * p.TorqueRange
	return dir.Mult(p.Force), torque
}

// normalizeOr returns v normalized, or fallback when v is too short to
// carry a direction.
func normalizeOr(v, fallback cp.Vector) cp.Vector {
	length := v.Length()
	if length < 1e-9 {
		return fallback
	}
	return v.Mult(1 / length)
}

// randInDisc returns a uniformly distributed vector with magnitude at most
// radius.
func randInDisc(rng *rand.Rand, radius float64) cp.Vector {
	angle := rng.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(rng.Float64())
	sin, cos := math.Sincos(angle)
	return cp.Vector{X: r * cos, Y: r * sin}
}
