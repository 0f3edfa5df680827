package common

// TicksPerSecond is the fixed update rate of the frame loop.
const TicksPerSecond = 60

// FrameDt is the fixed timestep in seconds advanced per update tick.
const FrameDt = 1.0 / TicksPerSecond

// Gravity is the default downward acceleration in world units per second
// squared (screen-down Y).
const Gravity = 600.0

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
