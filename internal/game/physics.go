package game

import "math"

// Pure single-axis physics primitives. Each entity picks one boundary policy
// per boundary and applies it every tick: the ball reflects off walls with
// damping, players clamp-and-stop at the field edge.

// Integrate advances position by velocity and decays velocity geometrically.
func Integrate(p, v, friction float64) (float64, float64) {
	return p + v, v * friction
}

// Reflect applies the reflect-with-damping boundary policy on [lo, hi]:
// the position is mirrored back inside and the velocity component negated,
// scaled by the restitution factor.
func Reflect(p, v, lo, hi, restitution float64) (float64, float64) {
	if p < lo {
		return lo + (lo-p)*restitution, -v * restitution
	}
	if p > hi {
		return hi - (p-hi)*restitution, -v * restitution
	}
	return p, v
}

// ClampStop applies the clamp-and-stop boundary policy on [lo, hi]: the
// position is pinned to the boundary and the velocity component zeroed.
func ClampStop(p, v, lo, hi float64) (float64, float64) {
	if p < lo {
		return lo, 0
	}
	if p > hi {
		return hi, 0
	}
	return p, v
}

// Speed returns the magnitude of a velocity vector.
func Speed(vx, vy float64) float64 {
	return math.Hypot(vx, vy)
}

// LimitSpeed scales a velocity vector down to max if it exceeds it.
func LimitSpeed(vx, vy, max float64) (float64, float64) {
	s := math.Hypot(vx, vy)
	if s > max {
		scale := max / s
		return vx * scale, vy * scale
	}
	return vx, vy
}
