package filter

// Scale is the fixed-point multiplier carried through intermediate sums. One
// decimal digit of precision.
const Scale int64 = 10

// RoundHalfUp divides a value scaled by scale back down to an integer,
// rounding a remainder of exactly half away from zero.
func RoundHalfUp(x, scale int64) int64 {
	if x < 0 {
		return -((-x + scale/2) / scale)
	}
	return (x + scale/2) / scale
}

// ISqrt returns the floor of the square root of n. Negative input yields 0.
func ISqrt(n int64) int64 {
	if n < 2 {
		if n < 0 {
			return 0
		}
		return n
	}
	// Newton's method converges from above when seeded with n.
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
