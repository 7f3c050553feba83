package quant

import "math"

// Shift describes a power-of-two requantization: an arithmetic right
// shift by Amount approximates the ideal rescale multiplier
// accScale/targetScale. EffectiveScale is the scale the hardware actually
// realizes (accScale / 2^Amount); downstream consumers must use it, not
// the target, because the power-of-two discretization deviates from the
// ideal multiplier. Underflow marks a multiplier below one that was
// floored to shift 0 — only down-scaling shifts are supported.
type Shift struct {
	Amount         int
	EffectiveScale float64
	Underflow      bool
}

// SolveShift derives the right-shift approximating the rescale from the
// accumulator scale to the target scale. A non-positive target falls back
// to 1.0. The shift is never negative.
func SolveShift(accScale, targetScale float64) Shift {
	m := accScale
	if targetScale > 0 {
		m = accScale / targetScale
	}

	s := Shift{}
	if m > 0 {
		n := int(math.RoundToEven(math.Log2(m)))
		if n < 0 {
			s.Underflow = true
			n = 0
		}
		s.Amount = n
	}
	s.EffectiveScale = accScale / float64(int64(1)<<uint(s.Amount))
	return s
}
