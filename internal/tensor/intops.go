package tensor

// ClampInt8 saturates a 32-bit value into the int8 range [-128, 127].
func ClampInt8(v int32) int8 {
	if v < -128 {
		return -128
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}

// ShiftClampInt8 applies an arithmetic (sign-preserving) right shift to
// each accumulator entry and saturates the result into int8. This is the
// requantization step between layers.
func ShiftClampInt8(dst []int8, acc []int32, shift int) {
	if len(dst) != len(acc) {
		panic("shift length mismatch")
	}
	if shift < 0 {
		panic("negative shift")
	}
	for i, v := range acc {
		dst[i] = ClampInt8(v >> uint(shift))
	}
}

// ReLUInt8 zeroes negative entries in place.
func ReLUInt8(v []int8) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
}

// ArgMaxInt32 returns the index of the largest value. Ties are broken by
// the lowest index, so the result is deterministic even when int32 logits
// collide exactly.
func ArgMaxInt32(v []int32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
