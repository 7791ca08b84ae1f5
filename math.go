package pixkern

// Fast byte math for per-element kernels. The div255 family avoids
// integer division; mulDiv255 runs for every channel of every pixel in
// a blend launch.

// div255 divides x by 255 using fast shift approximation.
// The maximum error is +1 for some inputs, imperceptible in blending.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x byte) byte {
	return 255 - x
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return byte(s)
}

// subClamp subtracts b from a and clamps to 0.
func subClamp(a, b byte) byte {
	if b > a {
		return 0
	}
	return a - b
}

// clampU8f clamps a float32 to [0, 255] and rounds to the nearest byte.
func clampU8f(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// clampU8i clamps an int32 to [0, 255].
func clampU8i(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
