package congestion

// Fixed-point arithmetic at 1024 scale (10 fractional bits), matching
// picoquic's MULT1024 macro bit-for-bit: all of C4's alpha/beta constants
// are exact multiples of 1/1024, and keeping the integer convention (rather
// than switching to float64) keeps the test expectations in §8 of spec.md
// exact instead of approximate.

// mul1024 computes (v*c) >> 10, i.e. v scaled by c/1024.
func mul1024(c, v uint64) uint64 {
	return (v * c) >> 10
}

// log2Q10 table: ratios 2^(1/2^k) * 1024 for k = 1..5, used to refine the
// fractional part of the base-2 logarithm below the integer exponent.
var log2Q10RefinementTable = [5]uint64{1449, 1218, 1117, 1070, 1047}

// log2Q10 returns an approximation of log2(v) in Q10 fixed point (i.e.
// log2(v)*1024), for v > 0. The result is built by isolating the exponent
// (the bit index of the highest set bit) and then refining the fractional
// remainder via five successive comparisons against log2Q10RefinementTable.
func log2Q10(v uint64) uint64 {
	if v == 0 {
		return 0
	}

	exponent := uint64(0)
	x := v
	for x > 1 {
		x >>= 1
		exponent++
	}

	// Normalize v to the [1024, 2048) range (Q10 representation of [1,2)).
	var mantissa uint64
	if exponent >= 10 {
		mantissa = v >> (exponent - 10)
	} else {
		mantissa = v << (10 - exponent)
	}

	frac := uint64(0)
	step := uint64(512)
	for _, ratio := range log2Q10RefinementTable {
		candidate := mul1024(ratio, 1024)
		if mantissa >= candidate {
			mantissa = mul1024(1024*1024/ratio, mantissa)
			frac += step
		}
		step >>= 1
	}

	return exponent*1024 + frac
}

// cruiseBytesTarget historically sized the "cruise" duration as a function
// of the window: clamp log2(w) to [11, 28] in Q10, compute
// x = 1.0 + 7*(l-11)/17, and return w + x*w. The current revision instead
// drives cruise duration by nb_cruise_left_before_push (see c4_state_machine.go);
// this function is kept, unused by the state machine, per spec.md §9's
// design note (iii) — the log-based sizing and the era-counter approach are
// alternative revisions, not meant to be combined.
func cruiseBytesTarget(w uint64) uint64 {
	l := log2Q10(w)
	const minL, maxL = 11 * 1024, 28 * 1024
	if l < minL {
		l = minL
	} else if l > maxL {
		l = maxL
	}
	// x = 1 + 7*(l-11*1024)/(17*1024), in Q10.
	x := uint64(1024) + (7*(l-minL))/17
	return w + mul1024(x, w)
}
