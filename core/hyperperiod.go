package core

// GCD returns the greatest common divisor of a and b via the Euclidean
// algorithm. Both inputs are expected to be positive (frame periods).
func GCD(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// LCM returns the least common multiple of a and b.
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

// LCMAll returns the least common multiple of every value in periods; the
// Hyperperiod of a Network is this value over all frame periods (spec.md
// §3).
func LCMAll(periods []int64) int64 {
	if len(periods) == 0 {
		return 0
	}
	result := periods[0]
	for _, p := range periods[1:] {
		result = LCM(result, p)
	}
	return result
}
