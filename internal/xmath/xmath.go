// Package xmath holds small generic numeric helpers. The feasibility
// probe uses LCM (and through it GCD) for the hyperperiod; the
// partitioner and the slack analyzer do their own arithmetic.
package xmath

import "golang.org/x/exp/constraints"

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CeilDiv returns ceil(a / b) for positive floating-point a and b.
func CeilDiv(a, b float64) int {
	if b <= 0 {
		return 0
	}
	q := a / b
	i := int(q)
	if float64(i) < q {
		i++
	}
	return i
}

// GCD returns the greatest common divisor of a and b (integer arithmetic,
// since task phases and periods are whole numbers of time units).
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
	g := GCD(a, b)
	return a / g * b
}
