// Package kernel holds the simulation's primitive data model: scalar time,
// the three canonical message shapes, and the generational arena used to
// give every first-class entity (models, ports, HSMs, observers) a stable,
// reusable identifier.
package kernel

import "math"

// Time is the scalar simulation time. Zero means "immediate"; +Inf means
// "never scheduled". Negative time is never valid.
type Time = float64

// TimeZero is the immediate time-advance.
const TimeZero Time = 0

// TimeInfinity is the "never" sentinel used for sigma and tn. math.Inf is
// not a constant expression, so the sentinel lives as a package variable;
// nothing in this module writes to it.
var TimeInfinity = math.Inf(1)

// IsZero reports whether t is exactly the immediate time-advance.
func IsZero(t Time) bool { return t == TimeZero }

// IsInfinity reports whether t is the never-scheduled sentinel.
func IsInfinity(t Time) bool { return math.IsInf(t, 1) }

// NextAfterZero nudges tn strictly past t using math.Nextafter, used by the
// simulation driver when a transition computes tn == t for an
// already-due model (see SPEC_FULL.md Open Question 1). Kept as a named
// helper rather than inlined math.Nextafter calls so every call site reads
// the same intent.
func NextAfterZero(t Time) Time {
	return math.Nextafter(t, TimeInfinity)
}

// AlmostEqual reports whether a and b are equal within a relative
// tolerance, grounded on the original implementation's almost_equal
// (core.hpp): diff <= largest * relativeEpsilon. Used by cross/filter atoms
// to tie-break near-threshold crossings without chattering on exact float
// comparison.
func AlmostEqual(a, b, relativeEpsilon float64) bool {
	diff := math.Abs(a - b)
	largest := math.Max(math.Abs(a), math.Abs(b))
	return diff <= largest*relativeEpsilon
}

// CrossingTolerance is the default relative epsilon used by cross/filter
// near-threshold tie-breaks (2^-30, per spec.md §4.4.2/§9).
const CrossingTolerance = 1.0 / (1 << 30)
