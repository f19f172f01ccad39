package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SquaredMagnitude returns the sum of the squared components of v.
func SquaredMagnitude(v []float64) float64 {
	return floats.Dot(v, v)
}

// SquaredDistance returns the squared Euclidean distance between a and b.
func SquaredDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDimensionMismatch(len(a), len(b))
	}
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d, nil
}

// CapMagnitude rescales v in place when its squared magnitude falls outside
// [minSq, maxSq]. The scale factor is maxSq (or minSq) times the approximate
// inverse square root of the squared magnitude, so a capped vector ends up with
// a magnitude close to maxSq (or minSq) itself. The zero vector is left alone.
// A vector whose squared magnitude overflows is brought back to unit size by its
// largest component first.
func CapMagnitude(v []float64, maxSq, minSq float64) {
	m := floats.Dot(v, v)
	if m == 0 {
		return
	}
	if math.IsInf(m, 1) {
		if top := floats.Norm(v, math.Inf(1)); !math.IsInf(top, 1) {
			floats.Scale(1/top, v)
			m = floats.Dot(v, v)
		}
	}
	var scale float64
	switch {
	case m > maxSq:
		scale = maxSq * rsqrt(m)
	case m < minSq:
		scale = minSq * rsqrt(m)
	default:
		return
	}
	floats.Scale(scale, v)
}

// NormalizeTo returns a copy of v scaled to roughly the given magnitude.
// A zero vector comes back as an unscaled copy.
func NormalizeTo(v []float64, magnitude float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	NormalizeInPlace(out, magnitude)
	return out
}

// NormalizeInPlace scales v to roughly the given magnitude.
func NormalizeInPlace(v []float64, magnitude float64) {
	m := floats.Dot(v, v)
	if m == 0 {
		return
	}
	floats.Scale(rsqrt(m)*magnitude, v)
}

// Wrap folds every component of v that left [lo, hi] back in by one period.
// A component more than one period outside stays outside; callers wrap every tick.
func Wrap(v []float64, lo, hi float64) {
	period := hi - lo
	for i, val := range v {
		if val > hi {
			v[i] = val - period
		} else if val < lo {
			v[i] = val + period
		}
	}
}
