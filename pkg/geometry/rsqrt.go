package geometry

import "math"

// magic is the seed constant of the classic float32 inverse square root.
const magic = 0x5f3759df

// FastInverseSqrt approximates 1/sqrt(x) from a bit-level seed on the float32
// representation of x followed by one Newton-Raphson step. The relative error
// stays below 0.2% over the whole positive float64 range.
//
// Zero fails with ErrDivideByZero and negative input with ErrNegativeInput.
func FastInverseSqrt(x float64) (float64, error) {
	switch {
	case x == 0:
		return 0, ErrDivideByZero
	case x < 0:
		return 0, ErrNegativeInput
	}
	return rsqrt(x), nil
}

// rsqrt is FastInverseSqrt without the input checks. Callers guard zero.
// x is split into frac * 2^exp with an even exp, so only frac in [0.5, 2)
// goes through float32 and the result is rescaled by 2^(-exp/2).
func rsqrt(x float64) float64 {
	if math.IsInf(x, 1) {
		return 0
	}
	frac, exp := math.Frexp(x)
	if exp&1 != 0 {
		frac *= 2
		exp--
	}
	return math.Ldexp(float64(rsqrt32(float32(frac))), -exp/2)
}

func rsqrt32(f float32) float32 {
	half := 0.5 * f
	i := math.Float32bits(f)
	i = magic - i>>1
	y := math.Float32frombits(i)
	return y * (1.5 - half*y*y)
}
