package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestSquaredDistance(t *testing.T) {
	d, err := SquaredDistance([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatalf("SquaredDistance unexpected error: %v", err)
	}
	if !floatEquals(d, 25) {
		t.Errorf("SquaredDistance = %v; want 25", d)
	}

	_, err = SquaredDistance([]float64{0, 0}, []float64{1, 2, 3})
	var dm *DimensionMismatchError
	if !errors.As(err, &dm) {
		t.Fatalf("SquaredDistance error = %v; want *DimensionMismatchError", err)
	}
	if dm.Expected != 2 || dm.Actual != 3 {
		t.Errorf("mismatch = %+v; want expected 2 actual 3", dm)
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("errors.Is(err, ErrDimensionMismatch) = false")
	}
}

func TestCapMagnitude(t *testing.T) {
	tests := []struct {
		name         string
		v            []float64
		maxSq, minSq float64
		changed      bool
		wantMag      float64 // magnitude after capping, when changed
	}{
		{"zero vector is left alone", []float64{0, 0}, 1, 0.5, false, 0},
		{"inside range", []float64{0.8, 0}, 1, 0.5, false, 0},
		{"on upper bound", []float64{1, 0}, 1, 0.5, false, 0},
		{"above max", []float64{3, 4}, 1, 0.5, true, 1},
		{"below min", []float64{0.1, 0}, 1, 0.5, true, 0.5},
		{"forced magnitude", []float64{0.03, -0.01}, 0.0005, 0.0005, true, 0.0005},
		{"three dimensions", []float64{1, 2, 2}, 0.01, 0.00125, true, 0.01},
		{"beyond float32 range", []float64{1e20, 0}, 0.01, 0.00125, true, 0.01},
		{"huge with a small component", []float64{-1e21, 3}, 0.01, 0.00125, true, 0.01},
		{"below float32 range", []float64{1e-23, 0}, 0.01, 0.00125, true, 0.00125},
		{"squared magnitude overflows", []float64{1e200, -1e200}, 0.01, 0.00125, true, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]float64(nil), tt.v...)
			CapMagnitude(tt.v, tt.maxSq, tt.minSq)

			if !tt.changed {
				for i := range before {
					if before[i] != tt.v[i] {
						t.Fatalf("CapMagnitude changed %v to %v", before, tt.v)
					}
				}
				return
			}
			for i, c := range tt.v {
				if math.IsNaN(c) || math.IsInf(c, 0) {
					t.Fatalf("component %d not finite after cap: %v", i, tt.v)
				}
			}
			mag := math.Sqrt(SquaredMagnitude(tt.v))
			if rel := math.Abs(mag-tt.wantMag) / tt.wantMag; rel > 0.002 {
				t.Errorf("magnitude after cap = %v; want ~%v", mag, tt.wantMag)
			}
			// direction is preserved
			for i := range before {
				if math.Signbit(before[i]) != math.Signbit(tt.v[i]) {
					t.Errorf("component %d flipped sign: %v -> %v", i, before, tt.v)
				}
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := []float64{3, 4}
	out := NormalizeTo(v, 2)
	if v[0] != 3 || v[1] != 4 {
		t.Fatalf("NormalizeTo mutated its input: %v", v)
	}
	if mag := math.Sqrt(SquaredMagnitude(out)); math.Abs(mag-2) > 0.004 {
		t.Errorf("NormalizeTo magnitude = %v; want ~2", mag)
	}

	zero := NormalizeTo([]float64{0, 0}, 2)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("NormalizeTo(zero) = %v; want zero", zero)
	}

	NormalizeInPlace(v, 1)
	if mag := math.Sqrt(SquaredMagnitude(v)); math.Abs(mag-1) > 0.002 {
		t.Errorf("NormalizeInPlace magnitude = %v; want ~1", mag)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"inside", []float64{0.5, -0.5}, []float64{0.5, -0.5}},
		{"on the edges", []float64{1, -1}, []float64{1, -1}},
		{"over the top", []float64{1.5, 0}, []float64{-0.5, 0}},
		{"under the bottom", []float64{0, -1.25}, []float64{0, 0.75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Wrap(tt.in, -1, 1)
			for i := range tt.want {
				if !floatEquals(tt.in[i], tt.want[i]) {
					t.Errorf("Wrap = %v; want %v", tt.in, tt.want)
					break
				}
			}
			// a second pass over an already wrapped vector changes nothing
			Wrap(tt.in, -1, 1)
			for i := range tt.want {
				if !floatEquals(tt.in[i], tt.want[i]) {
					t.Errorf("Wrap = %v; want %v", tt.in, tt.want)
					break
				}
			}
		})
	}
}

func TestWrapTwiceConverges(t *testing.T) {
	// anything within one wrap distance of [-1, 1] lands inside after two passes
	for _, x := range []float64{-2.9, -1.5, -1, -0.3, 0, 0.7, 1, 1.5, 2.9} {
		v := []float64{x, -x}
		Wrap(v, -1, 1)
		Wrap(v, -1, 1)
		for i, c := range v {
			if c < -1 || c > 1 {
				t.Errorf("Wrap twice of %v: component %d = %v; want within [-1, 1]", x, i, c)
			}
		}
	}
}
