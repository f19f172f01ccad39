package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal value picker. Step > 0 snaps the value to multiples of Step.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64
	changed  bool
}

// NewSlider creates a slider with a default height.
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label: label,
		Value: value,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     width,
		H:     12,
	}
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if float64(mx) < s.X || float64(mx) > s.X+s.W || float64(my) < s.Y || float64(my) > s.Y+s.H {
		return
	}
	s.SetRatio((float64(mx) - s.X) / s.W)
}

// SetRatio moves the slider to a position in [0, 1] of its range.
func (s *Slider) SetRatio(p float64) {
	v := s.Min + p*(s.Max-s.Min)
	if s.Step > 0 {
		v = math.Round(v/s.Step) * s.Step
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := (s.Value - s.Min) / (s.Max - s.Min)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, s.format(), int(s.X+s.W-70), int(s.Y-15))
}

func (s *Slider) format() string {
	if s.Step >= 1 {
		return fmt.Sprintf("%8.0f", s.Value)
	}
	return fmt.Sprintf("%8.4f", s.Value)
}
