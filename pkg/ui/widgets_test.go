package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckboxTogglesOncePerPress(t *testing.T) {
	c := NewCheckbox(10, 10, "Show Buckets", false)
	assert.False(t, c.Changed())

	c.press(12, 12, true)
	c.press(12, 12, true) // still held
	assert.True(t, c.Value)
	assert.True(t, c.Changed())
	assert.False(t, c.Changed(), "Changed resets after it is read")

	c.press(12, 12, false)
	c.press(12, 12, true)
	assert.False(t, c.Value)
	assert.True(t, c.Changed())
}

func TestCheckboxIgnoresPressOutside(t *testing.T) {
	c := NewCheckbox(10, 10, "Show Buckets", true)
	c.press(100, 12, true)
	assert.True(t, c.Value)
	assert.False(t, c.Changed())
}

func TestCheckboxToggle(t *testing.T) {
	c := NewCheckbox(0, 0, "x", false)
	c.Toggle()
	assert.True(t, c.Value)
	assert.True(t, c.Changed())
}

func TestButtonFiresOncePerPress(t *testing.T) {
	fired := 0
	b := NewButton(0, 0, 100, 24, "Pause", func() { fired++ })

	b.press(50, 10, true)
	b.press(50, 10, true)
	assert.Equal(t, 1, fired)
	b.press(50, 10, false)
	b.press(50, 10, true)
	assert.Equal(t, 2, fired)
	assert.Equal(t, 2, b.Clicked())
	assert.Zero(t, b.Clicked())

	b.press(0, 0, false)
	b.press(150, 10, true)
	assert.Equal(t, 2, fired)
}

func TestSliderSnapsAndTracksChanges(t *testing.T) {
	s := NewSlider(0, 0, 100, "Depth Budget", 0, 32, 20)
	s.Step = 1
	s.SetRatio(0.5)
	assert.Equal(t, 16.0, s.Value)
	assert.True(t, s.Changed())
	s.SetRatio(0.5)
	assert.False(t, s.Changed())
	s.SetRatio(2)
	assert.Equal(t, 32.0, s.Value)
}
