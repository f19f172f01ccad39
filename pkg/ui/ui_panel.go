// Package ui holds the few ebiten widgets of the viewer: sliders, checkboxes
// and buttons stacked in a scrollable panel.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	sectionHeight = 25.0
	titleHeight   = 30.0
)

// Widget is implemented by everything the panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	moveTo(y float64)
}

type sliderRow struct{ *Slider }

func (s sliderRow) Height() float64  { return s.H + 25 }
func (s sliderRow) moveTo(y float64) { s.Y = y }

type checkboxRow struct{ *Checkbox }

func (c checkboxRow) Height() float64  { return c.Size + 20 }
func (c checkboxRow) moveTo(y float64) { c.Y = y }

type buttonRow struct{ *Button }

func (b buttonRow) Height() float64  { return b.Button.Height + 10 }
func (b buttonRow) moveTo(y float64) { b.Y = y }

// Section groups the widgets in [start, end).
type Section struct {
	Title      string
	start, end int
}

// Panel manages a column of widgets in a scrollable panel
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	ScrollOffset  float64

	widgets  []Widget
	labels   []string
	sections []Section

	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates a new UI panel
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection opens a section; widgets added afterwards belong to it.
func (p *Panel) AddSection(title string) {
	p.EndSection()
	p.sections = append(p.sections, Section{Title: title, start: len(p.widgets), end: -1})
}

// EndSection closes the current section
func (p *Panel) EndSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].end < 0 {
		p.sections[n-1].end = len(p.widgets)
	}
}

func (p *Panel) add(label string, w Widget) {
	p.widgets = append(p.widgets, w)
	p.labels = append(p.labels, label)
}

// AddSlider adds a slider; step > 0 snaps its values.
func (p *Panel) AddSlider(label string, min, max, value, step float64) *Slider {
	s := NewSlider(p.X+10, p.Y+p.contentHeight()+20, p.Width-20, label, min, max, value)
	s.Step = step
	p.add(label, sliderRow{s})
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.Y+p.contentHeight()+20, label, value)
	p.add(label, checkboxRow{c})
	return c
}

// AddButton adds a full width button
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, p.Y+p.contentHeight()+20, p.Width-20, 24, label, onClick)
	p.add("", buttonRow{b})
	return b
}

func (p *Panel) contentHeight() float64 {
	h := titleHeight + float64(len(p.sections))*sectionHeight
	for _, w := range p.widgets {
		h += w.Height()
	}
	return h
}

// Update handles scrolling and the input of every widget
func (p *Panel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		maxScroll := max(p.contentHeight()-p.Height+40, 0)
		p.ScrollOffset = min(max(p.ScrollOffset-dy*20, 0), maxScroll)
	}
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	for _, section := range p.sections {
		if p.visible(y) {
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20, color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, section.Title, int(p.X+10), int(y+3))
		}
		y += sectionHeight

		end := section.end
		if end < 0 {
			end = len(p.widgets)
		}
		for i := section.start; i < end; i++ {
			w := p.widgets[i]
			if p.visible(y) {
				ebitenutil.DebugPrintAt(screen, p.labels[i], int(p.X+10), int(y))
				w.moveTo(y + 15)
				w.Draw(screen)
			}
			y += w.Height()
		}
	}
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y && y <= p.Y+p.Height-20
}
