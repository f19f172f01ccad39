// Package termview renders the flock in a terminal with tcell, one character
// cell per screen position, denser cells drawn with heavier glyphs.
package termview

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/simulation"
)

var ramp = []rune(" .:-=+*#%@")

var (
	boidStyle   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	cellStyle   = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// View owns a tcell screen and the engine it draws.
type View struct {
	screen    tcell.Screen
	engine    *simulation.Engine
	paused    bool
	showCells bool
	notice    string // last tuning rejection, cleared by the next accepted change

	width, height int
	density       []int
}

// New wraps an initialized screen.
func New(screen tcell.Screen, engine *simulation.Engine) *View {
	v := &View{screen: screen, engine: engine}
	v.resize()
	return v
}

func (v *View) resize() {
	v.width, v.height = v.screen.Size()
	if n := v.width * v.height; cap(v.density) < n {
		v.density = make([]int, n)
	}
	v.density = v.density[:v.width*v.height]
}

// field is the drawable area, the last row holds the status line.
func (v *View) field() (int, int) {
	return v.width, max(v.height-1, 0)
}

func (v *View) toCell(x, y float64) (int, int) {
	w, h := v.field()
	col := int((x + 1) / 2 * float64(w))
	row := int((1 - y) / 2 * float64(h))
	return min(max(col, 0), w-1), min(max(row, 0), h-1)
}

// Render draws a snapshot and shows the screen.
func (v *View) Render(s *simulation.Snapshot) {
	v.screen.Clear()
	w, h := v.field()
	if w == 0 || h == 0 {
		v.screen.Show()
		return
	}

	if v.showCells {
		for _, c := range s.Cells {
			col, row := v.toCell(c.Center.X-c.Size.X/2, c.Center.Y+c.Size.Y/2)
			v.screen.SetContent(col, row, '+', nil, cellStyle)
		}
	}

	clear(v.density)
	for _, b := range s.Boids {
		col, row := v.toCell(b.Position.X, b.Position.Y)
		v.density[row*v.width+col]++
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			n := v.density[row*v.width+col]
			if n == 0 {
				continue
			}
			v.screen.SetContent(col, row, ramp[min(n, len(ramp)-1)], nil, boidStyle)
		}
	}

	v.drawStatus(s)
	v.screen.Show()
}

func (v *View) drawStatus(s *simulation.Snapshot) {
	t := v.engine.Tuning()
	line := fmt.Sprintf(" tick %d | boids %d | leaves %d (largest %d, depth %d) | %.2fms | bucket %d nd² %.4f",
		s.Tick, len(s.Boids), s.Stats.Leaves, s.Stats.Largest, s.Stats.MaxDepth,
		float64(s.Stats.TotalMicros)/1000, t.BucketMaxSize, t.MaxNeighborDistanceSq)
	if v.paused {
		line += " | PAUSED"
	}
	if v.notice != "" {
		line += " | " + v.notice
	}
	row := v.height - 1
	col := 0
	for _, r := range line {
		if col >= v.width {
			break
		}
		v.screen.SetContent(col, row, r, nil, statusStyle)
		col++
	}
	for ; col < v.width; col++ {
		v.screen.SetContent(col, row, ' ', nil, statusStyle)
	}
}

// handleKey applies a key press and reports whether the view should keep running.
//
//	q, Esc, Ctrl-C  quit
//	space           pause
//	b               toggle bucket corners
//	+ / -           bucket max size
//	] / [           neighbor distance
func (v *View) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	t := v.engine.Tuning()
	switch r {
	case 'q':
		return false
	case ' ':
		v.paused = !v.paused
		return true
	case 'b':
		v.showCells = !v.showCells
		return true
	case '+':
		t.BucketMaxSize *= 2
	case '-':
		t.BucketMaxSize = max(t.BucketMaxSize/2, 1)
	case ']':
		t.MaxNeighborDistanceSq *= 1.25
	case '[':
		t.MaxNeighborDistanceSq /= 1.25
	default:
		return true
	}
	// the engine keeps its previous tuning on error
	if err := v.engine.ApplyTuning(t); err != nil {
		v.notice = "tuning rejected: " + err.Error()
		return true
	}
	v.notice = ""
	return true
}

func (v *View) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

// Run steps the engine tps times per second and renders after each tick,
// until the user quits or ctx is done.
func (v *View) Run(ctx context.Context, tps float64) error {
	if tps <= 0 {
		tps = 60
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / tps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	v.Render(v.engine.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !v.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if !v.paused {
				if _, err := v.engine.Step(ctx); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}
			v.Render(v.engine.Snapshot())
		}
	}
}
