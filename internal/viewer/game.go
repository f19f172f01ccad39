// Package viewer draws the flock in an ebiten window and tunes it live
// through the world actor.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/internal/simulation"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/ui"
)

const (
	panelWidth = 260.0
	boidLength = 6.0
	// indices are uint16, every boid uses three vertices
	boidsPerBatch = math.MaxUint16 / 3
)

var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	cfg        *simulation.Config
	paused     bool

	// UI Controls
	panel            *ui.Panel
	showPanel        bool
	widgetNeighbor   *ui.Slider
	widgetAccel      *ui.Slider
	widgetVelocity   *ui.Slider
	widgetBucketSize *ui.Slider
	widgetDepth      *ui.Slider
	widgetCells      *ui.Checkbox

	// vertex buffers reused between frames
	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// GetNewGame spawns the world actor in system and builds the viewer around it.
func GetNewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem) (*Game, error) {
	// Buffer to avoid blocking the world
	snapshotCh := make(chan *simulation.Snapshot, 2)

	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &simulation.Snapshot{}, // Avoid nil pointer
		cfg:        cfg,
		showPanel:  true,
	}

	panel := ui.NewPanel(10, 10, panelWidth, float64(cfg.ScreenHeight)-20, "Configuration  [Tab] hide  [Space] pause")
	panel.AddSection("Steering (squared)")
	g.widgetNeighbor = panel.AddSlider("Neighbor Distance", 0.0005, 0.2, cfg.MaxNeighborDistanceSq, 0)
	g.widgetAccel = panel.AddSlider("Max Acceleration", 0.00001, 0.005, cfg.MaxAccelerationMagnitudeSq, 0)
	g.widgetVelocity = panel.AddSlider("Max Velocity", 0.0005, 0.05, cfg.MaxVelocityMagnitudeSq, 0)
	panel.AddSection("Partition")
	g.widgetBucketSize = panel.AddSlider("Bucket Max Size", 1, 256, float64(cfg.BucketMaxSize), 1)
	g.widgetDepth = panel.AddSlider("Depth Budget", 0, 32, float64(cfg.DepthBudget), 1)
	panel.AddSection("Visualization")
	g.widgetCells = panel.AddCheckbox("Show Buckets", false)
	panel.AddButton("Pause / Resume", func() { g.paused = !g.paused })
	panel.AddButton("Default Tuning", g.resetTuning)
	panel.EndSection()
	g.panel = panel

	return g, nil
}

func (g *Game) resetTuning() {
	p := flock.DefaultParams()
	g.widgetNeighbor.Value = p.MaxNeighborDistanceSq
	g.widgetAccel.Value = p.MaxAccelerationMagnitudeSq
	g.widgetVelocity.Value = p.MaxVelocityMagnitudeSq
	g.widgetBucketSize.Value = float64(g.cfg.BucketMaxSize)
	g.widgetDepth.Value = float64(g.cfg.DepthBudget)
	g.sendTuning()
}

func (g *Game) tuning() simulation.Tuning {
	return simulation.Tuning{
		Params: flock.Params{
			MaxNeighborDistanceSq:      g.widgetNeighbor.Value,
			MaxAccelerationMagnitudeSq: g.widgetAccel.Value,
			MaxVelocityMagnitudeSq:     g.widgetVelocity.Value,
		},
		BucketMaxSize: int(g.widgetBucketSize.Value),
		DepthBudget:   int(g.widgetDepth.Value),
	}
}

func (g *Game) sendTuning() {
	patch, err := simulation.TuningPatch(g.tuning())
	if err != nil {
		g.System.Logger().Warnf("tuning not sent: %v", err)
		return
	}
	if err := actor.Tell(g.ctx, g.worldPID, patch); err != nil {
		g.System.Logger().Warnf("tuning not sent: %v", err)
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showPanel = !g.showPanel
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if g.showPanel {
		g.panel.Update()
	}

	if g.widgetCells.Changed() {
		g.System.Logger().Infof("bucket overlay: %v", g.widgetCells.Value)
	}

	changed := false
	for _, s := range []*ui.Slider{g.widgetNeighbor, g.widgetAccel, g.widgetVelocity, g.widgetBucketSize, g.widgetDepth} {
		if s.Changed() {
			changed = true
		}
	}
	if changed {
		g.sendTuning()
	}

	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	if !g.paused {
		budget := time.Second / time.Duration(ebiten.TPS())
		if err := actor.Tell(g.ctx, g.worldPID, simulation.TickMessage(budget)); err != nil {
			return fmt.Errorf("tick not sent: %w", err)
		}
	}
	return nil
}

// toScreen maps the [-1, 1] domain on the window, y pointing up.
func (g *Game) toScreen(x, y float64) (float32, float32) {
	w, h := float64(g.cfg.ScreenWidth), float64(g.cfg.ScreenHeight)
	return float32((x + 1) / 2 * w), float32((1 - y) / 2 * h)
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	if g.widgetCells.Value {
		g.drawCells(screen)
	}
	g.drawBoids(screen)

	if g.showPanel {
		g.panel.Draw(screen)
	}

	stats := g.lastState.Stats
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nTick:   %d\nBoids:  %d\nLeaves: %d\nLargest:%d\nDepth:  %d\n\nStep:   %.2fms\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastState.Tick,
		len(g.lastState.Boids),
		stats.Leaves,
		stats.Largest,
		stats.MaxDepth,
		float64(stats.TotalMicros)/1000,
		g.updateAvg,
		g.drawAvg)
	if g.paused {
		msg += "\n\nPAUSED"
	}
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.ScreenWidth-150, 10)
}

func (g *Game) drawCells(screen *ebiten.Image) {
	clr := color.RGBA{R: 60, G: 90, B: 60, A: 255}
	for _, c := range g.lastState.Cells {
		x, y := g.toScreen(c.Center.X-c.Size.X/2, c.Center.Y+c.Size.Y/2)
		w := float32(c.Size.X / 2 * float64(g.cfg.ScreenWidth))
		h := float32(c.Size.Y / 2 * float64(g.cfg.ScreenHeight))
		vector.StrokeRect(screen, x, y, w, h, 1, clr, false)
	}
}

// drawBoids renders every boid as a triangle pointing along its velocity,
// batched in as few DrawTriangles calls as the uint16 indices allow.
func (g *Game) drawBoids(screen *ebiten.Image) {
	boids := g.lastState.Boids
	for lo := 0; lo < len(boids); lo += boidsPerBatch {
		hi := min(lo+boidsPerBatch, len(boids))
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
		for i, b := range boids[lo:hi] {
			px, py := g.toScreen(b.Position.X, b.Position.Y)
			tip, left, right := boidTriangle(geometry.NewVector(float64(px), float64(py)), b.Velocity)
			g.vertices = append(g.vertices, boidVertex(tip), boidVertex(left), boidVertex(right))
			base := uint16(i * 3)
			g.indices = append(g.indices, base, base+1, base+2)
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	}
}

// boidTriangle returns the screen corners of a boid at p heading along vel.
// A resting boid points right.
func boidTriangle(p, vel geometry.Vector2D) (tip, left, right geometry.Vector2D) {
	// screen y grows downward
	heading := geometry.NewVector(vel.X, -vel.Y).FastNormalize(boidLength)
	if heading.Eq(geometry.Vector2D{}) {
		heading = geometry.NewVector(boidLength, 0)
	}
	side := heading.Perp().Mul(0.4)
	back := p.Sub(heading.Mul(0.6))
	return p.Add(heading), back.Add(side), back.Sub(side)
}

func boidVertex(v geometry.Vector2D) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(v.X),
		DstY:   float32(v.Y),
		SrcX:   1,
		SrcY:   1,
		ColorR: 0.4, ColorG: 0.8, ColorB: 1, ColorA: 1,
	}
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.ScreenWidth, g.cfg.ScreenHeight }
