package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/quadtree"
)

// Keys of the tuning patch and of the stats response.
const (
	KeyMaxNeighborDistanceSq      = "maxNeighborDistanceSq"
	KeyMaxAccelerationMagnitudeSq = "maxAccelerationMagnitudeSq"
	KeyMaxVelocityMagnitudeSq     = "maxVelocityMagnitudeSq"
	KeyBucketMaxSize              = "bucketMaxSize"
	KeyDepthBudget                = "depthBudget"
	KeyTick                       = "tick"
	KeyBoids                      = "boids"
	KeyLeaves                     = "leaves"
	KeyLargestLeaf                = "largestLeaf"
	KeyMaxDepth                   = "maxDepth"
	KeyTotalMicros                = "totalMicros"
)

// TickMessage asks the world for one tick. budget is the wall-clock time the
// sender can afford, a slower tick is reported.
func TickMessage(budget time.Duration) *durationpb.Duration {
	return durationpb.New(budget)
}

// StatsRequest asks the world for its counters; the answer is a *structpb.Struct.
func StatsRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// TuningPatch encodes a full Tuning as a patch message.
func TuningPatch(t Tuning) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		KeyMaxNeighborDistanceSq:      t.MaxNeighborDistanceSq,
		KeyMaxAccelerationMagnitudeSq: t.MaxAccelerationMagnitudeSq,
		KeyMaxVelocityMagnitudeSq:     t.MaxVelocityMagnitudeSq,
		KeyBucketMaxSize:              t.BucketMaxSize,
		KeyDepthBudget:                t.DepthBudget,
	})
}

// applyPatch overlays the keys present in patch on t.
func applyPatch(t Tuning, patch *structpb.Struct) (Tuning, error) {
	for key, v := range patch.GetFields() {
		n := v.GetNumberValue()
		switch key {
		case KeyMaxNeighborDistanceSq:
			t.MaxNeighborDistanceSq = n
		case KeyMaxAccelerationMagnitudeSq:
			t.MaxAccelerationMagnitudeSq = n
		case KeyMaxVelocityMagnitudeSq:
			t.MaxVelocityMagnitudeSq = n
		case KeyBucketMaxSize:
			i, err := patchInt(key, n, math.MaxInt32)
			if err != nil {
				return t, err
			}
			t.BucketMaxSize = i
		case KeyDepthBudget:
			i, err := patchInt(key, n, quadtree.MaxDepthBudget)
			if err != nil {
				return t, err
			}
			t.DepthBudget = i
		default:
			return t, fmt.Errorf("unknown tuning key %q", key)
		}
	}
	return t, nil
}

// patchInt converts a patch number to an int in [0, limit].
func patchInt(key string, n float64, limit int) (int, error) {
	if n != math.Trunc(n) || n < 0 || n > float64(limit) {
		return 0, fmt.Errorf("tuning key %q: %v is not an integer in [0, %d]", key, n, limit)
	}
	return int(n), nil
}

// WorldActor owns the engine. Every tick message advances the simulation by
// one step and pushes a snapshot to the UI, if one listens.
type WorldActor struct {
	cfg        *Config
	engine     *Engine
	recorder   *Recorder
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	ticks       int
	slowTicks   int
	busyMicros  int64
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit. snapshotCh may be nil for headless runs.
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:        cfg,
		snapshotCh: snapshotCh,
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	engine, err := NewEngine(w.cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	recorder, err := NewRecorder(w.cfg.TelemetryPath)
	if err != nil {
		return err
	}
	w.engine = engine
	w.recorder = recorder
	w.lastLogTime = time.Now()
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started with %d boids", w.engine.Flock().Len())

	// The Main Simulation Step (Driven by Game Loop or the headless pacer)
	case *durationpb.Duration:
		w.step(ctx, msg.AsDuration())

	// Tuning from the UI
	case *structpb.Struct:
		t, err := applyPatch(w.engine.Tuning(), msg)
		if err == nil {
			err = w.engine.ApplyTuning(t)
		}
		if err != nil {
			ctx.Logger().Warnf("tuning ignored: %v", err)
		}

	case *emptypb.Empty:
		resp, err := w.stats()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(resp)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) step(ctx *actor.ReceiveContext, budget time.Duration) {
	stats, err := w.engine.Step(ctx.Context())
	if err != nil {
		ctx.Logger().Errorf("tick failed: %v", err)
		return
	}
	if err := w.recorder.Write(stats); err != nil {
		ctx.Logger().Warnf("telemetry: %v", err)
	}

	w.ticks++
	w.busyMicros += stats.TotalMicros
	if budget > 0 && time.Duration(stats.TotalMicros)*time.Microsecond > budget {
		w.slowTicks++
	}
	w.logBenchmarks(ctx)
	w.pushSnapshot()
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		avg := 0.0
		if w.ticks > 0 {
			avg = float64(w.busyMicros) / float64(w.ticks) / 1000
		}
		last := w.engine.LastStats()
		ctx.Logger().Infof("📊 TICK RATE: %d/sec (avg %.2fms, over budget: %d) | Boids: %d | Leaves: %d (largest %d, depth %d)",
			w.ticks, avg, w.slowTicks, last.Boids, last.Leaves, last.Largest, last.MaxDepth)
		w.ticks = 0
		w.slowTicks = 0
		w.busyMicros = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.engine.Snapshot():
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) stats() (*structpb.Struct, error) {
	last := w.engine.LastStats()
	t := w.engine.Tuning()
	return structpb.NewStruct(map[string]any{
		KeyTick:                       w.engine.Tick(),
		KeyBoids:                      w.engine.Flock().Len(),
		KeyLeaves:                     last.Leaves,
		KeyLargestLeaf:                last.Largest,
		KeyMaxDepth:                   last.MaxDepth,
		KeyTotalMicros:                last.TotalMicros,
		KeyMaxNeighborDistanceSq:      t.MaxNeighborDistanceSq,
		KeyMaxAccelerationMagnitudeSq: t.MaxAccelerationMagnitudeSq,
		KeyMaxVelocityMagnitudeSq:     t.MaxVelocityMagnitudeSq,
		KeyBucketMaxSize:              t.BucketMaxSize,
		KeyDepthBudget:                t.DepthBudget,
	})
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return w.recorder.Close()
}
