package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/quadtree"
)

// The root bucket covers the whole [-1, 1] domain.
var (
	domainCenter = geometry.NewVector(0, 0)
	domainSize   = geometry.NewVector(flock.DomainMax-flock.DomainMin, flock.DomainMax-flock.DomainMin)
)

// Tuning is the part of the configuration that can change while the simulation runs.
type Tuning struct {
	flock.Params
	BucketMaxSize int
	DepthBudget   int
}

// Validate checks the tuning with the same rules as the configuration.
func (t Tuning) Validate() error {
	if err := quadtree.ValidateLimits(t.BucketMaxSize, t.DepthBudget); err != nil {
		return err
	}
	return t.Params.Validate()
}

// BoidState is the 2-D projection of a boid handed to renderers.
type BoidState struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D
}

// CellState is a leaf bucket of the last partition.
type CellState struct {
	Center geometry.Vector2D
	Size   geometry.Vector2D
	Count  int
}

// Snapshot is a copy of the world, safe to read from another goroutine.
type Snapshot struct {
	Tick  uint64
	Boids []BoidState
	Cells []CellState
	Stats TickStats
}

// Engine runs the tick: partition every boid, update every leaf bucket, then
// wrap the domain. The partition is rebuilt from scratch on each tick.
type Engine struct {
	cfg      *Config
	logger   golog.Logger
	flock    *flock.Flock
	part     *quadtree.Partitioner
	leaves   []quadtree.Bucket
	updaters []*flock.Updater
	tuning   Tuning
	tick     uint64
	last     TickStats
}

// NewEngine validates cfg and seeds a flock of cfg.Population boids.
func NewEngine(cfg *Config, logger golog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = golog.DiscardLogger
	}
	e := &Engine{
		cfg:    cfg,
		logger: logger,
		flock:  flock.New(cfg.Params),
		part:   quadtree.NewPartitioner(cfg.Population),
		tuning: Tuning{Params: cfg.Params, BucketMaxSize: cfg.BucketMaxSize, DepthBudget: cfg.DepthBudget},
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	e.flock.Populate(cfg.Population, cfg.Dimensions, rng)

	workers := max(cfg.Workers, 1)
	e.updaters = make([]*flock.Updater, workers)
	for i := range e.updaters {
		e.updaters[i] = flock.NewUpdater(cfg.Params)
	}
	logger.Infof("engine ready: %d boids in %d dimensions, %d worker(s), buckets of %d, depth budget %d",
		cfg.Population, cfg.Dimensions, workers, cfg.BucketMaxSize, cfg.DepthBudget)
	return e, nil
}

// Flock exposes the simulated boids. It must not be touched while Step runs.
func (e *Engine) Flock() *flock.Flock {
	return e.flock
}

// Tick is the number of completed ticks.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// LastStats returns the statistics of the last completed tick.
func (e *Engine) LastStats() TickStats {
	return e.last
}

// Tuning returns the parameters used by the next tick.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// ApplyTuning replaces the steering parameters and partition limits for the next tick.
func (e *Engine) ApplyTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("rejected tuning: %w", err)
	}
	e.tuning = t
	e.flock.SetParams(t.Params)
	for _, u := range e.updaters {
		u.SetParams(t.Params)
	}
	e.logger.Debugf("tuning applied: %+v", t)
	return nil
}

// Step runs one tick. Cancellation is checked between buckets; a tick
// interrupted that way leaves the flock partially updated and is not counted.
func (e *Engine) Step(ctx context.Context) (TickStats, error) {
	if err := ctx.Err(); err != nil {
		return TickStats{}, err
	}
	start := time.Now()

	root := e.part.Root(domainCenter, domainSize, e.flock)
	e.leaves = e.part.Build(root, e.flock, e.tuning.BucketMaxSize, e.tuning.DepthBudget)
	if e.cfg.VerifyPartition {
		if err := quadtree.Verify(e.leaves, e.flock.Len()); err != nil {
			return TickStats{}, fmt.Errorf("tick %d: %w", e.tick, err)
		}
	}
	partitioned := time.Now()

	if err := e.updateLeaves(ctx); err != nil {
		return TickStats{}, fmt.Errorf("tick %d: %w", e.tick, err)
	}
	e.flock.Mirror()
	done := time.Now()

	summary := quadtree.Summarize(e.leaves, e.tuning.BucketMaxSize)
	e.last = TickStats{
		Tick:            e.tick,
		Boids:           e.flock.Len(),
		Leaves:          summary.Leaves,
		Largest:         summary.Largest,
		Oversized:       summary.Oversized,
		MaxDepth:        summary.MaxDepth,
		MeanOccupancy:   summary.MeanOccupancy,
		StdDevOccupancy: summary.StdDevOccupancy,
		PartitionMicros: partitioned.Sub(start).Microseconds(),
		UpdateMicros:    done.Sub(partitioned).Microseconds(),
		TotalMicros:     done.Sub(start).Microseconds(),
	}
	e.tick++
	return e.last, nil
}

func (e *Engine) updateLeaves(ctx context.Context) error {
	k := e.flock.Kinematics()
	workers := len(e.updaters)

	if workers == 1 || len(e.leaves) < 2 {
		u := e.updaters[0]
		for i := range e.leaves {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := u.Update(k, e.leaves[i].Members); err != nil {
				return fmt.Errorf("bucket %d: %w", i, err)
			}
		}
		return nil
	}

	// Leaves hold disjoint members, so workers never write the same boid.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		u := e.updaters[w]
		g.Go(func() error {
			for i := w; i < len(e.leaves); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := u.Update(k, e.leaves[i].Members); err != nil {
					return fmt.Errorf("bucket %d: %w", i, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Snapshot copies the boids and the leaf buckets of the last tick.
func (e *Engine) Snapshot() *Snapshot {
	s := &Snapshot{
		Tick:  e.tick,
		Boids: make([]BoidState, e.flock.Len()),
		Cells: make([]CellState, len(e.leaves)),
		Stats: e.last,
	}
	for i := range s.Boids {
		b := e.flock.Boid(i)
		s.Boids[i] = BoidState{
			Position: geometry.FromSlice(b.Location),
			Velocity: geometry.FromSlice(b.Velocity),
		}
	}
	for i, l := range e.leaves {
		s.Cells[i] = CellState{Center: l.Center, Size: l.Size, Count: l.Len()}
	}
	return s
}
