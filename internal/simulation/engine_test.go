package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/quadtree"
)

func testConfig(population, workers int) *Config {
	cfg := DefaultConfig()
	cfg.Population = population
	cfg.Workers = workers
	cfg.Seed = 99
	cfg.VerifyPartition = true
	return cfg
}

func newEngine(t testing.TB, cfg *Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, golog.DiscardLogger)
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(10, 1)
	cfg.BucketMaxSize = 0
	_, err := NewEngine(cfg, golog.DiscardLogger)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, quadtree.ErrInvalidMaxSize)
}

func TestEngineStep(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, testConfig(500, 1))

	for i := 0; i < 5; i++ {
		stats, err := e.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), stats.Tick)
		assert.Equal(t, 500, stats.Boids)
		assert.Positive(t, stats.Leaves)
		assert.LessOrEqual(t, stats.Largest, 16)
	}
	assert.Equal(t, uint64(5), e.Tick())

	snap := e.Snapshot()
	assert.Equal(t, uint64(5), snap.Tick)
	require.Len(t, snap.Boids, 500)
	for _, b := range snap.Boids {
		assert.True(t, b.Position.X >= -1 && b.Position.X <= 1, "x out of domain: %v", b.Position)
		assert.True(t, b.Position.Y >= -1 && b.Position.Y <= 1, "y out of domain: %v", b.Position)
	}
	members := 0
	for _, c := range snap.Cells {
		members += c.Count
	}
	assert.Equal(t, 500, members)
}

func TestEngineParallelMatchesSerial(t *testing.T) {
	ctx := context.Background()
	serial := newEngine(t, testConfig(800, 1))
	parallel := newEngine(t, testConfig(800, 4))

	for i := 0; i < 10; i++ {
		_, err := serial.Step(ctx)
		require.NoError(t, err)
		_, err = parallel.Step(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, serial.Snapshot().Boids, parallel.Snapshot().Boids)
}

func TestEngineHigherDimensions(t *testing.T) {
	cfg := testConfig(200, 2)
	cfg.Dimensions = 3
	e := newEngine(t, cfg)
	for i := 0; i < 3; i++ {
		_, err := e.Step(context.Background())
		require.NoError(t, err)
	}
	for i := 0; i < e.Flock().Len(); i++ {
		for _, c := range e.Flock().Boid(i).Location {
			assert.True(t, c >= flock.DomainMin && c <= flock.DomainMax)
		}
	}
}

func TestEngineApplyTuning(t *testing.T) {
	e := newEngine(t, testConfig(200, 1))
	before := e.Tuning()

	bad := before
	bad.BucketMaxSize = 0
	require.ErrorIs(t, e.ApplyTuning(bad), quadtree.ErrInvalidMaxSize)
	assert.Equal(t, before, e.Tuning())

	bad = before
	bad.MaxVelocityMagnitudeSq = -1
	require.ErrorIs(t, e.ApplyTuning(bad), flock.ErrInvalidParams)

	// a single bucket holds the whole flock
	good := before
	good.BucketMaxSize = 1000
	good.MaxNeighborDistanceSq = 0.01
	require.NoError(t, e.ApplyTuning(good))
	assert.Equal(t, good, e.Tuning())
	assert.Equal(t, good.Params, e.Flock().Params())

	stats, err := e.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Leaves)
	assert.Equal(t, 200, stats.Largest)
}

func TestEngineStepCancelled(t *testing.T) {
	e := newEngine(t, testConfig(100, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Step(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), e.Tick())
}

func TestEngineEmptyFlock(t *testing.T) {
	e := newEngine(t, testConfig(0, 4))
	stats, err := e.Step(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Leaves)
	assert.Empty(t, e.Snapshot().Boids)
}

func BenchmarkEngineStep(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(map[int]string{1: "serial", 4: "parallel"}[workers], func(b *testing.B) {
			cfg := testConfig(10000, workers)
			cfg.VerifyPartition = false
			e := newEngine(b, cfg)
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.Step(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
