package simulation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

func startSystem(t *testing.T) actor.ActorSystem {
	t.Helper()
	ctx := context.Background()
	system, err := actor.NewActorSystem("BoidsTest", actor.WithLogger(golog.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() { _ = system.Stop(ctx) })
	return system
}

func askStats(t *testing.T, pid *actor.PID) map[string]*structpb.Value {
	t.Helper()
	resp, err := actor.Ask(context.Background(), pid, StatsRequest(), time.Second)
	require.NoError(t, err)
	stats, ok := resp.(*structpb.Struct)
	require.True(t, ok, "unexpected response %T", resp)
	return stats.GetFields()
}

func TestWorldActorTicks(t *testing.T) {
	ctx := context.Background()
	system := startSystem(t)
	snapshots := make(chan *Snapshot, 1)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(snapshots, testConfig(300, 2)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, actor.Tell(ctx, pid, TickMessage(time.Second)))
	}
	stats := askStats(t, pid)
	assert.Equal(t, 3.0, stats[KeyTick].GetNumberValue())
	assert.Equal(t, 300.0, stats[KeyBoids].GetNumberValue())
	assert.Positive(t, stats[KeyLeaves].GetNumberValue())

	select {
	case snap := <-snapshots:
		assert.Len(t, snap.Boids, 300)
		assert.Positive(t, snap.Tick)
	case <-time.After(time.Second):
		t.Fatal("no snapshot pushed")
	}
}

func TestWorldActorTuning(t *testing.T) {
	ctx := context.Background()
	system := startSystem(t)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(nil, testConfig(50, 1)))
	require.NoError(t, err)

	patch, err := structpb.NewStruct(map[string]any{KeyBucketMaxSize: 4, KeyMaxNeighborDistanceSq: 0.09})
	require.NoError(t, err)
	require.NoError(t, actor.Tell(ctx, pid, patch))

	stats := askStats(t, pid)
	assert.Equal(t, 4.0, stats[KeyBucketMaxSize].GetNumberValue())
	assert.InDelta(t, 0.09, stats[KeyMaxNeighborDistanceSq].GetNumberValue(), 1e-12)
	assert.Equal(t, 20.0, stats[KeyDepthBudget].GetNumberValue())

	// rejected patches leave the tuning alone
	for _, fields := range []map[string]any{
		{KeyBucketMaxSize: 0},
		{"gravity": 9.81},
	} {
		bad, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		require.NoError(t, actor.Tell(ctx, pid, bad))
	}
	stats = askStats(t, pid)
	assert.Equal(t, 4.0, stats[KeyBucketMaxSize].GetNumberValue())
}

func TestWorldActorRejectsInvalidConfig(t *testing.T) {
	system := startSystem(t)
	cfg := testConfig(10, 1)
	cfg.Dimensions = 1
	_, err := system.Spawn(context.Background(), "world", NewWorldActor(nil, cfg))
	assert.Error(t, err)
}

func TestApplyPatch(t *testing.T) {
	base := Tuning{Params: DefaultConfig().Params, BucketMaxSize: 16, DepthBudget: 20}
	patch, err := structpb.NewStruct(map[string]any{KeyDepthBudget: 3})
	require.NoError(t, err)

	got, err := applyPatch(base, patch)
	require.NoError(t, err)
	want := base
	want.DepthBudget = 3
	assert.Equal(t, want, got)

	full, err := TuningPatch(want)
	require.NoError(t, err)
	got, err = applyPatch(Tuning{}, full)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApplyPatchRejectsBadIntegers(t *testing.T) {
	base := Tuning{Params: DefaultConfig().Params, BucketMaxSize: 16, DepthBudget: 20}
	tests := []struct {
		name  string
		key   string
		value float64
	}{
		{"huge depth", KeyDepthBudget, 1e12},
		{"depth past the limit", KeyDepthBudget, 65},
		{"fractional depth", KeyDepthBudget, 2.5},
		{"negative depth", KeyDepthBudget, -1},
		{"fractional bucket size", KeyBucketMaxSize, 3.7},
		{"huge bucket size", KeyBucketMaxSize, 1e18},
		{"nan depth", KeyDepthBudget, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := &structpb.Struct{Fields: map[string]*structpb.Value{tt.key: structpb.NewNumberValue(tt.value)}}
			_, err := applyPatch(base, patch)
			assert.Error(t, err)
		})
	}

	patch, err := structpb.NewStruct(map[string]any{KeyDepthBudget: 64})
	require.NoError(t, err)
	got, err := applyPatch(base, patch)
	require.NoError(t, err)
	assert.Equal(t, 64, got.DepthBudget)
}
