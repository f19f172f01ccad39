package simulation

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestRecorderWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorderTo(&buf)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Write(TickStats{Tick: uint64(i), Boids: 10, Leaves: 2}))
	}
	require.NoError(t, r.Close())

	got := lines(buf.String())
	require.Len(t, got, 4)
	assert.True(t, strings.HasPrefix(got[0], "tick,boids,leaves,largest_leaf"), got[0])
	assert.True(t, strings.HasPrefix(got[3], "2,10,2,"), got[3])
}

func TestRecorderCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.csv.zst")
	r, err := NewRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Write(TickStats{Tick: 0, Boids: 5}))
	require.NoError(t, r.Write(TickStats{Tick: 1, Boids: 5}))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()
	raw, err := io.ReadAll(dec)
	require.NoError(t, err)

	got := lines(string(raw))
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[2], "1,5,"))
}

func TestRecorderPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.csv")
	r, err := NewRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Write(TickStats{Tick: 7}))
	require.NoError(t, r.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, lines(string(raw)), 2)
}

func TestNilRecorder(t *testing.T) {
	r, err := NewRecorder("")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, r.Write(TickStats{}))
	assert.NoError(t, r.Close())
}
