package simulation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/klauspost/compress/zstd"
)

// TickStats is one telemetry row, written once per tick.
type TickStats struct {
	Tick            uint64  `csv:"tick"`
	Boids           int     `csv:"boids"`
	Leaves          int     `csv:"leaves"`
	Largest         int     `csv:"largest_leaf"`
	Oversized       int     `csv:"oversized_leaves"`
	MaxDepth        int     `csv:"max_depth"`
	MeanOccupancy   float64 `csv:"mean_occupancy"`
	StdDevOccupancy float64 `csv:"stddev_occupancy"`
	PartitionMicros int64   `csv:"partition_us"`
	UpdateMicros    int64   `csv:"update_us"`
	TotalMicros     int64   `csv:"total_us"`
}

// Recorder appends TickStats rows as CSV. A nil Recorder discards everything.
type Recorder struct {
	out           io.Writer
	closers       []io.Closer
	headerWritten bool
}

// NewRecorder creates the telemetry file. Paths ending in .zst are zstd compressed.
// Returns nil if path is empty (telemetry disabled).
func NewRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry file: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return &Recorder{out: f, closers: []io.Closer{f}}, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating telemetry compressor: %w", err)
	}
	// the encoder must be flushed before the file is closed
	return &Recorder{out: enc, closers: []io.Closer{enc, f}}, nil
}

// NewRecorderTo writes rows to w. Closing the Recorder does not close w.
func NewRecorderTo(w io.Writer) *Recorder {
	return &Recorder{out: w}
}

// Write appends one row, preceded by the header on the first call.
func (r *Recorder) Write(stats TickStats) error {
	if r == nil {
		return nil
	}
	records := []TickStats{stats}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.out); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}
