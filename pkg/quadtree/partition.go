package quadtree

import (
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"
)

var (
	// ErrInvalidMaxSize is returned for a bucket capacity below one.
	ErrInvalidMaxSize = errors.New("bucket max size must be at least 1")
	// ErrInvalidDepth is returned for a depth budget outside [0, MaxDepthBudget].
	ErrInvalidDepth = errors.New("depth budget out of range")
)

// MaxDepthBudget bounds the subdivision depth. Past it a float64 bucket side
// of the unit domain has shrunk to nothing.
const MaxDepthBudget = 64

// ValidateLimits checks the partition limits before a simulation is built.
func ValidateLimits(maxSize, depthBudget int) error {
	if maxSize < 1 {
		return fmt.Errorf("max size %d: %w", maxSize, ErrInvalidMaxSize)
	}
	if depthBudget < 0 || depthBudget > MaxDepthBudget {
		return fmt.Errorf("depth budget %d: %w", depthBudget, ErrInvalidDepth)
	}
	return nil
}

type frame struct {
	bucket Bucket
	budget int
}

// Partitioner builds leaf buckets with an explicit worklist. It keeps its
// worklist, leaf list and root index buffer between calls, so the slices
// returned by Build and Root are only valid until the next call.
type Partitioner struct {
	stack  []frame
	leaves []Bucket
	index  []int
}

// NewPartitioner returns a Partitioner with room for the given population.
func NewPartitioner(capacity int) *Partitioner {
	return &Partitioner{index: make([]int, 0, capacity)}
}

// Root returns a bucket over every point of pts, reusing the index buffer.
func (p *Partitioner) Root(center, size geometry.Vector2D, pts Points) Bucket {
	p.index = fillIndexes(p.index[:0], pts.Len())
	b := NewBucket(center, size)
	b.Members = p.index
	return b
}

// Build splits root until every leaf holds at most maxSize points or the depth
// budget is spent. Leaves past the budget may exceed maxSize. Empty buckets are
// dropped, so an empty root yields no leaves. Every member of root ends up in
// exactly one leaf.
//
// Build reorders root.Members in place.
func (p *Partitioner) Build(root Bucket, pts Points, maxSize, depthBudget int) []Bucket {
	p.leaves = p.leaves[:0]
	p.stack = append(p.stack[:0], frame{bucket: root, budget: depthBudget})

	for len(p.stack) > 0 {
		f := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		if f.bucket.Empty() {
			continue
		}
		if f.bucket.Len() <= maxSize || f.budget <= 0 {
			p.leaves = append(p.leaves, f.bucket)
			continue
		}

		for _, q := range split(f.bucket, pts) {
			if q.Empty() {
				continue
			}
			p.stack = append(p.stack, frame{bucket: q, budget: f.budget - 1})
		}
	}
	return p.leaves
}

// Partition is a one-shot Build with a fresh Partitioner.
func Partition(root Bucket, pts Points, maxSize, depthBudget int) []Bucket {
	var p Partitioner
	leaves := p.Build(root, pts, maxSize, depthBudget)
	out := make([]Bucket, len(leaves))
	copy(out, leaves)
	return out
}

// split divides b into its four quadrants. The north-east quadrant reuses b's
// member slice, filtered in place, and b's center shifted by a quarter size.
// Classification compares against the center before the shift; a point on a
// dividing line goes to the east or north side.
func split(b Bucket, pts Points) [4]Bucket {
	c := b.Center
	size := b.Size.Half()
	off := size.Half()
	depth := b.Depth + 1
	hint := b.Len()/4 + 1

	nw := Bucket{Center: geometry.Vector2D{X: c.X - off.X, Y: c.Y + off.Y}, Size: size, Depth: depth, Members: make([]int, 0, hint)}
	sw := Bucket{Center: geometry.Vector2D{X: c.X - off.X, Y: c.Y - off.Y}, Size: size, Depth: depth, Members: make([]int, 0, hint)}
	se := Bucket{Center: geometry.Vector2D{X: c.X + off.X, Y: c.Y - off.Y}, Size: size, Depth: depth, Members: make([]int, 0, hint)}

	ne := b.Members[:0]
	for _, idx := range b.Members {
		x, y := pts.XY(idx)
		west, south := x < c.X, y < c.Y
		switch {
		case !west && !south:
			ne = append(ne, idx)
		case west && !south:
			nw.Members = append(nw.Members, idx)
		case !west && south:
			se.Members = append(se.Members, idx)
		default:
			sw.Members = append(sw.Members, idx)
		}
	}

	b.Members = ne
	b.Center = c.Add(off)
	b.Size = size
	b.Depth = depth

	return [4]Bucket{b, nw, sw, se}
}
