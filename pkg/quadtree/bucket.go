// Package quadtree splits a 2-D population of points into bounded-size leaf
// buckets every tick. Buckets hold indexes into the caller's collection and
// never own the points themselves.
package quadtree

import "github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"

// Points is the read-only view of a collection the partition builder needs.
type Points interface {
	Len() int
	XY(i int) (x, y float64)
}

// Bucket is a rectangular region of the domain and the indexes of the points
// that were classified into it.
type Bucket struct {
	Center geometry.Vector2D
	// Size is the full side length on each axis.
	Size geometry.Vector2D
	// Depth counts the splits that produced this bucket (0 for the root).
	Depth   int
	Members []int
}

// NewBucket returns an empty bucket.
func NewBucket(center, size geometry.Vector2D) Bucket {
	return Bucket{Center: center, Size: size}
}

func fillIndexes(dst []int, n int) []int {
	for i := 0; i < n; i++ {
		dst = append(dst, i)
	}
	return dst
}

// Len is the bucket occupancy.
func (b *Bucket) Len() int {
	return len(b.Members)
}

// Empty reports whether no point was classified into the bucket.
func (b *Bucket) Empty() bool {
	return len(b.Members) == 0
}

// Bounds returns the lower-left and upper-right corners.
func (b *Bucket) Bounds() (min, max geometry.Vector2D) {
	h := b.Size.Half()
	return b.Center.Sub(h), b.Center.Add(h)
}

// Contains reports whether (x, y) lies inside the bucket, edges included.
func (b *Bucket) Contains(x, y float64) bool {
	lo, hi := b.Bounds()
	return x >= lo.X && x <= hi.X && y >= lo.Y && y <= hi.Y
}
