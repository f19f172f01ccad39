package quadtree

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ViolationKind tells which part of the partition invariant failed.
type ViolationKind int

const (
	Duplicate ViolationKind = iota
	Missing
	OutOfRange
)

func (k ViolationKind) String() string {
	switch k {
	case Duplicate:
		return "duplicate"
	case Missing:
		return "missing"
	case OutOfRange:
		return "out of range"
	}
	return fmt.Sprintf("ViolationKind(%d)", int(k))
}

// PartitionError reports the first point that breaks the strict partition.
// Leaf is -1 for a missing point.
type PartitionError struct {
	Kind  ViolationKind
	Index int
	Leaf  int
}

func (e *PartitionError) Error() string {
	if e.Leaf < 0 {
		return fmt.Sprintf("partition: point %d is %s", e.Index, e.Kind)
	}
	return fmt.Sprintf("partition: point %d is %s in leaf %d", e.Index, e.Kind, e.Leaf)
}

// Verify checks that leaves reference each index in [0, n) exactly once.
func Verify(leaves []Bucket, n int) error {
	seen := roaring.New()
	for li := range leaves {
		for _, idx := range leaves[li].Members {
			if idx < 0 || idx >= n {
				return &PartitionError{Kind: OutOfRange, Index: idx, Leaf: li}
			}
			if !seen.CheckedAdd(uint32(idx)) {
				return &PartitionError{Kind: Duplicate, Index: idx, Leaf: li}
			}
		}
	}
	if seen.GetCardinality() == uint64(n) {
		return nil
	}
	missing := roaring.New()
	missing.AddRange(0, uint64(n))
	missing.AndNot(seen)
	return &PartitionError{Kind: Missing, Index: int(missing.Minimum()), Leaf: -1}
}
