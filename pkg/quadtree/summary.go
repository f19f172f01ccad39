package quadtree

import "gonum.org/v1/gonum/stat"

// Summary describes one partition pass.
type Summary struct {
	Leaves    int
	Members   int
	Largest   int
	Oversized int
	MaxDepth  int
	// MeanOccupancy and StdDevOccupancy are over leaf sizes.
	MeanOccupancy   float64
	StdDevOccupancy float64
}

// Summarize computes leaf statistics. A leaf larger than maxSize counts as oversized.
func Summarize(leaves []Bucket, maxSize int) Summary {
	s := Summary{Leaves: len(leaves)}
	if len(leaves) == 0 {
		return s
	}
	occupancy := make([]float64, len(leaves))
	for i := range leaves {
		n := leaves[i].Len()
		occupancy[i] = float64(n)
		s.Members += n
		if n > s.Largest {
			s.Largest = n
		}
		if n > maxSize {
			s.Oversized++
		}
		if leaves[i].Depth > s.MaxDepth {
			s.MaxDepth = leaves[i].Depth
		}
	}
	if len(occupancy) < 2 {
		s.MeanOccupancy = occupancy[0]
		return s
	}
	s.MeanOccupancy, s.StdDevOccupancy = stat.MeanStdDev(occupancy, nil)
	return s
}
