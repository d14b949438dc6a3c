package mmgrid

import "iter"

// RaySegment is the part of a traversal that lies inside one division.
type RaySegment struct {
	Division int     // voxel index along the axis
	Length   float64 // length inside the division
	Ratio    float64 // Length / division width
	More     bool    // false on the final segment
}

// Segments splits a traversal of length starting at loc, inside division
// start, into per-division segments. The sequence is restartable.
//
// A zero length yields one zero-length segment. The last division always
// ends the walk: anything past the far boundary is cut off, so the lengths
// sum to min(length, bounds[len(bounds)-1]-loc).
func Segments(bounds []float64, start int, loc, length float64) iter.Seq[RaySegment] {
	return func(yield func(RaySegment) bool) {
		last := len(bounds) - 2
		if start < 0 || start > last {
			return
		}
		at, remaining := loc, length
		if remaining < 0 {
			remaining = 0
		}
		for div := start; ; div++ {
			width := bounds[div+1] - bounds[div]
			diff := bounds[div+1] - at
			if diff < 0 {
				diff = 0
			}
			if remaining < diff || div == last {
				step := remaining
				if step > diff {
					step = diff
				}
				yield(RaySegment{Division: div, Length: step, Ratio: step / width})
				return
			}
			if !yield(RaySegment{Division: div, Length: diff, Ratio: diff / width, More: true}) {
				return
			}
			remaining -= diff
			at = bounds[div+1]
		}
	}
}
