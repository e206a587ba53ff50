package align

// Overlap returns the length in milliseconds of the intersection of a and b.
// Disjoint or touching intervals overlap by 0.
func Overlap(a, b Interval) int64 {
	return max(0, min(a.End, b.End)-max(a.Start, b.Start))
}
