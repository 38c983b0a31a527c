package gen

func Min[T Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Abs[T Integer | Float](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

func Clamp[T Ordered](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Returns the index of the smallest element, or -1 if the slice is empty.
// Ties resolve to the earliest index.
func ArgMin[T Ordered](src []T) int {
	best := -1
	for i, v := range src {
		if best == -1 || v < src[best] {
			best = i
		}
	}
	return best
}

// Returns the index of the largest element, or -1 if the slice is empty.
// Ties resolve to the earliest index.
func ArgMax[T Ordered](src []T) int {
	best := -1
	for i, v := range src {
		if best == -1 || v > src[best] {
			best = i
		}
	}
	return best
}
