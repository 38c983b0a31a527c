package stats

import "github.com/toschilt/semantic-feature-detector-ts/pkg/gen"

// Returns (mean, variance) of the given samples.
func MeanVar[T gen.Float | gen.Integer](samples []T) (float64, float64) {
	mean := Mean(samples)
	variance := Variance(samples, mean)
	return mean, variance
}

// Returns the mean of the given samples, or 0 if there are none.
func Mean[T gen.Float | gen.Integer](samples []T) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += float64(v)
	}
	return sum / float64(len(samples))
}

// Returns the variance of the given samples, or 0 if there are none.
func Variance[T gen.Float | gen.Integer](samples []T, mean float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		diff := float64(v) - mean
		sum += diff * diff
	}
	return sum / float64(len(samples))
}

// Returns the mode and count of the most frequent element in the given samples.
// Ties go to the smallest value, so that the result does not depend on map order.
func Mode[T gen.Ordered](src []T) (mode T, count int) {
	counts := make(map[T]int)
	for _, v := range src {
		counts[v]++
	}
	for k, v := range counts {
		if v > count || (v == count && k < mode) {
			mode = k
			count = v
		}
	}
	return
}

// Histogram counts how many samples have each value in [0, n).
// Values outside that range are clamped into the first or last bucket.
func Histogram(samples []int, n int) []int {
	h := make([]int, n)
	if n == 0 {
		return h
	}
	for _, v := range samples {
		h[gen.Clamp(v, 0, n-1)]++
	}
	return h
}
