package gen

// FillChannel creates a channel with room for every item, and sends them all.
// Workers can then drain it with a non-blocking receive, and stop when it is empty.
func FillChannel[T any](items ...T) chan T {
	ch := make(chan T, len(items))
	for _, v := range items {
		ch <- v
	}
	return ch
}

// DrainChannelIntoSlice reads from a channel until it is empty, and returns all items in a slice
func DrainChannelIntoSlice[T any](ch chan T) []T {
	done := false
	slice := make([]T, 0, len(ch)) // optimize for the common case where we're the only reader
	for !done {
		select {
		case v := <-ch:
			slice = append(slice, v)
		default:
			done = true
		}
	}
	return slice
}

// Sequence returns [0, 1, ... n-1]
func Sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
