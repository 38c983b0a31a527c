package dataset

import (
	"fmt"
	"math/rand"
)

// Subset exposes a selection of another dataset's indices.
// Image IDs remain those of the underlying dataset.
type Subset struct {
	Source  Source
	Indices []int
}

func NewSubset(src Source, indices []int) (*Subset, error) {
	for _, i := range indices {
		if i < 0 || i >= src.Len() {
			return nil, fmt.Errorf("%w: subset index %v (length %v)", ErrIndexOutOfRange, i, src.Len())
		}
	}
	return &Subset{
		Source:  src,
		Indices: indices,
	}, nil
}

func (s *Subset) Len() int {
	return len(s.Indices)
}

func (s *Subset) Get(i int) (*Sample, error) {
	if i < 0 || i >= len(s.Indices) {
		return nil, fmt.Errorf("%w: %v (length %v)", ErrIndexOutOfRange, i, len(s.Indices))
	}
	return s.Source.Get(s.Indices[i])
}

// ImagePath of item i, or an empty string if the underlying source does not have paths
func (s *Subset) ImagePath(i int) string {
	if named, ok := s.Source.(Named); ok {
		return named.ImagePath(s.Indices[i])
	}
	return ""
}

// RandomSplit shuffles the indices [0,n) with the given seed, and holds out the last
// testCount of them for evaluation. The same seed always produces the same split.
func RandomSplit(n, testCount int, seed int64) (train, test []int) {
	testCount = max(0, min(testCount, n))
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[:n-testCount], perm[n-testCount:]
}
