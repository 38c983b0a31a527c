package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeanVar(t *testing.T) {
	mean, variance := MeanVar([]int{2, 4, 4, 4, 5, 5, 7, 9})
	require.Equal(t, 5.0, mean)
	require.Equal(t, 4.0, variance)

	mean, variance = MeanVar([]float32{})
	require.Equal(t, 0.0, mean)
	require.Equal(t, 0.0, variance)
}

func TestMode(t *testing.T) {
	mode, count := Mode([]int{3, 1, 3, 2, 1})
	require.Equal(t, 1, mode)
	require.Equal(t, 2, count)

	name, count := Mode([]string{"b", "a", "b"})
	require.Equal(t, "b", name)
	require.Equal(t, 2, count)

	name, count = Mode([]string{"c", "a"})
	require.Equal(t, "a", name)
	require.Equal(t, 1, count)

	_, count = Mode([]int{})
	require.Equal(t, 0, count)
}

func TestHistogram(t *testing.T) {
	require.Equal(t, []int{1, 2, 0, 2}, Histogram([]int{0, 1, 1, 3, 9}, 4))
	require.Equal(t, []int{}, Histogram([]int{1}, 0))
}
