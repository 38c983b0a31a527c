package nn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func constMap(w, h int, v float32) *ProbabilityMap {
	m := NewProbabilityMap(w, h)
	for i := range m.Prob {
		m.Prob[i] = v
	}
	return m
}

func TestSumTopMasks(t *testing.T) {
	instances := []Instance{
		{Confidence: 0.9, Mask: constMap(2, 2, 0.3)},
		{Confidence: 0.8, Mask: constMap(2, 2, 0.3)},
		{Confidence: 0.7},
		{Confidence: 0.6, Mask: constMap(2, 2, 0.4)},
	}

	// Only the first two masks: 0.6 everywhere
	sum, err := SumTopMasks(instances, 2, 2, 2)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0.6, 0.6, 0.6, 0.6}, sum.Prob, 1e-6)

	sum, err = SumTopMasks(instances, 2, 2, 20)
	require.NoError(t, err)
	require.InDelta(t, 1.0, sum.At(1, 1), 1e-6)
	require.InDelta(t, 1.0, sum.Max(), 1e-6)

	// No instances gives an empty overlay of the right size
	sum, err = SumTopMasks(nil, 3, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 3, len(sum.Prob))
	require.Equal(t, float32(0), sum.Max())

	_, err = SumTopMasks(instances, 3, 2, 2)
	require.ErrorIs(t, err, ErrMaskSizeMismatch)
}

func TestThreshold(t *testing.T) {
	m := NewProbabilityMap(4, 1)
	copy(m.Prob, []float32{0.2, 0.5, 0.51, 1.7})
	b := Threshold(m, DefaultMaskThreshold)
	require.Equal(t, []uint8{0, 0, 1, 1}, b.Pix)
	require.Equal(t, 2, b.Count())
}

func TestBinaryMaskFlip(t *testing.T) {
	m := NewBinaryMask(3, 2)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	f := m.FlipHorizontal()
	require.Equal(t, []uint8{0, 0, 1, 0, 1, 0}, f.Pix)
	require.Equal(t, m.Pix, f.FlipHorizontal().Pix)
}

func TestFilterInstances(t *testing.T) {
	instances := []Instance{{Confidence: 0.9}, {Confidence: 0.2}, {Confidence: 0.8}, {Confidence: 0.7}}
	require.Len(t, FilterInstances(instances, nil), 4)
	require.Len(t, FilterInstances(instances, NewSegmentationParams()), 4)
	kept := FilterInstances(instances, &SegmentationParams{ScoreThreshold: 0.5, MaxInstances: 2})
	require.Equal(t, []Instance{{Confidence: 0.9}, {Confidence: 0.8}}, kept)
}

func TestVerifyClassCount(t *testing.T) {
	cp := &Checkpoint{NumClasses: 2}
	require.NoError(t, VerifyClassCount(cp, DefaultNumClasses))
	require.ErrorIs(t, VerifyClassCount(cp, 91), ErrClassCountMismatch)
}
