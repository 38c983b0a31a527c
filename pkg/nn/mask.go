package nn

import (
	"errors"
	"fmt"
)

var ErrMaskSizeMismatch = errors.New("Mask dimensions differ")

// ProbabilityMap holds one float per pixel, row major, usually in [0,1].
// Once summed, values can exceed 1.
type ProbabilityMap struct {
	Width  int
	Height int
	Prob   []float32
}

func NewProbabilityMap(width, height int) *ProbabilityMap {
	return &ProbabilityMap{
		Width:  width,
		Height: height,
		Prob:   make([]float32, width*height),
	}
}

func (m *ProbabilityMap) At(x, y int) float32 {
	return m.Prob[y*m.Width+x]
}

// Returns the largest value in the map (0 for an empty map)
func (m *ProbabilityMap) Max() float32 {
	mx := float32(0)
	for _, p := range m.Prob {
		mx = max(mx, p)
	}
	return mx
}

// BinaryMask is a per-pixel occupancy mask. Pix holds 0 or 1 for every pixel, row major.
type BinaryMask struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewBinaryMask(width, height int) *BinaryMask {
	return &BinaryMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (m *BinaryMask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

func (m *BinaryMask) Set(x, y int, v uint8) {
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of set pixels
func (m *BinaryMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		n += int(v)
	}
	return n
}

// Returns a mirrored copy of the mask
func (m *BinaryMask) FlipHorizontal() *BinaryMask {
	f := NewBinaryMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		src := m.Pix[y*m.Width : (y+1)*m.Width]
		dst := f.Pix[y*m.Width : (y+1)*m.Width]
		for x := range src {
			dst[m.Width-1-x] = src[x]
		}
	}
	return f
}

// SumTopMasks adds together the probability maps of the first n instances.
// Instances are expected in model order (descending confidence), so this merges the
// n most confident instances into a single soft overlay.
// Instances without a mask are skipped.
func SumTopMasks(instances []Instance, width, height, n int) (*ProbabilityMap, error) {
	sum := NewProbabilityMap(width, height)
	for i := 0; i < len(instances) && i < n; i++ {
		m := instances[i].Mask
		if m == nil {
			continue
		}
		if m.Width != width || m.Height != height {
			return nil, fmt.Errorf("%w: instance %v is %vx%v, expected %vx%v", ErrMaskSizeMismatch, i, m.Width, m.Height, width, height)
		}
		for j, p := range m.Prob {
			sum.Prob[j] += p
		}
	}
	return sum, nil
}

// Threshold produces a binary mask which is 1 wherever the probability is strictly greater than threshold
func Threshold(m *ProbabilityMap, threshold float32) *BinaryMask {
	b := NewBinaryMask(m.Width, m.Height)
	for i, p := range m.Prob {
		if p > threshold {
			b.Pix[i] = 1
		}
	}
	return b
}
