// Package rle implements the column-major run-length encoding used by COCO
// segmentation annotations.
package rle

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

var ErrInvalidCounts = errors.New("Invalid RLE counts")
var ErrInvalidSize = errors.New("Invalid RLE size")

// RLE is a run-length encoded binary mask.
// Pixels are visited column by column (x outer, y inner), and Counts
// alternates between runs of 0 and runs of 1, always starting with 0.
type RLE struct {
	Height int
	Width  int
	Counts []uint32
}

// Encode a binary mask
func Encode(m *nn.BinaryMask) *RLE {
	r := &RLE{
		Height: m.Height,
		Width:  m.Width,
	}
	var prev uint8
	run := uint32(0)
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			v := m.Pix[y*m.Width+x]
			if v != 0 {
				v = 1
			}
			if v != prev {
				r.Counts = append(r.Counts, run)
				run = 0
				prev = v
			}
			run++
		}
	}
	r.Counts = append(r.Counts, run)
	return r
}

// Decode back into a binary mask
func (r *RLE) Decode() (*nn.BinaryMask, error) {
	if r.Width < 0 || r.Height < 0 {
		return nil, ErrInvalidSize
	}
	m := nn.NewBinaryMask(r.Width, r.Height)
	n := r.Width * r.Height
	i := 0
	for c, count := range r.Counts {
		if i+int(count) > n {
			return nil, fmt.Errorf("%w: runs exceed %v pixels", ErrInvalidCounts, n)
		}
		if c%2 == 1 {
			for j := i; j < i+int(count); j++ {
				x := j / r.Height
				y := j % r.Height
				m.Pix[y*r.Width+x] = 1
			}
		}
		i += int(count)
	}
	if i != n {
		return nil, fmt.Errorf("%w: runs cover %v of %v pixels", ErrInvalidCounts, i, n)
	}
	return m, nil
}

// Area is the number of foreground pixels
func (r *RLE) Area() int {
	area := 0
	for i := 1; i < len(r.Counts); i += 2 {
		area += int(r.Counts[i])
	}
	return area
}

// Bounds returns the tight box around the foreground pixels, as (x, y, width, height).
// Returns all zeros for an empty mask.
func (r *RLE) Bounds() [4]int {
	if r.Height == 0 {
		return [4]int{}
	}
	xmin, ymin := r.Width, r.Height
	xmax, ymax := -1, -1
	i := 0
	for c, count := range r.Counts {
		if c%2 == 1 && count > 0 {
			first := i
			last := i + int(count) - 1
			x0, y0 := first/r.Height, first%r.Height
			x1, y1 := last/r.Height, last%r.Height
			xmin = min(xmin, x0)
			xmax = max(xmax, x1)
			if x0 != x1 {
				// The run wraps into the next column, so it spans every row between
				ymin = 0
				ymax = r.Height - 1
			} else {
				ymin = min(ymin, y0)
				ymax = max(ymax, y1)
			}
		}
		i += int(count)
	}
	if xmax < 0 {
		return [4]int{}
	}
	return [4]int{xmin, ymin, xmax - xmin + 1, ymax - ymin + 1}
}

// String produces the compact ASCII form of the counts.
// Each count after the second is stored as a delta against the count two
// places before it, in 5-bit groups offset by '0'.
func (r *RLE) String() string {
	s := make([]byte, 0, len(r.Counts)*2)
	for i, count := range r.Counts {
		x := int64(count)
		if i > 2 {
			x -= int64(r.Counts[i-2])
		}
		for more := true; more; {
			c := byte(x & 0x1f)
			x >>= 5
			if c&0x10 != 0 {
				more = x != -1
			} else {
				more = x != 0
			}
			if more {
				c |= 0x20
			}
			s = append(s, c+48)
		}
	}
	return string(s)
}

// Parse the compact ASCII form produced by String
func Parse(height, width int, s string) (*RLE, error) {
	r := &RLE{
		Height: height,
		Width:  width,
	}
	p := 0
	for p < len(s) {
		x := int64(0)
		k := 0
		for more := true; more; {
			if p >= len(s) {
				return nil, fmt.Errorf("%w: truncated at byte %v", ErrInvalidCounts, p)
			}
			c := int64(s[p]) - 48
			if c < 0 || c > 63 {
				return nil, fmt.Errorf("%w: unexpected character %q", ErrInvalidCounts, s[p])
			}
			x |= (c & 0x1f) << (5 * k)
			more = c&0x20 != 0
			p++
			k++
			if !more && c&0x10 != 0 {
				x |= -1 << (5 * k)
			}
		}
		if len(r.Counts) > 2 {
			x += int64(r.Counts[len(r.Counts)-2])
		}
		if x < 0 {
			return nil, fmt.Errorf("%w: negative run", ErrInvalidCounts)
		}
		r.Counts = append(r.Counts, uint32(x))
	}
	return r, nil
}

type jsonRLE struct {
	Size   [2]int          `json:"size"`
	Counts json.RawMessage `json:"counts"`
}

// MarshalJSON writes the COCO form {"size": [h, w], "counts": "..."}
func (r *RLE) MarshalJSON() ([]byte, error) {
	counts, err := json.Marshal(r.String())
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonRLE{
		Size:   [2]int{r.Height, r.Width},
		Counts: counts,
	})
}

// UnmarshalJSON accepts counts either as the compact string or as a plain array
func (r *RLE) UnmarshalJSON(b []byte) error {
	var j jsonRLE
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	var s string
	if err := json.Unmarshal(j.Counts, &s); err == nil {
		parsed, err := Parse(j.Size[0], j.Size[1], s)
		if err != nil {
			return err
		}
		*r = *parsed
		return nil
	}
	var counts []uint32
	if err := json.Unmarshal(j.Counts, &counts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCounts, err)
	}
	r.Height = j.Size[0]
	r.Width = j.Size[1]
	r.Counts = counts
	return nil
}
