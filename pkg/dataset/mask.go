package dataset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

// Every instance belongs to the single foreground class. Class 0 is background.
const ForegroundLabel = 1

// Mask value of background pixels
const BackgroundID = 0

var ErrEmptyInstance = errors.New("Instance has no pixels in the mask")
var ErrUnsupportedMask = errors.New("Unsupported mask image format")

// MaskIDs is a decoded instance mask: one integer instance identifier per pixel, row major.
type MaskIDs struct {
	Width  int
	Height int
	IDs    []uint32
}

// Read the per-pixel instance identifiers out of a decoded mask image, without any colour conversion.
//   - Paletted images yield the palette index (this is how most labelling tools save masks)
//   - Gray and Gray16 images yield the raw value
//   - Colour images yield the packed 24-bit RGB value, so distinct colours stay distinct instances
//   - Colour images where every pixel is gray (eg gray PNGs with a transparent colour) yield the gray value
//   - 16-bit colour images yield the rank of each distinct colour, because 48 bits don't fit in an ID
func MaskIDsFromImage(src image.Image) (*MaskIDs, error) {
	b := src.Bounds()
	m := &MaskIDs{
		Width:  b.Dx(),
		Height: b.Dy(),
		IDs:    make([]uint32, b.Dx()*b.Dy()),
	}
	switch s := src.(type) {
	case *image.Paletted:
		for y := 0; y < m.Height; y++ {
			row := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < m.Width; x++ {
				m.IDs[y*m.Width+x] = uint32(row[x])
			}
		}
	case *image.Gray:
		for y := 0; y < m.Height; y++ {
			row := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < m.Width; x++ {
				m.IDs[y*m.Width+x] = uint32(row[x])
			}
		}
	case *image.Gray16:
		for y := 0; y < m.Height; y++ {
			row := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < m.Width; x++ {
				m.IDs[y*m.Width+x] = uint32(row[x*2])<<8 | uint32(row[x*2+1])
			}
		}
	case *image.Alpha, *image.Alpha16, *image.CMYK:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedMask, src)
	default:
		colorIDs(src, m)
	}
	return m, nil
}

// Straight (non-premultiplied) colour of a pixel. Fully transparent pixels of
// NRGBA images keep their colour, which is where tRNS gray PNGs keep their value.
func nrgba64At(src image.Image, x, y int) color.NRGBA64 {
	switch s := src.(type) {
	case *image.NRGBA:
		c := s.NRGBAAt(x, y)
		return color.NRGBA64{R: uint16(c.R) * 0x101, G: uint16(c.G) * 0x101, B: uint16(c.B) * 0x101, A: uint16(c.A) * 0x101}
	case *image.NRGBA64:
		return s.NRGBA64At(x, y)
	}
	return color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
}

func colorIDs(src image.Image, m *MaskIDs) {
	b := src.Bounds()
	_, wide := src.(*image.NRGBA64)
	if _, ok := src.(*image.RGBA64); ok {
		wide = true
	}
	shift := uint64(8)
	if wide {
		shift = 0
	}

	// Unpremultiplied channels, at the source's bit depth, packed as R<<32 | G<<16 | B
	keys := make([]uint64, len(m.IDs))
	gray := true
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := nrgba64At(src, b.Min.X+x, b.Min.Y+y)
			r, g, bl := uint64(c.R)>>shift, uint64(c.G)>>shift, uint64(c.B)>>shift
			if r != g || g != bl {
				gray = false
			}
			keys[y*m.Width+x] = r<<32 | g<<16 | bl
		}
	}

	switch {
	case gray:
		for i, k := range keys {
			m.IDs[i] = uint32(k & 0xffff)
		}
	case !wide:
		for i, k := range keys {
			m.IDs[i] = uint32(k>>32)<<16 | uint32((k>>16)&0xff)<<8 | uint32(k&0xff)
		}
	default:
		distinct := slices.Compact(slices.Sorted(slices.Values(keys)))
		rank := make(map[uint64]uint32, len(distinct))
		next := uint32(1)
		for _, k := range distinct {
			if k == 0 {
				continue
			}
			rank[k] = next
			next++
		}
		for i, k := range keys {
			m.IDs[i] = rank[k]
		}
	}
}

// Distinct non-background identifiers in ascending order.
// This is the canonical instance order for the image.
func (m *MaskIDs) InstanceIDs() []uint32 {
	seen := map[uint32]bool{}
	ids := []uint32{}
	for _, id := range m.IDs {
		if id == BackgroundID || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Build the binary occupancy mask of a single instance
func (m *MaskIDs) Binary(id uint32) *nn.BinaryMask {
	b := nn.NewBinaryMask(m.Width, m.Height)
	for i, v := range m.IDs {
		if v == id {
			b.Pix[i] = 1
		}
	}
	return b
}
