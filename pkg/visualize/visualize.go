// Package visualize renders segmentation results and dataset annotations as images.
package visualize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/bmharper/cimg/v2"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/imageio"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
	"golang.org/x/image/font/gofont/goregular"
)

var ErrSizeMismatch = errors.New("Overlay size does not match image size")

// DefaultAlpha is the opacity of a mask drawn over an image
const DefaultAlpha = 0.7

// Gap between the two halves of a side by side image
const sideBySideGap = 8

var labelFont *truetype.Font

func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Heatmap colours a probability map, stretching its own min..max over the colormap
func Heatmap(m *nn.ProbabilityMap) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	lo, hi := valueRange(m)
	scale := float32(0)
	if hi > lo {
		scale = 1 / (hi - lo)
	}
	for i, v := range m.Prob {
		out.SetNRGBA(i%m.Width, i/m.Width, HeatColormap.At((v-lo)*scale))
	}
	return out
}

// SideBySideHeatmap places the photograph on the left and the heat map of m on the right
func SideBySideHeatmap(img *cimg.Image, m *nn.ProbabilityMap) (*image.NRGBA, error) {
	if img.Width != m.Width || img.Height != m.Height {
		return nil, fmt.Errorf("%w: image %vx%v, map %vx%v", ErrSizeMismatch, img.Width, img.Height, m.Width, m.Height)
	}
	dc := gg.NewContext(img.Width*2+sideBySideGap, img.Height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(imageio.ToNRGBA(img), 0, 0)
	dc.DrawImage(Heatmap(m), img.Width+sideBySideGap, 0)
	return toNRGBA(dc.Image()), nil
}

// BinaryMask draws 0 and 1 with the two ends of the heat colormap
func BinaryMask(m *nn.BinaryMask) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	off := HeatColormap.At(0)
	on := HeatColormap.At(1)
	for i, v := range m.Pix {
		c := off
		if v != 0 {
			c = on
		}
		out.SetNRGBA(i%m.Width, i/m.Width, c)
	}
	return out
}

// BlendMask mixes clr into the photograph wherever the mask is set.
// alpha is the weight of clr, so 0 leaves the photograph untouched.
func BlendMask(img *cimg.Image, m *nn.BinaryMask, clr color.Color, alpha float64) (*image.NRGBA, error) {
	if img.Width != m.Width || img.Height != m.Height {
		return nil, fmt.Errorf("%w: image %vx%v, mask %vx%v", ErrSizeMismatch, img.Width, img.Height, m.Width, m.Height)
	}
	out := imageio.ToNRGBA(img)
	blendInto(out, m, color.NRGBAModel.Convert(clr).(color.NRGBA), alpha)
	return out, nil
}

func blendInto(dst *image.NRGBA, m *nn.BinaryMask, c color.NRGBA, alpha float64) {
	alpha = min(max(alpha, 0), 1)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-alpha) + float64(b)*alpha + 0.5)
	}
	for y := 0; y < m.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] == 0 {
				continue
			}
			p := row[x*4 : x*4+3]
			p[0] = mix(p[0], c.R)
			p[1] = mix(p[1], c.G)
			p[2] = mix(p[2], c.B)
		}
	}
}

// Annotation is one instance to draw in DrawInstances
type Annotation struct {
	Box   nn.Box
	Mask  *nn.BinaryMask // May be nil
	Label string         // May be empty
}

// DrawInstances tints every mask in its own colour, outlines its box, and writes its label
func DrawInstances(img *cimg.Image, annotations []Annotation, alpha float64) (*image.NRGBA, error) {
	out := imageio.ToNRGBA(img)
	for i, a := range annotations {
		if a.Mask == nil {
			continue
		}
		if a.Mask.Width != img.Width || a.Mask.Height != img.Height {
			return nil, fmt.Errorf("%w: image %vx%v, mask %v is %vx%v", ErrSizeMismatch, img.Width, img.Height, i, a.Mask.Width, a.Mask.Height)
		}
		blendInto(out, a.Mask, InstanceColor(i), alpha)
	}

	dc := gg.NewContextForImage(out)
	dc.SetFontFace(truetype.NewFace(labelFont, &truetype.Options{Size: 12}))
	for i, a := range annotations {
		c := InstanceColor(i)
		// Box max is inclusive, so the outline goes around the last pixel
		x, y := float64(a.Box.XMin), float64(a.Box.YMin)
		w, h := float64(a.Box.Width())+1, float64(a.Box.Height())+1
		dc.SetColor(c)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
		if a.Label != "" {
			dc.DrawStringAnchored(a.Label, x+2, y+2, 0, 1)
		}
	}
	return toNRGBA(dc.Image()), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
