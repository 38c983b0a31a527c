package dataset

import (
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
	"gorgonia.org/tensor"
)

// ImageTensor is the photograph as a (3, H, W) float32 tensor in [0,1]
func (s *Sample) ImageTensor() *tensor.Dense {
	return nn.ImageTensor(s.Image)
}

// MaskTensor stacks the instance masks into a (N, H, W) uint8 tensor.
// Returns nil when the image has no instances.
func (t *Target) MaskTensor() *tensor.Dense {
	if len(t.Masks) == 0 {
		return nil
	}
	w, h := t.Masks[0].Width, t.Masks[0].Height
	data := make([]uint8, 0, len(t.Masks)*w*h)
	for _, m := range t.Masks {
		data = append(data, m.Pix...)
	}
	return tensor.New(tensor.WithShape(len(t.Masks), h, w), tensor.WithBacking(data))
}

// BoxTensor is the boxes as a (N, 4) float32 tensor of (xmin, ymin, xmax, ymax)
func (t *Target) BoxTensor() *tensor.Dense {
	data := make([]float32, 0, len(t.Boxes)*4)
	for _, b := range t.Boxes {
		data = append(data, b.XMin, b.YMin, b.XMax, b.YMax)
	}
	return tensor.New(tensor.WithShape(len(t.Boxes), 4), tensor.WithBacking(data))
}
