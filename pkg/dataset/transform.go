package dataset

import (
	"slices"

	"github.com/disintegration/imaging"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/imageio"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

// Transform rewrites a sample (photograph and annotation record together).
// Transforms must be deterministic, and must not modify their input.
type Transform interface {
	Apply(s *Sample) (*Sample, error)
}

type TransformFunc func(s *Sample) (*Sample, error)

func (f TransformFunc) Apply(s *Sample) (*Sample, error) {
	return f(s)
}

// Compose runs transforms in order
type Compose []Transform

func (c Compose) Apply(s *Sample) (*Sample, error) {
	var err error
	for _, t := range c {
		if s, err = t.Apply(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// HorizontalFlip mirrors the photograph, the instance masks and the boxes.
// Random flipping is left to the caller, by choosing which indices get this transform.
type HorizontalFlip struct{}

func (HorizontalFlip) Apply(s *Sample) (*Sample, error) {
	w := s.Image.Width
	src := s.Target
	dst := &Target{
		Boxes:       make([]nn.Box, len(src.Boxes)),
		Masks:       make([]*nn.BinaryMask, len(src.Masks)),
		Labels:      slices.Clone(src.Labels),
		Area:        slices.Clone(src.Area),
		IsCrowd:     slices.Clone(src.IsCrowd),
		ImageID:     src.ImageID,
		InstanceIDs: slices.Clone(src.InstanceIDs),
	}
	for i, b := range src.Boxes {
		dst.Boxes[i] = b.FlipHorizontal(w)
	}
	for i, m := range src.Masks {
		dst.Masks[i] = m.FlipHorizontal()
	}
	flipped := imaging.FlipH(imageio.ToNRGBA(s.Image))
	return &Sample{
		Image:  imageio.FromImage(flipped),
		Target: dst,
	}, nil
}
