package onnx

import (
	"fmt"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

// RawOutputs are the flattened output tensors of one forward pass
type RawOutputs struct {
	Boxes     []float32 // N*4, (xmin, ymin, xmax, ymax)
	Labels    []int64   // N
	Scores    []float32 // N
	Masks     []float32 // N*1*H*W
	MaskShape []int64   // (N, 1, H, W)
}

// DecodeOutputs turns raw output tensors into instances, in model order.
// The mask probability maps must be the same size as the input image.
func DecodeOutputs(raw *RawOutputs, width, height int) ([]nn.Instance, error) {
	n := len(raw.Scores)
	if len(raw.Boxes) != n*4 {
		return nil, fmt.Errorf("%w: %v boxes values for %v scores", ErrOutputShape, len(raw.Boxes), n)
	}
	if len(raw.Labels) != n {
		return nil, fmt.Errorf("%w: %v labels for %v scores", ErrOutputShape, len(raw.Labels), n)
	}
	if len(raw.MaskShape) != 4 || raw.MaskShape[0] != int64(n) || raw.MaskShape[1] != 1 ||
		raw.MaskShape[2] != int64(height) || raw.MaskShape[3] != int64(width) {
		return nil, fmt.Errorf("%w: masks are %v, expected [%v 1 %v %v]", ErrOutputShape, raw.MaskShape, n, height, width)
	}
	plane := width * height
	if len(raw.Masks) != n*plane {
		return nil, fmt.Errorf("%w: %v mask values, expected %v", ErrOutputShape, len(raw.Masks), n*plane)
	}

	instances := make([]nn.Instance, n)
	for i := range n {
		mask := nn.NewProbabilityMap(width, height)
		copy(mask.Prob, raw.Masks[i*plane:(i+1)*plane])
		instances[i] = nn.Instance{
			Class:      int(raw.Labels[i]),
			Confidence: raw.Scores[i],
			Box: nn.Box{
				XMin: raw.Boxes[i*4],
				YMin: raw.Boxes[i*4+1],
				XMax: raw.Boxes[i*4+2],
				YMax: raw.Boxes[i*4+3],
			},
			Mask: mask,
		}
	}
	return instances, nil
}
