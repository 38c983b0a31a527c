package nn

import (
	"errors"
	"fmt"

	"github.com/bmharper/cimg/v2"
)

// Package nn is the interface layer between our tools and an instance segmentation
// network. To load a network from a checkpoint, use the nnload package.

const DefaultMaskThreshold = 0.5
const DefaultTopMasks = 20

// The crop row dataset has a background class and a single foreground class
const DefaultNumClasses = 2

var ErrClassCountMismatch = errors.New("Checkpoint class count does not match the requested class count")

// NN instance segmentation parameters
type SegmentationParams struct {
	ScoreThreshold float32 // Instances below this confidence are dropped. Zero keeps everything the model returns.
	MaxInstances   int     // Keep at most this many instances (0 = no limit)
}

func NewSegmentationParams() *SegmentationParams {
	return &SegmentationParams{}
}

// InstanceSegmenter is given an RGB image, and returns zero or more object instances,
// each with a per-pixel probability map.
type InstanceSegmenter interface {
	// Close releases the underlying runtime objects. You MUST call this when finished.
	Close()

	// Segment runs a forward pass over a 24-bit RGB image.
	// Instances are returned in the order the model produced them, which is descending confidence.
	Segment(img *cimg.Image, params *SegmentationParams) (*Prediction, error)

	// The checkpoint that the network was loaded from.
	// Callers assume this remains constant for the lifetime of the segmenter.
	Checkpoint() *Checkpoint
}

// Apply the generic filtering of SegmentationParams to raw model output.
func FilterInstances(instances []Instance, params *SegmentationParams) []Instance {
	if params == nil {
		return instances
	}
	out := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.Confidence < params.ScoreThreshold {
			continue
		}
		out = append(out, inst)
		if params.MaxInstances > 0 && len(out) >= params.MaxInstances {
			break
		}
	}
	return out
}

// Verify that the exported model heads were sized for numClasses (including background).
func VerifyClassCount(cp *Checkpoint, numClasses int) error {
	if cp.NumClasses != numClasses {
		return fmt.Errorf("%w: checkpoint has %v, expected %v", ErrClassCountMismatch, cp.NumClasses, numClasses)
	}
	return nil
}
