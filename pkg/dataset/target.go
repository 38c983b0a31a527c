package dataset

import (
	"fmt"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/gen"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

// Target is the annotation record of one image, in the shape that a Mask R-CNN
// fine-tuning loop consumes. All per-instance slices share the same order.
type Target struct {
	Boxes       []nn.Box         `json:"boxes"`
	Masks       []*nn.BinaryMask `json:"-"`
	Labels      []int64          `json:"labels"`
	Area        []float32        `json:"area"`
	IsCrowd     []bool           `json:"iscrowd"`
	ImageID     int64            `json:"image_id"`
	InstanceIDs []uint32         `json:"instance_ids"` // Mask value that each instance was decoded from
}

func (t *Target) NumInstances() int {
	return len(t.Boxes)
}

// TargetFromMask derives the annotation record of an image from its instance mask.
// Instances appear in ascending order of their mask value.
func TargetFromMask(mask *MaskIDs, imageID int64) (*Target, error) {
	ids := mask.InstanceIDs()
	n := len(ids)
	t := &Target{
		Boxes:       make([]nn.Box, n),
		Masks:       make([]*nn.BinaryMask, n),
		Labels:      make([]int64, n),
		Area:        make([]float32, n),
		IsCrowd:     make([]bool, n),
		ImageID:     imageID,
		InstanceIDs: ids,
	}

	idToIndex := make(map[uint32]int, n)
	type extent struct {
		x1, y1, x2, y2 int
		count          int
	}
	extents := make([]extent, n)
	for i, id := range ids {
		idToIndex[id] = i
		t.Masks[i] = nn.NewBinaryMask(mask.Width, mask.Height)
		extents[i] = extent{x1: mask.Width, y1: mask.Height, x2: -1, y2: -1}
	}

	// One pass over the pixels fills every instance mask and extent at once
	for y := 0; y < mask.Height; y++ {
		row := mask.IDs[y*mask.Width : (y+1)*mask.Width]
		for x, id := range row {
			if id == BackgroundID {
				continue
			}
			i, ok := idToIndex[id]
			if !ok {
				continue
			}
			t.Masks[i].Pix[y*mask.Width+x] = 1
			e := &extents[i]
			e.x1 = gen.Min(e.x1, x)
			e.y1 = gen.Min(e.y1, y)
			e.x2 = gen.Max(e.x2, x)
			e.y2 = gen.Max(e.y2, y)
			e.count++
		}
	}

	for i, e := range extents {
		if e.count == 0 {
			return nil, fmt.Errorf("%w: instance %v of image %v", ErrEmptyInstance, ids[i], imageID)
		}
		t.Boxes[i] = nn.Box{
			XMin: float32(e.x1),
			YMin: float32(e.y1),
			XMax: float32(e.x2),
			YMax: float32(e.y2),
		}
		t.Labels[i] = ForegroundLabel
		t.Area[i] = t.Boxes[i].Area()
	}
	return t, nil
}
