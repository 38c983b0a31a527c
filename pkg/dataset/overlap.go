package dataset

import (
	flatbush "github.com/bmharper/flatbush-go"
	"github.com/chewxy/math32"
)

// OverlappingInstances returns every pair (i, j), i < j, of instances whose boxes have an
// IoU of at least minIoU. Crop rows rarely overlap much, so a high IoU usually means
// that one row was painted with two different mask values.
func OverlappingInstances(t *Target, minIoU float32) [][2]int {
	pairs := [][2]int{}
	if len(t.Boxes) < 2 {
		return pairs
	}
	fb := flatbush.NewFlatbush[int32]()
	fb.Reserve(len(t.Boxes))
	for _, b := range t.Boxes {
		fb.Add(int32(math32.Floor(b.XMin)), int32(math32.Floor(b.YMin)), int32(math32.Ceil(b.XMax)), int32(math32.Ceil(b.YMax)))
	}
	fb.Finish()

	for i, b := range t.Boxes {
		for _, j := range fb.Search(int32(math32.Floor(b.XMin)), int32(math32.Floor(b.YMin)), int32(math32.Ceil(b.XMax)), int32(math32.Ceil(b.YMax))) {
			if j <= i {
				continue
			}
			if b.IOU(t.Boxes[j]) >= minIoU {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
