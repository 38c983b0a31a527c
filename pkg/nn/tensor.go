package nn

import (
	"github.com/bmharper/cimg/v2"
	"gorgonia.org/tensor"
)

// ImageTensor converts an RGB image into the CHW float32 tensor that detection networks
// consume, with values scaled to [0,1]. The shape is (3, height, width).
func ImageTensor(img *cimg.Image) *tensor.Dense {
	if img.Format != cimg.PixelFormatRGB {
		panic("ImageTensor requires an RGB image")
	}
	w, h := img.Width, img.Height
	plane := w * h
	data := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		row := img.Pixels[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := y*w + x
			data[i] = float32(row[x*3]) / 255
			data[plane+i] = float32(row[x*3+1]) / 255
			data[2*plane+i] = float32(row[x*3+2]) / 255
		}
	}
	return tensor.New(tensor.WithShape(3, h, w), tensor.WithBacking(data))
}

// BatchTensor prepends a batch dimension of 1 to an image tensor, sharing its backing data.
func BatchTensor(t *tensor.Dense) *tensor.Dense {
	shape := append([]int{1}, t.Shape()...)
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(t.Data()))
}
