package nn

import (
	"github.com/chewxy/math32"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Distance(b Point) float32 {
	return math32.Sqrt(float32((p.X-b.X)*(p.X-b.X) + (p.Y-b.Y)*(p.Y-b.Y)))
}

// Box is an axis aligned bounding box in pixel coordinates, stored as
// (xmin, ymin, xmax, ymax), which is the layout detection models consume.
type Box struct {
	XMin float32 `json:"xmin"`
	YMin float32 `json:"ymin"`
	XMax float32 `json:"xmax"`
	YMax float32 `json:"ymax"`
}

func (b Box) Width() float32 {
	return b.XMax - b.XMin
}

func (b Box) Height() float32 {
	return b.YMax - b.YMin
}

// Area is width * height, with the max edge treated as exclusive.
// A single pixel instance therefore has zero area.
func (b Box) Area() float32 {
	return b.Width() * b.Height()
}

func (b Box) Intersection(c Box) Box {
	r := Box{
		XMin: math32.Max(b.XMin, c.XMin),
		YMin: math32.Max(b.YMin, c.YMin),
		XMax: math32.Min(b.XMax, c.XMax),
		YMax: math32.Min(b.YMax, c.YMax),
	}
	if r.XMax < r.XMin {
		r.XMax = r.XMin
	}
	if r.YMax < r.YMin {
		r.YMax = r.YMin
	}
	return r
}

// Intersection over Union
func (b Box) IOU(c Box) float32 {
	inter := b.Intersection(c).Area()
	union := b.Area() + c.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func (b Box) Center() (float32, float32) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

func (b *Box) Offset(dx, dy float32) {
	b.XMin += dx
	b.XMax += dx
	b.YMin += dy
	b.YMax += dy
}

// Mirror the box horizontally inside an image of the given width.
// Pixel column x maps to width-1-x, so an inclusive box stays inclusive.
func (b Box) FlipHorizontal(imageWidth int) Box {
	w := float32(imageWidth - 1)
	return Box{
		XMin: w - b.XMax,
		YMin: b.YMin,
		XMax: w - b.XMin,
		YMax: b.YMax,
	}
}

// Rect converts to an integer rectangle, rounding outwards.
// The max edge of Box is inclusive, so width and height gain one pixel.
func (b Box) Rect() Rect {
	x1 := int(math32.Floor(b.XMin))
	y1 := int(math32.Floor(b.YMin))
	x2 := int(math32.Ceil(b.XMax))
	y2 := int(math32.Ceil(b.YMax))
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1 + 1,
		Height: y2 - y1 + 1,
	}
}

type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) X2() int {
	return r.X + r.Width
}

func (r Rect) Y2() int {
	return r.Y + r.Height
}

func (r Rect) Area() int {
	return r.Width * r.Height
}
