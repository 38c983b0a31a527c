// Package plots renders training and evaluation curves to PNG.
//
// Every chart builds its own plot.Plot values and draws them onto its own
// canvas, so there is no shared drawing state between charts.
package plots

import (
	"image/color"
	"io"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/iox"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	TitleSize = vg.Length(18)
	titleArea = vg.Length(36)
	padding   = vg.Length(12)
)

// Figure is a titled grid of plots
type Figure struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Plots  [][]*plot.Plot // Plots[row][col]. Every row must have the same length.
}

func newFigure(title string, width, height vg.Length, rows, cols int) *Figure {
	f := &Figure{
		Title:  title,
		Width:  width,
		Height: height,
		Plots:  make([][]*plot.Plot, rows),
	}
	for r := range rows {
		f.Plots[r] = make([]*plot.Plot, cols)
		for c := range cols {
			f.Plots[r][c] = plot.New()
		}
	}
	return f
}

// Rows is the number of rows in the grid
func (f *Figure) Rows() int {
	return len(f.Plots)
}

// Cols is the number of columns in the grid
func (f *Figure) Cols() int {
	if len(f.Plots) == 0 {
		return 0
	}
	return len(f.Plots[0])
}

// Draw the figure onto a canvas
func (f *Figure) Draw(dc draw.Canvas) {
	body := dc
	if f.Title != "" {
		style := text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, TitleSize),
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
			Handler: plot.DefaultTextHandler,
		}
		pt := vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - padding/2}
		dc.FillText(style, pt, f.Title)
		body = draw.Crop(dc, 0, 0, 0, -titleArea)
	}
	tiles := draw.Tiles{
		Rows:      f.Rows(),
		Cols:      f.Cols(),
		PadTop:    padding / 2,
		PadBottom: padding,
		PadLeft:   padding,
		PadRight:  padding,
		PadX:      padding * 2,
		PadY:      padding * 2,
	}
	canvases := plot.Align(f.Plots, tiles, body)
	for r := range f.Plots {
		for c := range f.Plots[r] {
			f.Plots[r][c].Draw(canvases[r][c])
		}
	}
}

// Render the figure into an image canvas
func (f *Figure) Render() *vgimg.Canvas {
	img := vgimg.New(f.Width, f.Height)
	f.Draw(draw.New(img))
	return img
}

// WritePNG encodes the figure as a PNG image
func (f *Figure) WritePNG(w io.Writer) error {
	_, err := vgimg.PngCanvas{Canvas: f.Render()}.WriteTo(w)
	return err
}

// Save the figure as a PNG file
func (f *Figure) Save(filename string) error {
	return iox.WriteFile(filename, f.WritePNG)
}
