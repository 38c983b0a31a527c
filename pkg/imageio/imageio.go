package imageio

// Package imageio moves pixels between files, the standard library image types,
// and our 24-bit RGB cimg buffers.

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/disintegration/imaging"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/iox"

	// Masks are occasionally exported as webp or bmp by labelling tools
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode an image file without any colour conversion
func Open(filename string) (image.Image, error) {
	img, err := imaging.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("Error decoding %v: %w", filename, err)
	}
	return img, nil
}

// Read only the dimensions and colour model from an image file's header
func DecodeConfig(filename string) (image.Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("Error reading header of %v: %w", filename, err)
	}
	return cfg, nil
}

// Decode an image file and force it to 3 channel RGB.
// Grayscale is expanded to three channels, and alpha is discarded.
func LoadRGB(filename string) (*cimg.Image, error) {
	img, err := Open(filename)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Convert any image to a tightly packed RGB cimg image.
// Alpha is dropped without compositing, so transparent pixels keep their straight colour.
func FromImage(src image.Image) *cimg.Image {
	b := src.Bounds()
	dst := cimg.NewImage(b.Dx(), b.Dy(), cimg.PixelFormatRGB)
	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			srcRow := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			dstRow := dst.Pixels[y*dst.Stride:]
			for x := 0; x < b.Dx(); x++ {
				dstRow[x*3] = srcRow[x*4]
				dstRow[x*3+1] = srcRow[x*4+1]
				dstRow[x*3+2] = srcRow[x*4+2]
			}
		}
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			srcRow := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			dstRow := dst.Pixels[y*dst.Stride:]
			for x := 0; x < b.Dx(); x++ {
				v := srcRow[x]
				dstRow[x*3] = v
				dstRow[x*3+1] = v
				dstRow[x*3+2] = v
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			dstRow := dst.Pixels[y*dst.Stride:]
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dstRow[x*3] = c.R
				dstRow[x*3+1] = c.G
				dstRow[x*3+2] = c.B
			}
		}
	}
	return dst
}

// Convert an RGB cimg image into an opaque NRGBA image
func ToNRGBA(src *cimg.Image) *image.NRGBA {
	if src.Format != cimg.PixelFormatRGB {
		panic("ToNRGBA requires an RGB image")
	}
	dst := image.NewNRGBA(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		srcRow := src.Pixels[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < src.Width; x++ {
			dstRow[x*4] = srcRow[x*3]
			dstRow[x*4+1] = srcRow[x*3+1]
			dstRow[x*4+2] = srcRow[x*3+2]
			dstRow[x*4+3] = 255
		}
	}
	return dst
}

// Save an image. The format is chosen from the file extension (.png or .jpg).
// JPEG goes through cimg, everything else is written as PNG.
func Save(filename string, img image.Image) error {
	buf := &bytes.Buffer{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		b, err := cimg.Compress(FromImage(img), cimg.MakeCompressParams(cimg.Sampling420, 90, 0))
		if err != nil {
			return err
		}
		buf.Write(b)
	default:
		if err := png.Encode(buf, img); err != nil {
			return err
		}
	}
	return iox.WriteStreamToFile(filename, buf)
}
