package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/imageio"
	"go.uber.org/multierr"
)

var ErrPairingMismatch = errors.New("Image and mask filenames do not pair up")

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// CheckPairing verifies that the i-th photograph and the i-th mask share a filename
// (ignoring the extension). Every mismatched pair is reported.
func (d *Dataset) CheckPairing() error {
	var err error
	for i := range d.images {
		if stem(d.images[i]) != stem(d.masks[i]) {
			err = multierr.Append(err, fmt.Errorf("%w: index %v: image %v, mask %v", ErrPairingMismatch, i, d.images[i], d.masks[i]))
		}
	}
	return err
}

// CheckSizes reads the header of every photograph and mask, and verifies that each
// pair has the same dimensions. Every mismatched pair is reported.
func (d *Dataset) CheckSizes() error {
	var err error
	for i := range d.images {
		img, e := imageio.DecodeConfig(d.ImagePath(i))
		if e != nil {
			return e
		}
		mask, e := imageio.DecodeConfig(d.MaskPath(i))
		if e != nil {
			return e
		}
		if img.Width != mask.Width || img.Height != mask.Height {
			err = multierr.Append(err, fmt.Errorf("%w: %v is %vx%v, %v is %vx%v", ErrSizeMismatch, d.ImagePath(i), img.Width, img.Height, d.MaskPath(i), mask.Width, mask.Height))
		}
	}
	return err
}
