package dataset

// Package dataset adapts the frontal camera crop row dataset into annotation records
// for fine-tuning an instance segmentation network.
//
// On disk, the dataset is two parallel folders under a root:
//
//	root/<images>/left006527.png   RGB photograph
//	root/<masks>/left006527.png    instance mask, 0 = background, 1..N = instances
//
// Photographs and masks are paired purely by their position in the sorted file listing.
// Names that do not sort identically in both folders (eg inconsistent zero padding)
// silently mispair data. Use Options.StrictPairing or CheckPairing to guard against this.
// Photograph and mask dimensions are checked from the file headers at construction.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/imageio"
)

var ErrCountMismatch = errors.New("Image and mask folders contain a different number of files")
var ErrSizeMismatch = errors.New("Image and mask dimensions differ")
var ErrIndexOutOfRange = errors.New("Dataset index out of range")

// Sample is one photograph and its annotation record
type Sample struct {
	Image  *cimg.Image // 24-bit RGB
	Target *Target
}

// Source is anything that can be indexed like a dataset
type Source interface {
	Len() int
	Get(i int) (*Sample, error)
}

// Named is a Source that knows which photograph each item comes from
type Named interface {
	Source
	ImagePath(i int) string
}

type Options struct {
	StrictPairing bool     // Require that image and mask filenames (minus extension) match pairwise
	Log           logs.Log // Optional
}

// Dataset is an immutable snapshot of the two folders, taken at construction.
// Files added or removed afterwards are not seen. Get only reads files, so a
// Dataset may be shared by many goroutines.
type Dataset struct {
	Root      string
	ImagesDir string
	MasksDir  string

	images    []string
	masks     []string
	transform Transform
}

// Create a dataset over root/imagesFolder and root/masksFolder.
// transform may be nil.
func New(root, imagesFolder, masksFolder string, transform Transform) (*Dataset, error) {
	return NewWithOptions(root, imagesFolder, masksFolder, transform, Options{})
}

func NewWithOptions(root, imagesFolder, masksFolder string, transform Transform, options Options) (*Dataset, error) {
	d := &Dataset{
		Root:      root,
		ImagesDir: filepath.Join(root, imagesFolder),
		MasksDir:  filepath.Join(root, masksFolder),
		transform: transform,
	}
	var err error
	if d.images, err = listFiles(d.ImagesDir); err != nil {
		return nil, err
	}
	if d.masks, err = listFiles(d.MasksDir); err != nil {
		return nil, err
	}
	if len(d.images) != len(d.masks) {
		return nil, fmt.Errorf("%w: %v has %v, %v has %v", ErrCountMismatch, d.ImagesDir, len(d.images), d.MasksDir, len(d.masks))
	}
	if options.StrictPairing {
		if err := d.CheckPairing(); err != nil {
			return nil, err
		}
	}
	if err := d.CheckSizes(); err != nil {
		return nil, err
	}
	if options.Log != nil {
		options.Log.Infof("Dataset %v: %v image/mask pairs", root, len(d.images))
	}
	return d, nil
}

// Sorted names of the regular, non-hidden files in dir.
// os.ReadDir sorts by filename, which is the pairing order.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Error listing dataset folder: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Number of image/mask pairs discovered at construction
func (d *Dataset) Len() int {
	return len(d.images)
}

func (d *Dataset) ImagePath(i int) string {
	return filepath.Join(d.ImagesDir, d.images[i])
}

func (d *Dataset) MaskPath(i int) string {
	return filepath.Join(d.MasksDir, d.masks[i])
}

// Load the photograph and annotation record at index i.
// The record is recomputed on every call. If the dataset has a transform, its
// output is returned as is.
func (d *Dataset) Get(i int) (*Sample, error) {
	if i < 0 || i >= len(d.images) {
		return nil, fmt.Errorf("%w: %v (length %v)", ErrIndexOutOfRange, i, len(d.images))
	}

	img, err := imageio.LoadRGB(d.ImagePath(i))
	if err != nil {
		return nil, err
	}

	rawMask, err := imageio.Open(d.MaskPath(i))
	if err != nil {
		return nil, err
	}
	mask, err := MaskIDsFromImage(rawMask)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", d.MaskPath(i), err)
	}
	if mask.Width != img.Width || mask.Height != img.Height {
		return nil, fmt.Errorf("%w: %v is %vx%v, %v is %vx%v", ErrSizeMismatch, d.ImagePath(i), img.Width, img.Height, d.MaskPath(i), mask.Width, mask.Height)
	}

	target, err := TargetFromMask(mask, int64(i))
	if err != nil {
		return nil, err
	}

	sample := &Sample{
		Image:  img,
		Target: target,
	}
	if d.transform != nil {
		return d.transform.Apply(sample)
	}
	return sample, nil
}
