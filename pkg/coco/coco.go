// Package coco converts a dataset into a COCO ground truth document, which is
// what COCO style evaluators compare predictions against.
package coco

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/dataset"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/gen"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/iox"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/perfstats"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/rle"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/stats"
)

// Document is a COCO ground truth file
type Document struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

type Image struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type Annotation struct {
	ID           int64      `json:"id"`
	ImageID      int64      `json:"image_id"`
	CategoryID   int64      `json:"category_id"`
	BBox         [4]float32 `json:"bbox"` // x, y, width, height
	Area         float32    `json:"area"`
	IsCrowd      int        `json:"iscrowd"`
	Segmentation *rle.RLE   `json:"segmentation"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Options for Build
type Options struct {
	Workers       int              // Number of goroutines loading samples. Zero means one per CPU.
	CategoryNames map[int64]string // Optional names of category IDs. Unnamed categories are called by their number.
	Log           logs.Log         // Optional progress output
}

// Stats describe the dataset, as a side effect of building the document
type Stats struct {
	Images            int
	Instances         int
	MeanInstances     float64 // Instances per image
	VarianceInstances float64
	ModeInstances     int
	AverageLoadTime   time.Duration // Per image
	InstanceHistogram []int         // InstanceHistogram[k] is the number of images with k instances (last bucket is k or more)
}

type itemResult struct {
	index    int
	image    Image
	anns     []Annotation
	duration time.Duration
	err      error
}

// Build loads every sample of src, and converts it into COCO form.
// Box (xmin, ymin, xmax, ymax) becomes (x, y, width, height), and masks are
// run-length encoded. Annotation IDs start at 1, in sample order.
// Samples are loaded concurrently, so src.Get must be safe for concurrent use.
func Build(src dataset.Source, options Options) (*Document, *Stats, error) {
	n := src.Len()
	nThreads := options.Workers
	if nThreads <= 0 {
		nThreads = runtime.NumCPU()
	}
	nThreads = max(1, min(nThreads, n))

	workQueue := gen.FillChannel(gen.Sequence(n)...)
	resultQueue := make(chan itemResult, n)
	doneQueue := make(chan bool, nThreads)

	for i := 0; i < nThreads; i++ {
		go func() {
			done := false
			for !done {
				select {
				case index := <-workQueue:
					resultQueue <- convertItem(src, index)
				default:
					done = true
				}
			}
			doneQueue <- true
		}()
	}
	for i := 0; i < nThreads; i++ {
		<-doneQueue
	}
	results := gen.DrainChannelIntoSlice(resultQueue)

	sort.Slice(results, func(i, j int) bool {
		return results[i].index < results[j].index
	})

	doc := &Document{
		Images:      make([]Image, 0, n),
		Annotations: []Annotation{},
		Categories:  []Category{},
	}
	categories := map[int64]bool{}
	counts := make([]int, 0, n)
	loadTime := perfstats.TimeAccumulator{}
	annID := int64(1)
	for _, r := range results {
		if r.err != nil {
			return nil, nil, r.err
		}
		doc.Images = append(doc.Images, r.image)
		for _, a := range r.anns {
			a.ID = annID
			annID++
			categories[a.CategoryID] = true
			doc.Annotations = append(doc.Annotations, a)
		}
		counts = append(counts, len(r.anns))
		loadTime.AddSample(r.duration)
	}

	ids := make([]int64, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		name, ok := options.CategoryNames[id]
		if !ok {
			name = fmt.Sprintf("%v", id)
		}
		doc.Categories = append(doc.Categories, Category{ID: id, Name: name})
	}

	st := &Stats{
		Images:            len(doc.Images),
		Instances:         len(doc.Annotations),
		AverageLoadTime:   loadTime.Average(),
		InstanceHistogram: stats.Histogram(counts, 16),
	}
	st.MeanInstances, st.VarianceInstances = stats.MeanVar(counts)
	st.ModeInstances, _ = stats.Mode(counts)
	if options.Log != nil {
		options.Log.Infof("Converted %v images with %v instances (%.1f per image, average load time %v)",
			st.Images, st.Instances, st.MeanInstances, st.AverageLoadTime)
	}
	return doc, st, nil
}

func convertItem(src dataset.Source, index int) itemResult {
	start := time.Now()
	sample, err := src.Get(index)
	if err != nil {
		return itemResult{index: index, err: err}
	}
	t := sample.Target
	img := Image{
		ID:     t.ImageID,
		Width:  sample.Image.Width,
		Height: sample.Image.Height,
	}
	if named, ok := src.(dataset.Named); ok {
		img.FileName = filepath.Base(named.ImagePath(index))
	}
	anns := make([]Annotation, t.NumInstances())
	for i := range anns {
		b := t.Boxes[i]
		anns[i] = Annotation{
			ImageID:      t.ImageID,
			CategoryID:   t.Labels[i],
			BBox:         [4]float32{b.XMin, b.YMin, b.XMax - b.XMin, b.YMax - b.YMin},
			Area:         t.Area[i],
			Segmentation: rle.Encode(t.Masks[i]),
		}
		if t.IsCrowd[i] {
			anns[i].IsCrowd = 1
		}
	}
	return itemResult{
		index:    index,
		image:    img,
		anns:     anns,
		duration: time.Since(start),
	}
}

// Write the document as JSON
func (d *Document) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(d)
}

// Save the document to a JSON file
func (d *Document) Save(filename string) error {
	return iox.WriteFile(filename, d.Write)
}

// Load a document from a JSON file
func Load(filename string) (*Document, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	d := &Document{}
	if err := json.Unmarshal(b, d); err != nil {
		return nil, fmt.Errorf("Error decoding COCO document %v: %w", filename, err)
	}
	return d, nil
}
