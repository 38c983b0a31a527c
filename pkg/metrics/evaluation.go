package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/iox"
	"gonum.org/v1/gonum/mat"
)

var ErrStatsLength = errors.New("Wrong number of evaluation statistics")
var ErrUnknownFamily = errors.New("Unknown metric family")

// NumStats is the length of the COCO summary vector for each family
const NumStats = 12

// Positions in the COCO summary vector
const (
	APIoU50To95 = 0  // AP at IoU=.50:.05:.95
	APIoU50     = 1  // AP at IoU=.50
	APIoU75     = 2  // AP at IoU=.75
	APSmall     = 3  // AP for small objects
	APMedium    = 4  // AP for medium objects
	APLarge     = 5  // AP for large objects
	AR1         = 6  // AR given 1 detection per image
	AR10        = 7  // AR given 10 detections per image
	AR100       = 8  // AR given 100 detections per image
	ARSmall     = 9  // AR for small objects
	ARMedium    = 10 // AR for medium objects
	ARLarge     = 11 // AR for large objects
)

// StatTitles are the chart titles of each position in the summary vector
var StatTitles = [NumStats]string{
	"AP at IoU=.50:.05:.95",
	"AP at IoU=.50",
	"AP at IoU=.75",
	"AP for small objects",
	"AP for medium objects",
	"AP for large objects",
	"AR given 1 detection per image",
	"AR given 10 detections per image",
	"AR given 100 detections per image",
	"AR for small objects",
	"AR for medium objects",
	"AR for large objects",
}

// Family selects between box detection and mask segmentation metrics
type Family string

const (
	BBox Family = "bbox"
	Segm Family = "segm"
)

// Families lists both metric families
var Families = []Family{BBox, Segm}

// Title is the chart heading for the family
func (f Family) Title() string {
	switch f {
	case BBox:
		return "Bounding box testing metrics"
	case Segm:
		return "Segmentation mask testing metrics"
	}
	return string(f)
}

// EvaluationLog holds the COCO summary vectors for every evaluated epoch.
// Row i of BBox and Segm belongs to Epochs[i]. Both have NumStats columns.
type EvaluationLog struct {
	Epochs []int
	BBox   *mat.Dense
	Segm   *mat.Dense
}

type evaluationEntry struct {
	BBox []float64 `json:"bbox"`
	Segm []float64 `json:"segm"`
}

// LoadEvaluationLog reads an evaluation log JSON file
func LoadEvaluationLog(filename string) (*EvaluationLog, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log, err := ParseEvaluationLog(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to read evaluation log %v: %w", filename, err)
	}
	return log, nil
}

// ParseEvaluationLog decodes {"<epoch>": {"bbox": [12 floats], "segm": [12 floats]}}.
// The epochs are sorted ascending, regardless of the order of the JSON keys.
func ParseEvaluationLog(r io.Reader) (*EvaluationLog, error) {
	raw := map[string]map[string]json.RawMessage{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	epochs, keys, err := sortedEpochs(raw)
	if err != nil {
		return nil, err
	}
	log := &EvaluationLog{
		Epochs: epochs,
	}
	if len(epochs) == 0 {
		return log, nil
	}
	log.BBox = mat.NewDense(len(epochs), NumStats, nil)
	log.Segm = mat.NewDense(len(epochs), NumStats, nil)
	for row, key := range keys {
		for _, family := range Families {
			msg, ok := raw[key][string(family)]
			if !ok {
				return nil, fmt.Errorf("%w '%v' in epoch %v", ErrMissingKey, family, key)
			}
			var values []float64
			if err := json.Unmarshal(msg, &values); err != nil {
				return nil, fmt.Errorf("Invalid '%v' in epoch %v: %w", family, key, err)
			}
			if len(values) != NumStats {
				return nil, fmt.Errorf("%w: '%v' in epoch %v has %v values, expected %v", ErrStatsLength, family, key, len(values), NumStats)
			}
			log.Matrix(family).SetRow(row, values)
		}
	}
	return log, nil
}

// Len is the number of epochs
func (e *EvaluationLog) Len() int {
	return len(e.Epochs)
}

// Matrix returns the (epochs x NumStats) matrix of the family, or nil for an unknown family
func (e *EvaluationLog) Matrix(family Family) *mat.Dense {
	switch family {
	case BBox:
		return e.BBox
	case Segm:
		return e.Segm
	}
	return nil
}

// Series returns one statistic of a family, across all epochs
func (e *EvaluationLog) Series(family Family, index int) ([]float64, error) {
	if index < 0 || index >= NumStats {
		return nil, fmt.Errorf("Statistic index %v out of range [0, %v)", index, NumStats)
	}
	if family != BBox && family != Segm {
		return nil, fmt.Errorf("%w '%v'", ErrUnknownFamily, family)
	}
	m := e.Matrix(family)
	if m == nil {
		return []float64{}, nil
	}
	return mat.Col(nil, index, m), nil
}

// Write the log in the same JSON layout that ParseEvaluationLog reads.
// Every statistic is written, including those that are never plotted.
func (e *EvaluationLog) Write(w io.Writer) error {
	out := map[string]evaluationEntry{}
	for i, epoch := range e.Epochs {
		out[strconv.Itoa(epoch)] = evaluationEntry{
			BBox: mat.Row(nil, i, e.BBox),
			Segm: mat.Row(nil, i, e.Segm),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteEvaluationLog writes the log to a JSON file
func WriteEvaluationLog(filename string, e *EvaluationLog) error {
	return iox.WriteFile(filename, e.Write)
}
