// Package metrics reads the per-epoch training and evaluation logs written by
// the training loop, and turns them into parallel series for plotting.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

var ErrMissingKey = errors.New("Missing key")
var ErrEpochKey = errors.New("Epoch key is not an integer")
var ErrDuplicateEpoch = errors.New("Duplicate epoch")

// JSON field names of the training log, in the order the losses are plotted
const (
	KeyLR             = "lr"
	KeyLoss           = "loss"
	KeyLossClassifier = "loss_classifier"
	KeyLossBoxReg     = "loss_box_reg"
	KeyLossMask       = "loss_mask"
	KeyLossObjectness = "loss_objectness"
	KeyLossRPNBoxReg  = "loss_rpn_box_reg"
)

// LossKeys are the six loss terms, in plotting order
var LossKeys = []string{KeyLoss, KeyLossClassifier, KeyLossBoxReg, KeyLossMask, KeyLossObjectness, KeyLossRPNBoxReg}

// TrainingLog holds one entry per epoch, sorted by epoch.
// The slices are parallel: element i of every slice belongs to Epochs[i].
type TrainingLog struct {
	Epochs         []int
	LR             []float64
	Loss           []float64
	LossClassifier []float64
	LossBoxReg     []float64
	LossMask       []float64
	LossObjectness []float64
	LossRPNBoxReg  []float64
}

// NamedSeries is a metric series, labelled with its JSON key
type NamedSeries struct {
	Name   string
	Values []float64
}

// LoadTrainingLog reads a training log JSON file
func LoadTrainingLog(filename string) (*TrainingLog, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log, err := ParseTrainingLog(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to read training log %v: %w", filename, err)
	}
	return log, nil
}

// ParseTrainingLog decodes {"<epoch>": {"lr": ..., "loss": ..., ...}}.
// The epochs are sorted ascending, regardless of the order of the JSON keys.
func ParseTrainingLog(r io.Reader) (*TrainingLog, error) {
	raw := map[string]map[string]float64{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	epochs, keys, err := sortedEpochs(raw)
	if err != nil {
		return nil, err
	}
	log := &TrainingLog{
		Epochs: epochs,
	}
	for _, key := range keys {
		entry := raw[key]
		value := func(name string) float64 {
			v, ok := entry[name]
			if !ok && err == nil {
				err = fmt.Errorf("%w '%v' in epoch %v", ErrMissingKey, name, key)
			}
			return v
		}
		log.LR = append(log.LR, value(KeyLR))
		log.Loss = append(log.Loss, value(KeyLoss))
		log.LossClassifier = append(log.LossClassifier, value(KeyLossClassifier))
		log.LossBoxReg = append(log.LossBoxReg, value(KeyLossBoxReg))
		log.LossMask = append(log.LossMask, value(KeyLossMask))
		log.LossObjectness = append(log.LossObjectness, value(KeyLossObjectness))
		log.LossRPNBoxReg = append(log.LossRPNBoxReg, value(KeyLossRPNBoxReg))
		if err != nil {
			return nil, err
		}
	}
	return log, nil
}

// Len is the number of epochs
func (t *TrainingLog) Len() int {
	return len(t.Epochs)
}

// LossSeries returns the six loss terms in plotting order
func (t *TrainingLog) LossSeries() []NamedSeries {
	return []NamedSeries{
		{KeyLoss, t.Loss},
		{KeyLossClassifier, t.LossClassifier},
		{KeyLossBoxReg, t.LossBoxReg},
		{KeyLossMask, t.LossMask},
		{KeyLossObjectness, t.LossObjectness},
		{KeyLossRPNBoxReg, t.LossRPNBoxReg},
	}
}

// Write the log in the same JSON layout that ParseTrainingLog reads
func (t *TrainingLog) Write(w io.Writer) error {
	out := map[string]map[string]float64{}
	for i, epoch := range t.Epochs {
		entry := map[string]float64{KeyLR: t.LR[i]}
		for _, s := range t.LossSeries() {
			entry[s.Name] = s.Values[i]
		}
		out[strconv.Itoa(epoch)] = entry
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// sortedEpochs parses the epoch keys of a log, and returns them in ascending
// order, along with the original keys in the same order.
func sortedEpochs[V any](raw map[string]V) ([]int, []string, error) {
	type pair struct {
		epoch int
		key   string
	}
	pairs := make([]pair, 0, len(raw))
	for key := range raw {
		epoch, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: '%v'", ErrEpochKey, key)
		}
		pairs = append(pairs, pair{epoch, key})
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		return a.epoch - b.epoch
	})
	epochs := make([]int, len(pairs))
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		if i > 0 && p.epoch == pairs[i-1].epoch {
			return nil, nil, fmt.Errorf("%w %v ('%v' and '%v')", ErrDuplicateEpoch, p.epoch, pairs[i-1].key, p.key)
		}
		epochs[i] = p.epoch
		keys[i] = p.key
	}
	return epochs, keys, nil
}
