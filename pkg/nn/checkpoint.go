package nn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Checkpoint is saved in a JSON file alongside the exported weights of a fine-tuned network.
// The training loop writes one of these every time it snapshots the model.
type Checkpoint struct {
	Architecture string          `json:"architecture"` // eg "maskrcnn_resnet50_fpn"
	NumClasses   int             `json:"numClasses"`   // Number of classes that the heads were sized for, including background
	Classes      []string        `json:"classes"`      // eg ["background", "crop_row"]
	Epoch        int             `json:"epoch"`        // Epoch at which the snapshot was taken
	Weights      string          `json:"weights"`      // ONNX export of the model, relative to the checkpoint file
	InputName    string          `json:"inputName"`    // eg "image"
	InputBatch   bool            `json:"inputBatch"`   // Input has a leading batch dimension (1, 3, H, W) instead of (3, H, W)
	Outputs      OutputNames     `json:"outputs"`      // Names of the output tensors
	Optimizer    *OptimizerState `json:"optimizer,omitempty"`

	dir string // Directory that the checkpoint was loaded from
}

// Names of the output tensors of an exported Mask R-CNN
type OutputNames struct {
	Boxes  string `json:"boxes"`
	Labels string `json:"labels"`
	Scores string `json:"scores"`
	Masks  string `json:"masks"`
}

// OptimizerState is the optimizer snapshot that the training loop saved next to the weights.
// Inference loads it for completeness, but never uses it.
type OptimizerState struct {
	Name        string          `json:"name"` // eg "SGD"
	LR          float64         `json:"lr"`
	Momentum    float64         `json:"momentum"`
	WeightDecay float64         `json:"weightDecay"`
	State       json.RawMessage `json:"state,omitempty"`
}

func DefaultOutputNames() OutputNames {
	return OutputNames{
		Boxes:  "boxes",
		Labels: "labels",
		Scores: "scores",
		Masks:  "masks",
	}
}

// Load a checkpoint from a JSON file
func LoadCheckpoint(filename string) (*Checkpoint, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cp := &Checkpoint{}
	if err := json.Unmarshal(b, cp); err != nil {
		return nil, fmt.Errorf("Error loading checkpoint %v: %w", filename, err)
	}
	if cp.Weights == "" {
		return nil, fmt.Errorf("Checkpoint %v does not name a weights file", filename)
	}
	if cp.NumClasses == 0 {
		cp.NumClasses = len(cp.Classes)
	}
	if cp.InputName == "" {
		cp.InputName = "image"
	}
	def := DefaultOutputNames()
	if cp.Outputs.Boxes == "" {
		cp.Outputs.Boxes = def.Boxes
	}
	if cp.Outputs.Labels == "" {
		cp.Outputs.Labels = def.Labels
	}
	if cp.Outputs.Scores == "" {
		cp.Outputs.Scores = def.Scores
	}
	if cp.Outputs.Masks == "" {
		cp.Outputs.Masks = def.Masks
	}
	cp.dir = filepath.Dir(filename)
	return cp, nil
}

// Full path to the weights file
func (c *Checkpoint) WeightsPath() string {
	if filepath.IsAbs(c.Weights) {
		return c.Weights
	}
	return filepath.Join(c.dir, c.Weights)
}
