package onnx

// Package onnx runs exported instance segmentation networks with onnxruntime.

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bmharper/cimg/v2"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
	ort "github.com/yalue/onnxruntime_go"
)

var ErrOutputShape = errors.New("Unexpected output tensor shape")
var ErrOutputType = errors.New("Unexpected output tensor type")

// Device is the execution provider that a session runs on
type Device int

const (
	DeviceCPU Device = iota
	DeviceCUDA
)

func (d Device) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	}
	return fmt.Sprintf("Device(%d)", int(d))
}

var envLock sync.Mutex
var envRefs int

// Initialize the onnxruntime environment, loading the shared library from libraryPath.
// If libraryPath is empty, onnxruntime_go's platform default is used.
// Every successful call must be matched by a call to Shutdown.
func Initialize(libraryPath string) error {
	envLock.Lock()
	defer envLock.Unlock()
	if envRefs == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("Failed to initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

// Shutdown releases the onnxruntime environment once the last user is done with it
func Shutdown() {
	envLock.Lock()
	defer envLock.Unlock()
	if envRefs == 0 {
		return
	}
	envRefs--
	if envRefs == 0 {
		ort.DestroyEnvironment()
	}
}

// Segmenter runs a Mask R-CNN style network that was exported to ONNX.
// It expects four outputs: boxes (N,4), labels (N), scores (N), masks (N,1,H,W).
type Segmenter struct {
	session    *ort.DynamicAdvancedSession
	checkpoint nn.Checkpoint
	device     Device
}

// NewSegmenter creates a session for the checkpoint's weights.
// Initialize must have been called first.
func NewSegmenter(cp *nn.Checkpoint, device Device) (*Segmenter, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	if device == DeviceCUDA {
		cudaOptions, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, fmt.Errorf("CUDA is not available: %w", err)
		}
		defer cudaOptions.Destroy()
		if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
			return nil, fmt.Errorf("Failed to attach CUDA execution provider: %w", err)
		}
	}

	inputs := []string{cp.InputName}
	outputs := []string{cp.Outputs.Boxes, cp.Outputs.Labels, cp.Outputs.Scores, cp.Outputs.Masks}
	session, err := ort.NewDynamicAdvancedSession(cp.WeightsPath(), inputs, outputs, options)
	if err != nil {
		return nil, fmt.Errorf("Failed to create onnxruntime session for '%v': %w", cp.WeightsPath(), err)
	}
	return &Segmenter{
		session:    session,
		checkpoint: *cp,
		device:     device,
	}, nil
}

func (s *Segmenter) Close() {
	s.session.Destroy()
}

func (s *Segmenter) Device() Device {
	return s.device
}

func (s *Segmenter) Checkpoint() *nn.Checkpoint {
	return &s.checkpoint
}

func (s *Segmenter) Segment(img *cimg.Image, params *nn.SegmentationParams) (*nn.Prediction, error) {
	t := nn.ImageTensor(img)
	if s.checkpoint.InputBatch {
		t = nn.BatchTensor(t)
	}
	dims := make([]int64, 0, 4)
	for _, d := range t.Shape() {
		dims = append(dims, int64(d))
	}
	input, err := ort.NewTensor(ort.NewShape(dims...), t.Data().([]float32))
	if err != nil {
		return nil, err
	}
	defer input.Destroy()

	// Output sizes depend on how many instances were found, so onnxruntime allocates them
	outputs := make([]ort.Value, 4)
	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("Forward pass failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	raw, err := rawFromValues(outputs)
	if err != nil {
		return nil, err
	}
	instances, err := DecodeOutputs(raw, img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	return &nn.Prediction{
		ImageWidth:  img.Width,
		ImageHeight: img.Height,
		Instances:   nn.FilterInstances(instances, params),
	}, nil
}

func rawFromValues(outputs []ort.Value) (*RawOutputs, error) {
	boxes, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: boxes must be float32", ErrOutputType)
	}
	scores, ok := outputs[2].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: scores must be float32", ErrOutputType)
	}
	masks, ok := outputs[3].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: masks must be float32", ErrOutputType)
	}
	raw := &RawOutputs{
		Boxes:     boxes.GetData(),
		Scores:    scores.GetData(),
		Masks:     masks.GetData(),
		MaskShape: masks.GetShape(),
	}
	// Exporters disagree on the label type
	switch labels := outputs[1].(type) {
	case *ort.Tensor[int64]:
		raw.Labels = labels.GetData()
	case *ort.Tensor[int32]:
		for _, l := range labels.GetData() {
			raw.Labels = append(raw.Labels, int64(l))
		}
	default:
		return nil, fmt.Errorf("%w: labels must be int64 or int32", ErrOutputType)
	}
	return raw, nil
}
