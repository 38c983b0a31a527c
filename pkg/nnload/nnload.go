package nnload

// Package nnload wraps up our 'nn' interface layer, and has concrete references to our
// neural network runtime (onnxruntime), so that you can just call one function to
// load a checkpoint, and not need to know about the implementation details.
//
// This is also the place where we decide whether to run on a GPU, and fall back to
// the CPU if the GPU cannot be used.

import (
	"fmt"

	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/onnx"
)

type Options struct {
	NumClasses    int    // Number of classes the heads must be sized for, including background. Zero means nn.DefaultNumClasses.
	CPUOnly       bool   // Don't try the GPU
	SharedLibrary string // Path to the onnxruntime shared library. Empty uses the platform default.
}

// Runtime hooks, replaced by tests
var (
	initRuntime     = onnx.Initialize
	shutdownRuntime = onnx.Shutdown
	newSegmenter    = func(cp *nn.Checkpoint, device onnx.Device) (nn.InstanceSegmenter, error) {
		return onnx.NewSegmenter(cp, device)
	}
)

// Segmenter is a loaded network, along with the device it runs on.
// Close releases the network and the runtime.
type Segmenter struct {
	nn.InstanceSegmenter
	Device onnx.Device
}

func (s *Segmenter) Close() {
	s.InstanceSegmenter.Close()
	shutdownRuntime()
}

// LoadSegmenter loads a checkpoint and its exported weights.
// The checkpoint's heads must have been sized for options.NumClasses.
// The optimizer state in the checkpoint is reported, but has no effect on inference.
func LoadSegmenter(log logs.Log, checkpointFile string, options Options) (*Segmenter, error) {
	numClasses := options.NumClasses
	if numClasses == 0 {
		numClasses = nn.DefaultNumClasses
	}

	cp, err := nn.LoadCheckpoint(checkpointFile)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded checkpoint %v (%v, epoch %v, %v classes)", checkpointFile, cp.Architecture, cp.Epoch, cp.NumClasses)
	if err := nn.VerifyClassCount(cp, numClasses); err != nil {
		return nil, err
	}
	if cp.Optimizer != nil {
		log.Infof("Checkpoint carries %v optimizer state (lr %v, momentum %v), which is not used for inference",
			cp.Optimizer.Name, cp.Optimizer.LR, cp.Optimizer.Momentum)
	}

	if err := initRuntime(options.SharedLibrary); err != nil {
		return nil, err
	}

	if !options.CPUOnly {
		model, err := newSegmenter(cp, onnx.DeviceCUDA)
		if err == nil {
			log.Infof("Using device: %v", onnx.DeviceCUDA)
			return &Segmenter{model, onnx.DeviceCUDA}, nil
		}
		log.Warnf("Failed to load '%v' on %v: %v", cp.WeightsPath(), onnx.DeviceCUDA, err)
		log.Infof("Falling back to %v", onnx.DeviceCPU)
	}

	model, err := newSegmenter(cp, onnx.DeviceCPU)
	if err != nil {
		shutdownRuntime()
		return nil, fmt.Errorf("Failed to load '%v': %w", cp.WeightsPath(), err)
	}
	log.Infof("Using device: %v", onnx.DeviceCPU)
	return &Segmenter{model, onnx.DeviceCPU}, nil
}
