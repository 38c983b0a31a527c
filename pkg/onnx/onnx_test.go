package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bmharper/cimg/v2"
	"github.com/stretchr/testify/require"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

func projectRootDir() string {
	cd, _ := os.Getwd()
	return filepath.Dir(filepath.Dir(cd))
}

func TestDecodeOutputs(t *testing.T) {
	raw := &RawOutputs{
		Boxes:     []float32{1, 2, 3, 4, 0, 0, 1, 1},
		Labels:    []int64{1, 1},
		Scores:    []float32{0.9, 0.4},
		Masks:     []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 1, 0, 0, 0, 0, 0},
		MaskShape: []int64{2, 1, 2, 3},
	}
	instances, err := DecodeOutputs(raw, 3, 2)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	require.Equal(t, nn.Box{XMin: 1, YMin: 2, XMax: 3, YMax: 4}, instances[0].Box)
	require.Equal(t, float32(0.9), instances[0].Confidence)
	require.Equal(t, 1, instances[0].Class)
	require.Equal(t, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, instances[0].Mask.Prob)
	require.Equal(t, float32(1), instances[1].Mask.At(0, 0))

	// Masks must not alias the output tensor, which is freed after decoding
	raw.Masks[0] = 99
	require.Equal(t, float32(0.1), instances[0].Mask.Prob[0])

	sum, err := nn.SumTopMasks(instances, 3, 2, 1)
	require.NoError(t, err)
	require.Equal(t, instances[0].Mask.Prob, sum.Prob)
}

func TestDecodeOutputsEmpty(t *testing.T) {
	instances, err := DecodeOutputs(&RawOutputs{MaskShape: []int64{0, 1, 4, 5}}, 5, 4)
	require.NoError(t, err)
	require.Empty(t, instances)
}

func TestDecodeOutputsShape(t *testing.T) {
	good := func() *RawOutputs {
		return &RawOutputs{
			Boxes:     []float32{0, 0, 1, 1},
			Labels:    []int64{1},
			Scores:    []float32{0.5},
			Masks:     []float32{0, 0, 0, 0},
			MaskShape: []int64{1, 1, 2, 2},
		}
	}
	_, err := DecodeOutputs(good(), 2, 2)
	require.NoError(t, err)

	bad := good()
	bad.Boxes = bad.Boxes[:3]
	_, err = DecodeOutputs(bad, 2, 2)
	require.ErrorIs(t, err, ErrOutputShape)

	bad = good()
	bad.Labels = nil
	_, err = DecodeOutputs(bad, 2, 2)
	require.ErrorIs(t, err, ErrOutputShape)

	_, err = DecodeOutputs(good(), 3, 2)
	require.ErrorIs(t, err, ErrOutputShape)

	bad = good()
	bad.Masks = bad.Masks[:2]
	_, err = DecodeOutputs(bad, 2, 2)
	require.ErrorIs(t, err, ErrOutputShape)
}

func TestDeviceString(t *testing.T) {
	require.Equal(t, "cpu", DeviceCPU.String())
	require.Equal(t, "cuda", DeviceCUDA.String())
}

// Runs a real exported model, if one has been placed in the models directory
func TestSegmenter(t *testing.T) {
	cpFile := filepath.Join(projectRootDir(), "models", "crop_rows.json")
	if _, err := os.Stat(cpFile); err != nil {
		t.Skipf("No exported model at %v", cpFile)
	}
	cp, err := nn.LoadCheckpoint(cpFile)
	require.NoError(t, err)
	if err := Initialize(""); err != nil {
		t.Skipf("onnxruntime not available: %v", err)
	}
	defer Shutdown()

	s, err := NewSegmenter(cp, DeviceCPU)
	require.NoError(t, err)
	defer s.Close()

	img := cimg.NewImage(64, 48, cimg.PixelFormatRGB)
	pred, err := s.Segment(img, nn.NewSegmentationParams())
	require.NoError(t, err)
	require.Equal(t, 64, pred.ImageWidth)
	for _, inst := range pred.Instances {
		require.Equal(t, 64, inst.Mask.Width)
		require.Equal(t, 48, inst.Mask.Height)
	}
}
