package nn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCheckpoint(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "model_500.json")
	raw := `{
		"architecture": "maskrcnn_resnet50_fpn",
		"classes": ["background", "crop_row"],
		"epoch": 500,
		"weights": "model_500.onnx",
		"optimizer": {"name": "SGD", "lr": 0.005, "momentum": 0.9, "weightDecay": 0.0005, "state": {"step": 12}}
	}`
	require.NoError(t, os.WriteFile(fn, []byte(raw), 0644))

	cp, err := LoadCheckpoint(fn)
	require.NoError(t, err)
	require.Equal(t, 500, cp.Epoch)
	require.Equal(t, 2, cp.NumClasses)
	require.Equal(t, "image", cp.InputName)
	require.Equal(t, DefaultOutputNames(), cp.Outputs)
	require.Equal(t, filepath.Join(dir, "model_500.onnx"), cp.WeightsPath())
	require.NotNil(t, cp.Optimizer)
	require.Equal(t, "SGD", cp.Optimizer.Name)
	require.Equal(t, 0.9, cp.Optimizer.Momentum)
	require.JSONEq(t, `{"step": 12}`, string(cp.Optimizer.State))
	require.NoError(t, VerifyClassCount(cp, DefaultNumClasses))
}

func TestLoadCheckpointErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCheckpoint(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	noWeights := filepath.Join(dir, "noweights.json")
	require.NoError(t, os.WriteFile(noWeights, []byte(`{"numClasses": 2}`), 0644))
	_, err = LoadCheckpoint(noWeights)
	require.Error(t, err)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`{`), 0644))
	_, err = LoadCheckpoint(garbage)
	require.Error(t, err)
}
