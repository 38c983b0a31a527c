package metrics

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

const trainingJSON = `{
	"10": {"lr": 0.0005, "loss": 0.5, "loss_classifier": 0.11, "loss_box_reg": 0.12, "loss_mask": 0.13, "loss_objectness": 0.14, "loss_rpn_box_reg": 0.15},
	"2":  {"lr": 0.005,  "loss": 0.9, "loss_classifier": 0.21, "loss_box_reg": 0.22, "loss_mask": 0.23, "loss_objectness": 0.24, "loss_rpn_box_reg": 0.25}
}`

func evalVector(base float64) string {
	parts := []string{}
	for i := 1; i <= NumStats; i++ {
		parts = append(parts, fmt.Sprintf("%g", base*float64(i)))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func evaluationJSON() string {
	// epoch 1 bbox is [0.1, 0.2, ... 1.2]
	return fmt.Sprintf(`{"3": {"bbox": %v, "segm": %v}, "1": {"bbox": %v, "segm": %v}}`,
		evalVector(0.3), evalVector(0.03), evalVector(0.1), evalVector(0.01))
}

func TestTrainingLog(t *testing.T) {
	log, err := ParseTrainingLog(strings.NewReader(trainingJSON))
	require.NoError(t, err)
	require.Equal(t, []int{2, 10}, log.Epochs)
	require.Equal(t, []float64{0.005, 0.0005}, log.LR)
	require.Equal(t, []float64{0.9, 0.5}, log.Loss)
	require.Equal(t, []float64{0.21, 0.11}, log.LossClassifier)
	require.Equal(t, []float64{0.22, 0.12}, log.LossBoxReg)
	require.Equal(t, []float64{0.23, 0.13}, log.LossMask)
	require.Equal(t, []float64{0.24, 0.14}, log.LossObjectness)
	require.Equal(t, []float64{0.25, 0.15}, log.LossRPNBoxReg)

	series := log.LossSeries()
	require.Len(t, series, 6)
	for i, s := range series {
		require.Equal(t, LossKeys[i], s.Name)
		require.Len(t, s.Values, 2)
	}

	var buf bytes.Buffer
	require.NoError(t, log.Write(&buf))
	back, err := ParseTrainingLog(&buf)
	require.NoError(t, err)
	require.Equal(t, log, back)
}

func TestTrainingLogErrors(t *testing.T) {
	_, err := ParseTrainingLog(strings.NewReader(`{"1": {"lr": 0.1, "loss": 1}}`))
	require.ErrorIs(t, err, ErrMissingKey)
	require.ErrorContains(t, err, "loss_classifier")
	require.ErrorContains(t, err, "epoch 1")

	_, err = ParseTrainingLog(strings.NewReader(`{"one": {}}`))
	require.ErrorIs(t, err, ErrEpochKey)

	_, err = ParseTrainingLog(strings.NewReader(`{"1": {}, "01": {}}`))
	require.ErrorIs(t, err, ErrDuplicateEpoch)

	_, err = ParseTrainingLog(strings.NewReader(`[1, 2]`))
	require.Error(t, err)

	_, err = LoadTrainingLog(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	log, err := ParseTrainingLog(strings.NewReader(`{}`))
	require.NoError(t, err)
	require.Equal(t, 0, log.Len())
}

func TestEvaluationLog(t *testing.T) {
	log, err := ParseEvaluationLog(strings.NewReader(evaluationJSON()))
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, log.Epochs)

	ap, err := log.Series(BBox, APIoU50To95)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.1, 0.3}, ap, 1e-12)

	ar, err := log.Series(Segm, AR100)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.09, 0.27}, ar, 1e-12)

	_, err = log.Series("keypoints", 0)
	require.ErrorIs(t, err, ErrUnknownFamily)
	_, err = log.Series(BBox, NumStats)
	require.Error(t, err)

	// Statistics that are never plotted still survive a round trip
	filename := filepath.Join(t.TempDir(), "test_log.json")
	require.NoError(t, WriteEvaluationLog(filename, log))
	back, err := LoadEvaluationLog(filename)
	require.NoError(t, err)
	require.Equal(t, log.Epochs, back.Epochs)
	require.Equal(t, log.BBox.RawMatrix().Data, back.BBox.RawMatrix().Data)
	require.Equal(t, log.Segm.RawMatrix().Data, back.Segm.RawMatrix().Data)
}

func TestEvaluationLogErrors(t *testing.T) {
	_, err := ParseEvaluationLog(strings.NewReader(fmt.Sprintf(`{"1": {"bbox": %v}}`, evalVector(0.1))))
	require.ErrorIs(t, err, ErrMissingKey)
	require.ErrorContains(t, err, "segm")

	_, err = ParseEvaluationLog(strings.NewReader(`{"1": {"bbox": [0.1], "segm": [0.1]}}`))
	require.ErrorIs(t, err, ErrStatsLength)

	_, err = ParseEvaluationLog(strings.NewReader(`{"x": {}}`))
	require.ErrorIs(t, err, ErrEpochKey)

	log, err := ParseEvaluationLog(strings.NewReader(`{}`))
	require.NoError(t, err)
	ap, err := log.Series(Segm, APIoU50)
	require.NoError(t, err)
	require.Empty(t, ap)
}

func TestSummary(t *testing.T) {
	train, err := ParseTrainingLog(strings.NewReader(trainingJSON))
	require.NoError(t, err)
	eval, err := ParseEvaluationLog(strings.NewReader(evaluationJSON()))
	require.NoError(t, err)

	s, err := Summarize(train, eval)
	require.NoError(t, err)
	require.Equal(t, 2, s.Epochs)
	require.Equal(t, 0.5, s.MinLoss)
	require.Equal(t, 10, s.MinLossEpoch)
	require.Equal(t, 0.5, s.FinalLoss)
	require.Equal(t, 0.0005, s.FinalLR)
	require.InDelta(t, 0.7, s.MedianLoss, 1e-12)
	require.InDelta(t, 0.2, s.LossStdDev, 1e-12)
	require.Equal(t, 2, s.EvaluatedEpochs)
	require.InDelta(t, 0.3, s.BestBBoxAP, 1e-12)
	require.Equal(t, 3, s.BestBBoxEpoch)
	require.InDelta(t, 0.03, s.BestSegmAP, 1e-12)
	require.Equal(t, 3, s.BestSegmEpoch)
	s.Log(logs.NewTestingLog(t))

	empty, err := Summarize(nil, nil)
	require.NoError(t, err)
	require.Equal(t, &Summary{}, empty)
}
