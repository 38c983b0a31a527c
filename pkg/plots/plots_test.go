package plots

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/metrics"
)

const trainingJSON = `{
	"1": {"lr": 0.005, "loss": 0.9, "loss_classifier": 0.21, "loss_box_reg": 0.22, "loss_mask": 0.23, "loss_objectness": 0.04, "loss_rpn_box_reg": 0.05},
	"2": {"lr": 0.0005, "loss": 0.6, "loss_classifier": 0.11, "loss_box_reg": 0.12, "loss_mask": 0.13, "loss_objectness": 0.03, "loss_rpn_box_reg": 0.04},
	"3": {"lr": 0.00005, "loss": 0.5, "loss_classifier": 0.1, "loss_box_reg": 0.1, "loss_mask": 0.1, "loss_objectness": 0.02, "loss_rpn_box_reg": 0.03}
}`

const evaluationJSON = `{
	"1": {"bbox": [0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8,0.9,0.1,0.2,0.3], "segm": [0.2,0.3,0.4,0.5,0.6,0.7,0.8,0.9,0.1,0.2,0.3,0.4]},
	"2": {"bbox": [0.2,0.3,0.4,0.5,0.6,0.7,0.8,0.9,0.1,0.2,0.3,0.4], "segm": [0.3,0.4,0.5,0.6,0.7,0.8,0.9,0.1,0.2,0.3,0.4,0.5]}
}`

func loadLogs(t *testing.T) (*metrics.TrainingLog, *metrics.EvaluationLog) {
	train, err := metrics.ParseTrainingLog(strings.NewReader(trainingJSON))
	require.NoError(t, err)
	eval, err := metrics.ParseEvaluationLog(strings.NewReader(evaluationJSON))
	require.NoError(t, err)
	return train, eval
}

func requirePNG(t *testing.T, f *Figure) {
	var buf bytes.Buffer
	require.NoError(t, f.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Greater(t, img.Bounds().Dx(), 100)
	require.Greater(t, img.Bounds().Dy(), 100)
}

func TestTrainingCharts(t *testing.T) {
	train, _ := loadLogs(t)

	f, err := LossesSeparated(train)
	require.NoError(t, err)
	require.Equal(t, 3, f.Rows())
	require.Equal(t, 2, f.Cols())
	require.Equal(t, "loss", f.Plots[0][0].Title.Text)
	require.Equal(t, "loss_rpn_box_reg", f.Plots[2][1].Title.Text)
	requirePNG(t, f)

	f, err = LossesTogether(train)
	require.NoError(t, err)
	requirePNG(t, f)

	f, err = LossesAndLearningRate(train)
	require.NoError(t, err)
	require.Equal(t, 2, f.Rows())
	requirePNG(t, f)

	f, err = LearningRate(train)
	require.NoError(t, err)
	requirePNG(t, f)
}

func TestFlatLearningRate(t *testing.T) {
	train, _ := loadLogs(t)
	train.LR = []float64{0.001, 0.001, 0.001}
	f, err := LearningRate(train)
	require.NoError(t, err)
	requirePNG(t, f)

	// Zero cannot go on a log axis, so the axis stays linear
	train.LR = []float64{0.001, 0, 0}
	f, err = LearningRate(train)
	require.NoError(t, err)
	requirePNG(t, f)
}

func TestEvaluationCharts(t *testing.T) {
	_, eval := loadLogs(t)
	for _, family := range metrics.Families {
		f, err := EvaluationGrid(eval, family)
		require.NoError(t, err)
		require.Equal(t, family.Title(), f.Title)
		require.Equal(t, "AP at IoU=.50:.05:.95", f.Plots[0][0].Title.Text)
		require.Equal(t, "AR given 100 detections per image", f.Plots[2][1].Title.Text)
		requirePNG(t, f)

		f, err = EvaluationComparative(eval, family)
		require.NoError(t, err)
		require.Equal(t, 2, f.Rows())
		requirePNG(t, f)
	}
}

func TestEmptyLogs(t *testing.T) {
	_, err := LossesSeparated(&metrics.TrainingLog{})
	require.ErrorIs(t, err, ErrNoData)
	_, err = EvaluationGrid(&metrics.EvaluationLog{}, metrics.BBox)
	require.ErrorIs(t, err, ErrNoData)
}

func TestSaveAll(t *testing.T) {
	train, eval := loadLogs(t)
	figs, err := AllTraining(train)
	require.NoError(t, err)
	require.Len(t, figs, 4)
	evalFigs, err := AllEvaluation(eval)
	require.NoError(t, err)
	require.Len(t, evalFigs, 4)

	dir := t.TempDir()
	filename := filepath.Join(dir, figs[0].Name+".png")
	require.NoError(t, figs[0].Figure.Save(filename))
	st, err := os.Stat(filename)
	require.NoError(t, err)
	require.Greater(t, st.Size(), int64(0))

	none, err := AllTraining(nil)
	require.NoError(t, err)
	require.Empty(t, none)
}
