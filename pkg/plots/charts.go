package plots

import (
	"errors"
	"image/color"

	"github.com/toschilt/semantic-feature-detector-ts/pkg/metrics"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("Log has no epochs")

// Figure sizes. The grids match a maximized window on a typical monitor.
var (
	GridWidth    = 16 * vg.Inch
	GridHeight   = 10 * vg.Inch
	SingleWidth  = 8 * vg.Inch
	SingleHeight = 6 * vg.Inch
)

var lrColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

func xys(epochs []int, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(epochs))
	for i := range epochs {
		pts[i].X = float64(epochs[i])
		pts[i].Y = values[i]
	}
	return pts
}

// addLine adds one series to p, with a legend entry if name is not empty
func addLine(p *plot.Plot, epochs []int, values []float64, clr color.Color, name string) error {
	line, err := plotter.NewLine(xys(epochs, values))
	if err != nil {
		return err
	}
	line.Color = clr
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

// setLogY switches the y axis to a log scale, unless some value cannot be shown on one.
// Must be called after the data has been added.
func setLogY(p *plot.Plot, values []float64) {
	for _, v := range values {
		if v <= 0 {
			return
		}
	}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	if p.Y.Min == p.Y.Max {
		// A flat line would otherwise be padded to a range that crosses zero
		p.Y.Min /= 2
		p.Y.Max *= 2
	}
}

func checkTraining(t *metrics.TrainingLog) error {
	if t.Len() == 0 {
		return ErrNoData
	}
	return nil
}

func checkEvaluation(e *metrics.EvaluationLog) error {
	if e.Len() == 0 {
		return ErrNoData
	}
	return nil
}

// LossesSeparated draws each loss term in its own panel, in a 3x2 grid
func LossesSeparated(t *metrics.TrainingLog) (*Figure, error) {
	if err := checkTraining(t); err != nil {
		return nil, err
	}
	f := newFigure("Training losses", GridWidth, GridHeight, 3, 2)
	for i, s := range t.LossSeries() {
		p := f.Plots[i/2][i%2]
		p.Title.Text = s.Name
		if err := addLine(p, t.Epochs, s.Values, plotutil.Color(0), ""); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func lossesPlot(p *plot.Plot, t *metrics.TrainingLog) error {
	for i, s := range t.LossSeries() {
		if err := addLine(p, t.Epochs, s.Values, plotutil.Color(i), s.Name); err != nil {
			return err
		}
	}
	p.Legend.Top = true
	p.X.Label.Text = "epoch"
	return nil
}

// LossesTogether overlays all loss terms on a single axes
func LossesTogether(t *metrics.TrainingLog) (*Figure, error) {
	if err := checkTraining(t); err != nil {
		return nil, err
	}
	f := newFigure("Training losses", SingleWidth, SingleHeight, 1, 1)
	if err := lossesPlot(f.Plots[0][0], t); err != nil {
		return nil, err
	}
	return f, nil
}

func learningRatePlot(p *plot.Plot, t *metrics.TrainingLog, legend bool) error {
	name := ""
	if legend {
		name = metrics.KeyLR
		p.Legend.Top = true
	}
	if err := addLine(p, t.Epochs, t.LR, lrColor, name); err != nil {
		return err
	}
	setLogY(p, t.LR)
	p.X.Label.Text = "epoch"
	return nil
}

// LossesAndLearningRate shows the losses above the log-scale learning rate.
// The two panels share the epoch axis, so that they line up.
func LossesAndLearningRate(t *metrics.TrainingLog) (*Figure, error) {
	if err := checkTraining(t); err != nil {
		return nil, err
	}
	f := newFigure("Training losses and learning rate", SingleWidth, SingleHeight*1.5, 2, 1)
	losses := f.Plots[0][0]
	lr := f.Plots[1][0]
	if err := lossesPlot(losses, t); err != nil {
		return nil, err
	}
	if err := learningRatePlot(lr, t, true); err != nil {
		return nil, err
	}
	losses.X.Label.Text = ""
	// Same epoch range on both panels
	lr.X.Min = losses.X.Min
	lr.X.Max = losses.X.Max
	return f, nil
}

// LearningRate draws the learning rate on a log scale
func LearningRate(t *metrics.TrainingLog) (*Figure, error) {
	if err := checkTraining(t); err != nil {
		return nil, err
	}
	f := newFigure("Learning rate", SingleWidth, SingleHeight, 1, 1)
	if err := learningRatePlot(f.Plots[0][0], t, false); err != nil {
		return nil, err
	}
	return f, nil
}

// Layout of EvaluationGrid: AP in the left column, AR in the right column
var evaluationGridLayout = [3][2]int{
	{metrics.APIoU50To95, metrics.AR1},
	{metrics.APIoU50, metrics.AR10},
	{metrics.APIoU75, metrics.AR100},
}

// APIndices and ARIndices are the statistics shown in the AP and AR panels
var (
	APIndices = []int{metrics.APIoU50To95, metrics.APIoU50, metrics.APIoU75}
	ARIndices = []int{metrics.AR1, metrics.AR10, metrics.AR100}
)

// EvaluationGrid draws AP and AR statistics of one family in a 3x2 grid
func EvaluationGrid(e *metrics.EvaluationLog, family metrics.Family) (*Figure, error) {
	if err := checkEvaluation(e); err != nil {
		return nil, err
	}
	f := newFigure(family.Title(), GridWidth, GridHeight, 3, 2)
	for r, row := range evaluationGridLayout {
		for c, index := range row {
			values, err := e.Series(family, index)
			if err != nil {
				return nil, err
			}
			p := f.Plots[r][c]
			p.Title.Text = metrics.StatTitles[index]
			if err := addLine(p, e.Epochs, values, plotutil.Color(0), ""); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// EvaluationComparative overlays the AP statistics in one panel, and the AR statistics in another
func EvaluationComparative(e *metrics.EvaluationLog, family metrics.Family) (*Figure, error) {
	if err := checkEvaluation(e); err != nil {
		return nil, err
	}
	f := newFigure(family.Title(), SingleWidth, SingleHeight*1.5, 2, 1)
	panels := []struct {
		title   string
		indices []int
	}{
		{"Average Precision (AP)", APIndices},
		{"Average Recall (AR)", ARIndices},
	}
	for r, panel := range panels {
		p := f.Plots[r][0]
		p.Title.Text = panel.title
		p.Legend.Top = true
		for i, index := range panel.indices {
			values, err := e.Series(family, index)
			if err != nil {
				return nil, err
			}
			if err := addLine(p, e.Epochs, values, plotutil.Color(i), metrics.StatTitles[index]); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// NamedFigure pairs a chart with the file name it is saved under
type NamedFigure struct {
	Name   string
	Figure *Figure
}

// AllTraining builds every training chart. Returns nothing for a nil log.
func AllTraining(t *metrics.TrainingLog) ([]NamedFigure, error) {
	if t == nil {
		return nil, nil
	}
	builders := []struct {
		name  string
		build func(*metrics.TrainingLog) (*Figure, error)
	}{
		{"losses_separated", LossesSeparated},
		{"losses_together", LossesTogether},
		{"losses_and_lr", LossesAndLearningRate},
		{"learning_rate", LearningRate},
	}
	out := []NamedFigure{}
	for _, b := range builders {
		f, err := b.build(t)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedFigure{b.name, f})
	}
	return out, nil
}

// AllEvaluation builds the grid and comparative charts for both families. Returns nothing for a nil log.
func AllEvaluation(e *metrics.EvaluationLog) ([]NamedFigure, error) {
	if e == nil {
		return nil, nil
	}
	out := []NamedFigure{}
	for _, family := range metrics.Families {
		grid, err := EvaluationGrid(e, family)
		if err != nil {
			return nil, err
		}
		comparative, err := EvaluationComparative(e, family)
		if err != nil {
			return nil, err
		}
		out = append(out,
			NamedFigure{"eval_" + string(family) + "_grid", grid},
			NamedFigure{"eval_" + string(family) + "_comparative", comparative})
	}
	return out, nil
}
