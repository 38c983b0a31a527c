package metrics

import (
	"github.com/cyclopcam/logs"
	"github.com/montanaflynn/stats"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/gen"
)

// Summary is a short digest of a training run
type Summary struct {
	Epochs int // Number of epochs in the training log

	FinalLR      float64
	FinalLoss    float64
	MinLoss      float64
	MinLossEpoch int
	MedianLoss   float64
	LossStdDev   float64

	EvaluatedEpochs int // Number of epochs in the evaluation log
	BestBBoxAP      float64
	BestBBoxEpoch   int
	BestSegmAP      float64
	BestSegmEpoch   int
}

// Summarize a training run. Either log may be nil.
// Best AP is judged by AP at IoU=.50:.05:.95, and ties go to the earliest epoch.
func Summarize(train *TrainingLog, eval *EvaluationLog) (*Summary, error) {
	s := &Summary{}
	if train != nil && train.Len() != 0 {
		var err error
		s.Epochs = train.Len()
		s.FinalLR = train.LR[train.Len()-1]
		s.FinalLoss = train.Loss[train.Len()-1]
		if s.MinLoss, err = stats.Min(train.Loss); err != nil {
			return nil, err
		}
		s.MinLossEpoch = train.Epochs[gen.ArgMin(train.Loss)]
		if s.MedianLoss, err = stats.Median(train.Loss); err != nil {
			return nil, err
		}
		if s.LossStdDev, err = stats.StandardDeviation(train.Loss); err != nil {
			return nil, err
		}
	}
	if eval != nil && eval.Len() != 0 {
		s.EvaluatedEpochs = eval.Len()
		for _, family := range Families {
			ap, err := eval.Series(family, APIoU50To95)
			if err != nil {
				return nil, err
			}
			best, err := stats.Max(ap)
			if err != nil {
				return nil, err
			}
			epoch := eval.Epochs[gen.ArgMax(ap)]
			if family == BBox {
				s.BestBBoxAP, s.BestBBoxEpoch = best, epoch
			} else {
				s.BestSegmAP, s.BestSegmEpoch = best, epoch
			}
		}
	}
	return s, nil
}

// Log writes the summary, one fact per line
func (s *Summary) Log(log logs.Log) {
	if s.Epochs != 0 {
		log.Infof("Training: %v epochs, final loss %.4f, final lr %.3g", s.Epochs, s.FinalLoss, s.FinalLR)
		log.Infof("Training: min loss %.4f at epoch %v, median %.4f, stddev %.4f", s.MinLoss, s.MinLossEpoch, s.MedianLoss, s.LossStdDev)
	}
	if s.EvaluatedEpochs != 0 {
		log.Infof("Evaluation: %v epochs", s.EvaluatedEpochs)
		log.Infof("Evaluation: best bbox AP %.4f at epoch %v", s.BestBBoxAP, s.BestBBoxEpoch)
		log.Infof("Evaluation: best segm AP %.4f at epoch %v", s.BestSegmAP, s.BestSegmEpoch)
	}
}
