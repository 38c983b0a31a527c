package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/metrics"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/plots"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("plotmetrics", "Render training and evaluation curves from the per-epoch JSON logs")
	trainLog := parser.String("t", "train", &argparse.Options{Help: "Training log (eg train_log.json)"})
	evalLog := parser.String("e", "eval", &argparse.Options{Help: "Evaluation log (eg test_log.json)"})
	outDir := parser.String("o", "outdir", &argparse.Options{Help: "Directory for the PNG charts", Default: "plots"})
	err := parser.Parse(os.Args)
	if err == nil && *trainLog == "" && *evalLog == "" {
		err = fmt.Errorf("At least one of --train or --eval is required")
	}
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	var training *metrics.TrainingLog
	var evaluation *metrics.EvaluationLog
	if *trainLog != "" {
		training, err = metrics.LoadTrainingLog(*trainLog)
		check(err)
		logger.Infof("Loaded %v epochs from %v", training.Len(), *trainLog)
	}
	if *evalLog != "" {
		evaluation, err = metrics.LoadEvaluationLog(*evalLog)
		check(err)
		logger.Infof("Loaded %v epochs from %v", evaluation.Len(), *evalLog)
	}

	trainingFigures, err := plots.AllTraining(training)
	check(err)
	evaluationFigures, err := plots.AllEvaluation(evaluation)
	check(err)

	check(os.MkdirAll(*outDir, 0755))
	for _, f := range append(trainingFigures, evaluationFigures...) {
		filename := filepath.Join(*outDir, f.Name+".png")
		check(f.Figure.Save(filename))
		logger.Infof("Wrote %v", filename)
	}

	summary, err := metrics.Summarize(training, evaluation)
	check(err)
	summary.Log(logger)
}
