package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/coco"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/dataset"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("exportcoco", "Convert a crop row dataset into a COCO ground truth file")
	root := parser.String("r", "root", &argparse.Options{Help: "Dataset root folder", Required: true})
	images := parser.String("", "images", &argparse.Options{Help: "Photograph subfolder", Default: "PNGImages"})
	masks := parser.String("", "masks", &argparse.Options{Help: "Mask subfolder", Default: "PedMasks"})
	output := parser.String("o", "output", &argparse.Options{Help: "Output JSON file", Required: true})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "Number of images to decode in parallel (0 = one per CPU)", Default: 0})
	strict := parser.Flag("", "strict", &argparse.Options{Help: "Require photograph and mask filenames to match pairwise"})
	testCount := parser.Int("", "test", &argparse.Options{Help: "Only export the last N images of a seeded random split (the held out test set)", Default: 0})
	seed := parser.Int("", "seed", &argparse.Options{Help: "Seed of the random split", Default: 0})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	ds, err := dataset.NewWithOptions(*root, *images, *masks, nil, dataset.Options{StrictPairing: *strict, Log: logger})
	check(err)
	logger.Infof("Found %v image/mask pairs in %v", ds.Len(), *root)

	var src dataset.Source = ds
	if *testCount > 0 {
		_, test := dataset.RandomSplit(ds.Len(), *testCount, int64(*seed))
		src, err = dataset.NewSubset(ds, test)
		check(err)
		logger.Infof("Exporting the %v held out images of split seed %v", src.Len(), *seed)
	}

	doc, stats, err := coco.Build(src, coco.Options{
		Workers:       *workers,
		CategoryNames: map[int64]string{dataset.ForegroundLabel: "crop_row"},
		Log:           logger,
	})
	check(err)
	logger.Infof("Instances per image: mean %.2f, variance %.2f, most common %v", stats.MeanInstances, stats.VarianceInstances, stats.ModeInstances)
	check(doc.Save(*output))
	logger.Infof("Wrote %v", *output)
}
