package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/dataset"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/imageio"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/visualize"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("previewdataset", "Draw the annotation record of one dataset item over its photograph")
	root := parser.String("r", "root", &argparse.Options{Help: "Dataset root folder", Required: true})
	images := parser.String("", "images", &argparse.Options{Help: "Photograph subfolder", Default: "PNGImages"})
	masks := parser.String("", "masks", &argparse.Options{Help: "Mask subfolder", Default: "PedMasks"})
	index := parser.Int("i", "index", &argparse.Options{Help: "Item index", Default: 0})
	output := parser.String("o", "output", &argparse.Options{Help: "Output image (.png or .jpg)", Required: true})
	flip := parser.Flag("", "flip", &argparse.Options{Help: "Apply the horizontal flip transform before drawing"})
	alpha := parser.Float("", "alpha", &argparse.Options{Help: "Opacity of the instance masks", Default: 0.5})
	overlap := parser.Float("", "overlap", &argparse.Options{Help: "Report pairs of instances whose boxes overlap by at least this IoU", Default: 0.5})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	var transform dataset.Transform
	if *flip {
		transform = dataset.HorizontalFlip{}
	}
	ds, err := dataset.New(*root, *images, *masks, transform)
	check(err)
	if err := ds.CheckPairing(); err != nil {
		logger.Warnf("%v", err)
	}

	sample, err := ds.Get(*index)
	check(err)
	t := sample.Target
	logger.Infof("%v + %v: %v instances", ds.ImagePath(*index), ds.MaskPath(*index), t.NumInstances())

	annotations := make([]visualize.Annotation, t.NumInstances())
	for i := range annotations {
		annotations[i] = visualize.Annotation{
			Box:   t.Boxes[i],
			Mask:  t.Masks[i],
			Label: fmt.Sprintf("%v", t.InstanceIDs[i]),
		}
		logger.Infof("Instance %v: box (%v,%v)-(%v,%v), area %v, %v pixels", t.InstanceIDs[i],
			t.Boxes[i].XMin, t.Boxes[i].YMin, t.Boxes[i].XMax, t.Boxes[i].YMax, t.Area[i], t.Masks[i].Count())
	}
	for _, pair := range dataset.OverlappingInstances(t, float32(*overlap)) {
		logger.Warnf("Instances %v and %v overlap (IoU %.2f)", t.InstanceIDs[pair[0]], t.InstanceIDs[pair[1]],
			t.Boxes[pair[0]].IOU(t.Boxes[pair[1]]))
	}

	out, err := visualize.DrawInstances(sample.Image, annotations, *alpha)
	check(err)
	check(imageio.Save(*output, out))
	logger.Infof("Wrote %v", *output)
}
