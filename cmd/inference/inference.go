package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/imageio"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/iox"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nnload"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/visualize"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("inference", "Segment crop rows in a single photograph, and render the masks")
	checkpoint := parser.String("c", "checkpoint", &argparse.Options{Help: "Checkpoint JSON file, next to its exported ONNX weights", Required: true})
	input := parser.String("i", "input", &argparse.Options{Help: "Input photograph", Required: true})
	outDir := parser.String("o", "outdir", &argparse.Options{Help: "Directory for the rendered images", Default: "."})
	top := parser.Int("n", "top", &argparse.Options{Help: "Number of most confident masks to sum into the overlay", Default: nn.DefaultTopMasks})
	threshold := parser.Float("", "threshold", &argparse.Options{Help: "Probability above which an overlay pixel is part of the mask", Default: float64(nn.DefaultMaskThreshold)})
	numClasses := parser.Int("", "classes", &argparse.Options{Help: "Number of classes the model heads are sized for, including background", Default: nn.DefaultNumClasses})
	alpha := parser.Float("", "alpha", &argparse.Options{Help: "Opacity of the mask in the blended image", Default: visualize.DefaultAlpha})
	cpuOnly := parser.Flag("", "cpu", &argparse.Options{Help: "Don't try to run on the GPU"})
	ortLib := parser.String("", "ortlib", &argparse.Options{Help: "Path to the onnxruntime shared library"})
	saveJSON := parser.Flag("", "json", &argparse.Options{Help: "Also write the detected instances (boxes and scores) as JSON"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	model, err := nnload.LoadSegmenter(logger, *checkpoint, nnload.Options{
		NumClasses:    *numClasses,
		CPUOnly:       *cpuOnly,
		SharedLibrary: *ortLib,
	})
	check(err)
	defer model.Close()

	img, err := imageio.LoadRGB(*input)
	check(err)

	prediction, err := model.Segment(img, nn.NewSegmentationParams())
	check(err)
	logger.Infof("Found %v instances, scores %v", len(prediction.Instances), prediction.Scores())

	overlay, err := nn.SumTopMasks(prediction.Instances, img.Width, img.Height, *top)
	check(err)
	binary := nn.Threshold(overlay, float32(*threshold))

	check(os.MkdirAll(*outDir, 0755))
	stem := strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
	save := func(suffix string, write func(filename string) error) {
		filename := filepath.Join(*outDir, stem+suffix)
		check(write(filename))
		logger.Infof("Wrote %v", filename)
	}

	heat, err := visualize.SideBySideHeatmap(img, overlay)
	check(err)
	save("_heatmap.png", func(fn string) error { return imageio.Save(fn, heat) })

	save("_mask.png", func(fn string) error { return imageio.Save(fn, visualize.BinaryMask(binary)) })

	blend, err := visualize.BlendMask(img, binary, visualize.InstanceColor(0), *alpha)
	check(err)
	save("_blend.png", func(fn string) error { return imageio.Save(fn, blend) })

	if *saveJSON {
		save("_instances.json", func(fn string) error {
			return iox.WriteFile(fn, func(w io.Writer) error {
				encoder := json.NewEncoder(w)
				encoder.SetIndent("", "  ")
				return encoder.Encode(prediction)
			})
		})
	}
}
