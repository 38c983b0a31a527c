package visualize

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
	"gonum.org/v1/plot/palette/moreland"
)

// Colormap is a 256 entry lookup table from intensity to colour
type Colormap [256]color.NRGBA

// HeatColormap is a perceptually uniform dark to bright map, used for probability maps
var HeatColormap = newColormap()

func newColormap() *Colormap {
	cm := &Colormap{}
	for i, c := range moreland.ExtendedKindlmann().Palette(256).Colors() {
		cm[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return cm
}

// At maps v in [0,1] to a colour. Values outside that range are clamped.
func (cm *Colormap) At(v float32) color.NRGBA {
	i := int(math.Round(float64(v) * 255))
	return cm[min(max(i, 0), 255)]
}

// valueRange returns the min and max of a probability map
func valueRange(m *nn.ProbabilityMap) (lo, hi float32) {
	if len(m.Prob) == 0 {
		return 0, 0
	}
	lo, hi = m.Prob[0], m.Prob[0]
	for _, v := range m.Prob {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return
}

// InstanceColor returns a distinct, deterministic colour for instance i.
// Hues are spaced by the golden angle, so neighbouring indices never look alike.
func InstanceColor(i int) color.NRGBA {
	hue := math.Mod(float64(i)*137.508, 360)
	r, g, b := colorful.Hcl(hue, 0.7, 0.65).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
