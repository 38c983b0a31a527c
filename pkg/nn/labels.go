package nn

// Prediction is the output of one forward pass over one image
type Prediction struct {
	ImageWidth  int        `json:"imageWidth"`
	ImageHeight int        `json:"imageHeight"`
	Instances   []Instance `json:"instances"`
}

// Instance is an object that the network has found in an image
type Instance struct {
	Class      int             `json:"class"`
	Confidence float32         `json:"confidence"`
	Box        Box             `json:"box"`
	Mask       *ProbabilityMap `json:"-"`
}

// Scores returns the confidence of every instance, in order
func (p *Prediction) Scores() []float32 {
	scores := make([]float32, len(p.Instances))
	for i, inst := range p.Instances {
		scores[i] = inst.Confidence
	}
	return scores
}
