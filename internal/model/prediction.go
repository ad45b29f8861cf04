package model

// DecisionThreshold is the fake-probability at or above which text is classified fake.
const DecisionThreshold = 0.5

// PredictionResult is the outcome of classifying one piece of text.
type PredictionResult struct {
	IsFake          bool    `json:"is_fake"`
	Confidence      float64 `json:"confidence"`
	ProbabilityFake float64 `json:"probability_fake"`
	ProbabilityReal float64 `json:"probability_real"`
}

// NewPredictionResult derives a result from the fake-class probability.
// ProbabilityReal is computed as the complement so the pair always sums to one.
func NewPredictionResult(probFake float64) PredictionResult {
	probReal := 1 - probFake
	isFake := probFake >= DecisionThreshold

	confidence := probReal
	if isFake {
		confidence = probFake
	}

	return PredictionResult{
		IsFake:          isFake,
		Confidence:      confidence,
		ProbabilityFake: probFake,
		ProbabilityReal: probReal,
	}
}

// Label returns the predicted label.
func (r PredictionResult) Label() Label {
	if r.IsFake {
		return LabelFake
	}
	return LabelReal
}
