package detector

import (
	"fmt"

	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/model"
)

// Predictor classifies text with a trained Model. It performs no input
// validation; callers enforce length limits.
type Predictor struct {
	model *Model
}

// NewPredictor wraps m. A nil model yields a predictor that always fails with
// common.ErrModelNotLoaded.
func NewPredictor(m *Model) *Predictor {
	return &Predictor{model: m}
}

// Model returns the underlying model, or nil.
func (p *Predictor) Model() *Model {
	if p == nil {
		return nil
	}
	return p.model
}

// Loaded reports whether predictions are possible.
func (p *Predictor) Loaded() bool {
	return p.Model() != nil
}

// Predict classifies one text.
func (p *Predictor) Predict(text string) (model.PredictionResult, error) {
	if !p.Loaded() {
		return model.PredictionResult{}, common.ErrModelNotLoaded
	}
	prob, err := p.model.ProbabilityFake(text)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("predict: %w", err)
	}
	return model.NewPredictionResult(prob), nil
}

// PredictBatch classifies every text, returning results in input order.
func (p *Predictor) PredictBatch(texts []string) ([]model.PredictionResult, error) {
	if !p.Loaded() {
		return nil, common.ErrModelNotLoaded
	}
	results := make([]model.PredictionResult, len(texts))
	for i, text := range texts {
		res, err := p.Predict(text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		results[i] = res
	}
	return results, nil
}
