// Package detector trains, persists and serves the fake news model.
package detector

import (
	"fmt"
	"time"

	"github.com/Veraticus/newscheck/internal/classifier"
	"github.com/Veraticus/newscheck/internal/metrics"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/vectorize"
)

// Model is a trained vectorizer and classifier together with the evaluation
// produced when it was trained. A Model is never modified after construction,
// so it can be shared between goroutines.
type Model struct {
	CreatedAt  time.Time
	vectorizer *vectorize.Vectorizer
	classifier *classifier.LogisticRegression
	Classes    map[model.Label]model.ClassReport
	ID         string
	Baseline   model.BaselineMetrics
	Evaluation model.Evaluation
	ROC        metrics.Curve
	History    []model.IterationRecord
	Metrics    model.Metrics
	Confusion  model.ConfusionMatrix
}

// ProbabilityFake scores a single text.
func (m *Model) ProbabilityFake(text string) (float64, error) {
	vec, err := m.vectorizer.Transform(text)
	if err != nil {
		return 0, fmt.Errorf("vectorize: %w", err)
	}
	proba, err := m.classifier.PredictProba(vec)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}
	return proba[model.ClassFake], nil
}

// TopFeatures returns the n terms pushing hardest towards each label.
func (m *Model) TopFeatures(n int) (fakeLeaning, realLeaning []model.FeatureWeight, err error) {
	return m.classifier.TopFeatures(m.vectorizer.Terms(), n)
}

// VocabularySize is the number of features the model uses.
func (m *Model) VocabularySize() int {
	if m.vectorizer == nil {
		return 0
	}
	return m.vectorizer.Dim()
}
