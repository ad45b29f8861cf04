package visualize

import (
	"fmt"

	"github.com/Veraticus/newscheck/internal/detector"
)

// DefaultTopFeatures is how many terms per label the feature chart shows.
const DefaultTopFeatures = 10

// InputFromModel gathers chart input from a trained model.
func InputFromModel(m *detector.Model) (Input, error) {
	fakeTerms, realTerms, err := m.TopFeatures(DefaultTopFeatures)
	if err != nil {
		return Input{}, fmt.Errorf("top features: %w", err)
	}
	return Input{
		FakeFeatures: fakeTerms,
		RealFeatures: realTerms,
		History:      m.History,
		ROC:          m.ROC,
		Evaluation:   m.Evaluation,
		Metrics:      m.Metrics,
		Confusion:    m.Confusion,
	}, nil
}
