package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/newscheck/internal/model"
)

func TestEvaluate(t *testing.T) {
	yTrue := []int{1, 1, 1, 0, 0, 0}
	yPred := []int{1, 1, 0, 0, 0, 1}
	prob := []float64{0.9, 0.8, 0.4, 0.2, 0.1, 0.6}

	report, err := Evaluate(yTrue, yPred, prob)
	require.NoError(t, err)

	assert.Equal(t, model.ConfusionMatrix{{2, 1}, {1, 2}}, report.Confusion)
	assert.Equal(t, len(yTrue), report.Confusion.Total())
	assert.InDelta(t, 4.0/6.0, report.Metrics.Accuracy, 1e-12)
	assert.InDelta(t, 2.0/3.0, report.Metrics.Precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, report.Metrics.Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, report.Metrics.F1, 1e-12)
	assert.Equal(t, 6, report.Metrics.TestSamples)

	// 8 of 9 positive/negative pairs are ordered correctly.
	assert.InDelta(t, 8.0/9.0, report.Metrics.AUC, 1e-12)

	realReport := report.Classes[model.LabelReal]
	assert.Equal(t, 3, realReport.Support)
	assert.InDelta(t, 2.0/3.0, realReport.Recall, 1e-12)
}

func TestEvaluate_ZeroDivision(t *testing.T) {
	report, err := Evaluate([]int{0, 0}, []int{0, 0}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, report.Metrics.Accuracy, 1e-12)
	assert.Zero(t, report.Metrics.Precision)
	assert.Zero(t, report.Metrics.Recall)
	assert.Zero(t, report.Metrics.F1)
	assert.InDelta(t, 0.5, report.Metrics.AUC, 1e-12)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate([]int{0, 1}, []int{0}, nil)
	assert.Error(t, err)

	_, err = Evaluate([]int{0, 1}, []int{0, 1}, []float64{0.1})
	assert.Error(t, err)

	_, err = Evaluate([]int{0, 2}, []int{0, 1}, nil)
	assert.Error(t, err)
}

func TestROC(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		prob    []float64
		wantAUC float64
		empty   bool
	}{
		{
			name:    "perfect separation",
			yTrue:   []int{0, 0, 1, 1},
			prob:    []float64{0.1, 0.2, 0.8, 0.9},
			wantAUC: 1,
		},
		{
			name:    "inverted",
			yTrue:   []int{1, 1, 0, 0},
			prob:    []float64{0.1, 0.2, 0.8, 0.9},
			wantAUC: 0,
		},
		{
			name:    "single class",
			yTrue:   []int{1, 1, 1},
			prob:    []float64{0.1, 0.5, 0.9},
			wantAUC: 0.5,
			empty:   true,
		},
		{
			name:    "no samples",
			wantAUC: 0.5,
			empty:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curve := ROC(tt.yTrue, tt.prob)
			if tt.empty {
				assert.Empty(t, curve.FPR)
			} else {
				require.NotEmpty(t, curve.FPR)
				assert.Equal(t, 0.0, curve.FPR[0])
				assert.Equal(t, 1.0, curve.FPR[len(curve.FPR)-1])
				assert.Equal(t, 1.0, curve.TPR[len(curve.TPR)-1])
				assert.Len(t, curve.Thresholds, len(curve.FPR))
			}
			assert.InDelta(t, tt.wantAUC, AUC(curve), 1e-12)
		})
	}
}

func TestROC_DoesNotReorderInput(t *testing.T) {
	prob := []float64{0.9, 0.1, 0.5}
	ROC([]int{1, 0, 1}, prob)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, prob)
}
