package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/vectorize"
)

func trainingSet(t *testing.T) (*vectorize.Vectorizer, []vectorize.Vector, []int) {
	t.Helper()

	texts := []string{
		"secret conspiracy exposed by anonymous sources",
		"aliens conspiracy hidden truth leaked",
		"shocking secret cure hidden by elites",
		"unverified rumors claim hidden conspiracy",
		"peer reviewed research confirms results",
		"official statistics show economic growth",
		"university research published today",
		"verified reports confirm official data",
	}
	labels := []int{1, 1, 1, 1, 0, 0, 0, 0}

	v := vectorize.New(0)
	require.NoError(t, v.Fit(texts))
	X, err := v.TransformAll(texts)
	require.NoError(t, err)
	return v, X, labels
}

func TestLogisticRegression_FitSeparatesClasses(t *testing.T) {
	v, X, y := trainingSet(t)

	var history []model.IterationRecord
	lr := New()
	require.NoError(t, lr.Fit(context.Background(), X, y, RecorderFunc(func(r model.IterationRecord) {
		history = append(history, r)
	})))

	assert.True(t, lr.Fitted())
	assert.Positive(t, lr.Iterations())
	require.NotEmpty(t, history)
	assert.LessOrEqual(t, history[len(history)-1].Loss, history[0].Loss)

	for i, x := range X {
		pred, err := lr.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, y[i], pred, "sample %d", i)
	}

	fakeVec, err := v.Transform("hidden secret conspiracy")
	require.NoError(t, err)
	proba, err := lr.PredictProba(fakeVec)
	require.NoError(t, err)
	assert.Greater(t, proba[model.ClassFake], 0.5)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)
}

func TestLogisticRegression_Deterministic(t *testing.T) {
	_, X, y := trainingSet(t)

	a, b := New(), New()
	require.NoError(t, a.Fit(context.Background(), X, y, nil))
	require.NoError(t, b.Fit(context.Background(), X, y, nil))
	assert.Equal(t, a.State(), b.State())
}

func TestLogisticRegression_EmptyVectorUsesIntercept(t *testing.T) {
	_, X, y := trainingSet(t)
	lr := New()
	require.NoError(t, lr.Fit(context.Background(), X, y, nil))

	proba, err := lr.PredictProba(vectorize.Vector{Dim: X[0].Dim})
	require.NoError(t, err)
	// Balanced classes leave the intercept near zero.
	assert.InDelta(t, 0.5, proba[model.ClassFake], 0.2)
}

func TestLogisticRegression_Errors(t *testing.T) {
	_, X, y := trainingSet(t)
	lr := New()

	_, err := lr.PredictProba(X[0])
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.Error(t, lr.Fit(context.Background(), nil, nil, nil))
	assert.Error(t, lr.Fit(context.Background(), X, y[:2], nil))
	assert.ErrorIs(t, lr.Fit(context.Background(), X[:4], y[:4], nil), ErrSingleClass)

	require.NoError(t, lr.Fit(context.Background(), X, y, nil))
	_, err = lr.PredictProba(vectorize.Vector{Dim: 1})
	assert.Error(t, err)
}

func TestLogisticRegression_CancelledContext(t *testing.T) {
	_, X, y := trainingSet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Fit(ctx, X, y, nil)
	assert.Error(t, err)
}

func TestLogisticRegression_TopFeatures(t *testing.T) {
	v, X, y := trainingSet(t)
	lr := New()
	require.NoError(t, lr.Fit(context.Background(), X, y, nil))

	fakeTerms, realTerms, err := lr.TopFeatures(v.Terms(), 3)
	require.NoError(t, err)
	require.NotEmpty(t, fakeTerms)
	require.NotEmpty(t, realTerms)

	assert.Contains(t, []string{"conspiracy", "hidden"}, fakeTerms[0].Term)
	for _, fw := range fakeTerms {
		assert.Positive(t, fw.Weight)
	}
	for _, fw := range realTerms {
		assert.Negative(t, fw.Weight)
	}

	_, _, err = lr.TopFeatures([]string{"x"}, 3)
	assert.Error(t, err)
}

func TestStateRoundTrip(t *testing.T) {
	_, X, y := trainingSet(t)
	lr := New()
	require.NoError(t, lr.Fit(context.Background(), X, y, nil))

	restored, err := FromState(lr.State())
	require.NoError(t, err)

	for _, x := range X {
		want, _ := lr.PredictProba(x)
		got, err := restored.PredictProba(x)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = FromState(State{})
	assert.ErrorIs(t, err, ErrNotFitted)
}
