// Package classifier implements L2-regularised binary logistic regression
// over sparse TF-IDF vectors.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/vectorize"
)

// Defaults mirror a standard logistic regression setup.
const (
	DefaultC                 = 1.0
	DefaultMaxIterations     = 1000
	DefaultGradientTolerance = 1e-6
)

var (
	// ErrNotFitted is returned when predicting with an untrained classifier.
	ErrNotFitted = errors.New("classifier not fitted")
	// ErrSingleClass is returned when training labels contain only one class.
	ErrSingleClass = errors.New("training labels contain a single class")
)

// Recorder receives one record per optimiser iteration.
type Recorder interface {
	RecordIteration(rec model.IterationRecord)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(model.IterationRecord)

// RecordIteration implements Recorder.
func (f RecorderFunc) RecordIteration(rec model.IterationRecord) { f(rec) }

// LogisticRegression is a binary classifier producing P(fake).
type LogisticRegression struct {
	weights           []float64
	C                 float64
	GradientTolerance float64
	intercept         float64
	MaxIterations     int
	iterations        int
}

// New returns an unfitted classifier with default hyper-parameters.
func New() *LogisticRegression {
	return &LogisticRegression{
		C:                 DefaultC,
		MaxIterations:     DefaultMaxIterations,
		GradientTolerance: DefaultGradientTolerance,
	}
}

// Fitted reports whether coefficients are available.
func (lr *LogisticRegression) Fitted() bool {
	return lr != nil && lr.weights != nil
}

// Iterations is the number of optimiser iterations used by the last Fit.
func (lr *LogisticRegression) Iterations() int {
	return lr.iterations
}

// Fit learns coefficients by minimising 0.5*||w||^2 + C*sum(logloss) with L-BFGS.
// The intercept is not regularised. Starting from zero, the result is deterministic.
func (lr *LogisticRegression) Fit(ctx context.Context, X []vectorize.Vector, y []int, rec Recorder) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fit classifier: %w", err)
	}
	if len(X) == 0 {
		return fmt.Errorf("fit classifier: no samples")
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit classifier: %d samples but %d labels", len(X), len(y))
	}

	dim := X[0].Dim
	var positives int
	for i, label := range y {
		if X[i].Dim != dim {
			return fmt.Errorf("fit classifier: sample %d has dimension %d, want %d", i, X[i].Dim, dim)
		}
		if label != model.ClassReal && label != model.ClassFake {
			return fmt.Errorf("fit classifier: label %d at sample %d is not 0 or 1", label, i)
		}
		positives += label
	}
	if positives == 0 || positives == len(y) {
		return ErrSingleClass
	}

	c := lr.C
	if c <= 0 {
		c = DefaultC
	}
	// Signed targets in {-1, +1}.
	signs := make([]float64, len(y))
	for i, label := range y {
		signs[i] = float64(2*label - 1)
	}

	n := float64(len(X))
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			w, b := params[:dim], params[dim]
			var loss float64
			for i, x := range X {
				loss += logOnePlusExp(-signs[i] * (x.Dot(w) + b))
			}
			return (0.5*floats.Dot(w, w) + c*loss) / n
		},
		Grad: func(grad, params []float64) {
			w, b := params[:dim], params[dim]
			copy(grad[:dim], w)
			grad[dim] = 0
			for i, x := range X {
				z := signs[i] * (x.Dot(w) + b)
				coef := -c * signs[i] * sigmoid(-z)
				x.AddScaledTo(grad[:dim], coef)
				grad[dim] += coef
			}
			floats.Scale(1/n, grad)
		},
	}

	maxIter := lr.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tol := lr.GradientTolerance
	if tol <= 0 {
		tol = DefaultGradientTolerance
	}

	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: tol,
		Recorder: &iterationRecorder{
			ctx: ctx,
			rec: rec,
			X:   X,
			y:   y,
			dim: dim,
		},
	}

	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if err != nil {
		if result == nil || ctx.Err() != nil {
			return fmt.Errorf("fit classifier: %w", err)
		}
		slog.Warn("Optimiser stopped early, using best point found", "error", err, "status", result.Status.String())
	}

	lr.weights = make([]float64, dim)
	copy(lr.weights, result.X[:dim])
	lr.intercept = result.X[dim]
	lr.iterations = result.Stats.MajorIterations

	return nil
}

// PredictProba returns [P(real), P(fake)] for x.
func (lr *LogisticRegression) PredictProba(x vectorize.Vector) ([2]float64, error) {
	if !lr.Fitted() {
		return [2]float64{}, ErrNotFitted
	}
	if x.Dim != len(lr.weights) {
		return [2]float64{}, fmt.Errorf("predict: vector dimension %d, want %d", x.Dim, len(lr.weights))
	}
	pFake := sigmoid(x.Dot(lr.weights) + lr.intercept)
	return [2]float64{1 - pFake, pFake}, nil
}

// Predict returns the class with the fixed 0.5 threshold.
func (lr *LogisticRegression) Predict(x vectorize.Vector) (int, error) {
	proba, err := lr.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if proba[model.ClassFake] >= model.DecisionThreshold {
		return model.ClassFake, nil
	}
	return model.ClassReal, nil
}

// TopFeatures returns the n most fake-leaning terms (largest weights, descending)
// and the n most real-leaning terms (smallest weights, ascending).
func (lr *LogisticRegression) TopFeatures(terms []string, n int) (fakeLeaning, realLeaning []model.FeatureWeight, err error) {
	if !lr.Fitted() {
		return nil, nil, ErrNotFitted
	}
	if len(terms) != len(lr.weights) {
		return nil, nil, fmt.Errorf("top features: %d terms for %d weights", len(terms), len(lr.weights))
	}

	all := make([]model.FeatureWeight, len(terms))
	for i, term := range terms {
		all[i] = model.FeatureWeight{Term: term, Weight: lr.weights[i]}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Weight > all[j].Weight })

	if n > len(all) {
		n = len(all)
	}
	for _, fw := range all[:n] {
		if fw.Weight > 0 {
			fakeLeaning = append(fakeLeaning, fw)
		}
	}
	for i := len(all) - 1; i >= len(all)-n; i-- {
		if all[i].Weight < 0 {
			realLeaning = append(realLeaning, all[i])
		}
	}
	return fakeLeaning, realLeaning, nil
}

// State is the serialisable form of a fitted classifier.
type State struct {
	Weights    []float64 `json:"weights"`
	Intercept  float64   `json:"intercept"`
	C          float64   `json:"c"`
	Iterations int       `json:"iterations"`
}

// State exports the coefficients.
func (lr *LogisticRegression) State() State {
	w := make([]float64, len(lr.weights))
	copy(w, lr.weights)
	return State{Weights: w, Intercept: lr.intercept, C: lr.C, Iterations: lr.iterations}
}

// FromState rebuilds a classifier from exported coefficients.
func FromState(s State) (*LogisticRegression, error) {
	if len(s.Weights) == 0 {
		return nil, fmt.Errorf("restore classifier: %w", ErrNotFitted)
	}
	for _, w := range s.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("restore classifier: non-finite weight")
		}
	}
	lr := New()
	lr.C = s.C
	lr.weights = make([]float64, len(s.Weights))
	copy(lr.weights, s.Weights)
	lr.intercept = s.Intercept
	lr.iterations = s.Iterations
	return lr, nil
}

// sigmoid is evaluated so that neither branch overflows.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logOnePlusExp computes log(1+exp(z)) without overflow.
func logOnePlusExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
