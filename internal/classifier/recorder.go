package classifier

import (
	"context"

	"gonum.org/v1/gonum/optimize"

	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/vectorize"
)

// iterationRecorder bridges gonum's optimize.Recorder to our Recorder and
// aborts the optimisation when the context is cancelled.
type iterationRecorder struct {
	ctx context.Context
	rec Recorder
	X   []vectorize.Vector
	y   []int
	dim int
}

var _ optimize.Recorder = (*iterationRecorder)(nil)

func (r *iterationRecorder) Init() error {
	return nil
}

func (r *iterationRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if op != optimize.MajorIteration || r.rec == nil {
		return nil
	}
	r.rec.RecordIteration(model.IterationRecord{
		Iteration:     stats.MajorIterations,
		Loss:          loc.F,
		TrainAccuracy: r.accuracy(loc.X),
	})
	return nil
}

func (r *iterationRecorder) accuracy(params []float64) float64 {
	w, b := params[:r.dim], params[r.dim]
	correct := 0
	for i, x := range r.X {
		pred := model.ClassReal
		if sigmoid(x.Dot(w)+b) >= model.DecisionThreshold {
			pred = model.ClassFake
		}
		if pred == r.y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(r.X))
}
