// Package metrics computes held-out evaluation statistics for binary predictions.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/Veraticus/newscheck/internal/model"
)

// Report is the full evaluation of one set of predictions.
type Report struct {
	Classes   map[model.Label]model.ClassReport `json:"classes"`
	ROC       Curve                             `json:"roc"`
	Metrics   model.Metrics                     `json:"metrics"`
	Confusion model.ConfusionMatrix             `json:"confusion_matrix"`
}

// Curve is a receiver operating characteristic curve.
type Curve struct {
	FPR        []float64 `json:"fpr"`
	TPR        []float64 `json:"tpr"`
	Thresholds []float64 `json:"thresholds"`
}

// Evaluate scores predictions against ground truth. Fake is the positive class.
// probFake may be nil, in which case AUC is reported as 0.5.
func Evaluate(yTrue, yPred []int, probFake []float64) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, fmt.Errorf("evaluate: %d labels but %d predictions", len(yTrue), len(yPred))
	}
	if probFake != nil && len(probFake) != len(yTrue) {
		return Report{}, fmt.Errorf("evaluate: %d labels but %d probabilities", len(yTrue), len(probFake))
	}

	cm, err := Confusion(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Confusion: cm,
		Classes: map[model.Label]model.ClassReport{
			model.LabelReal: classReport(cm, model.ClassReal),
			model.LabelFake: classReport(cm, model.ClassFake),
		},
	}

	fake := report.Classes[model.LabelFake]
	report.Metrics = model.Metrics{
		Accuracy:    Accuracy(cm),
		Precision:   fake.Precision,
		Recall:      fake.Recall,
		F1:          fake.F1,
		AUC:         0.5,
		TestSamples: cm.Total(),
	}

	if probFake != nil {
		report.ROC = ROC(yTrue, probFake)
		report.Metrics.AUC = AUC(report.ROC)
	}

	return report, nil
}

// Confusion counts predictions into a matrix indexed [actual][predicted].
func Confusion(yTrue, yPred []int) (model.ConfusionMatrix, error) {
	var cm model.ConfusionMatrix
	if len(yTrue) != len(yPred) {
		return cm, fmt.Errorf("confusion matrix: %d labels but %d predictions", len(yTrue), len(yPred))
	}
	for i := range yTrue {
		if !validClass(yTrue[i]) || !validClass(yPred[i]) {
			return cm, fmt.Errorf("confusion matrix: invalid class at index %d", i)
		}
		cm[yTrue[i]][yPred[i]]++
	}
	return cm, nil
}

// Accuracy is the fraction of correct predictions, 0 for an empty matrix.
func Accuracy(cm model.ConfusionMatrix) float64 {
	return safeDiv(float64(cm.TrueNegatives()+cm.TruePositives()), float64(cm.Total()))
}

func classReport(cm model.ConfusionMatrix, class int) model.ClassReport {
	other := 1 - class
	tp := float64(cm[class][class])
	fp := float64(cm[other][class])
	fn := float64(cm[class][other])

	precision := safeDiv(tp, tp+fp)
	recall := safeDiv(tp, tp+fn)
	return model.ClassReport{
		Precision: precision,
		Recall:    recall,
		F1:        safeDiv(2*precision*recall, precision+recall),
		Support:   cm[class][0] + cm[class][1],
	}
}

// ROC computes the curve for the fake class. Input containing a single class
// yields an empty curve.
func ROC(yTrue []int, probFake []float64) Curve {
	var positives int
	for _, y := range yTrue {
		if y == model.ClassFake {
			positives++
		}
	}
	if len(yTrue) == 0 || positives == 0 || positives == len(yTrue) {
		return Curve{}
	}

	scores := make([]float64, len(probFake))
	copy(scores, probFake)
	classes := make([]bool, len(yTrue))
	for i, y := range yTrue {
		classes[i] = y == model.ClassFake
	}
	stat.SortWeightedLabeled(scores, classes, nil)

	tpr, fpr, thresh := stat.ROC(nil, scores, classes, nil)
	for i, t := range thresh {
		// The leading cutoff is +Inf, which JSON cannot carry.
		if math.IsInf(t, 1) {
			thresh[i] = 1
		}
	}

	// Anchor the curve at both corners so the area is well defined.
	if len(fpr) == 0 || fpr[0] != 0 || tpr[0] != 0 {
		fpr = append([]float64{0}, fpr...)
		tpr = append([]float64{0}, tpr...)
		thresh = append([]float64{1}, thresh...)
	}
	if last := len(fpr) - 1; fpr[last] != 1 || tpr[last] != 1 {
		fpr = append(fpr, 1)
		tpr = append(tpr, 1)
		thresh = append(thresh, 0)
	}

	return Curve{FPR: fpr, TPR: tpr, Thresholds: thresh}
}

// AUC is the trapezoidal area under the curve, 0.5 when the curve is empty.
func AUC(c Curve) float64 {
	if len(c.FPR) < 2 {
		return 0.5
	}
	return integrate.Trapezoidal(c.FPR, c.TPR)
}

func validClass(c int) bool {
	return c == model.ClassReal || c == model.ClassFake
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
