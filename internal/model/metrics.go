package model

// Metrics summarises held-out performance of a training run.
type Metrics struct {
	Accuracy        float64 `json:"accuracy"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	F1              float64 `json:"f1"`
	AUC             float64 `json:"auc"`
	TrainingSamples int     `json:"training_samples"`
	TestSamples     int     `json:"test_samples"`
}

// ConfusionMatrix counts predictions indexed [actual][predicted], 0 = real, 1 = fake.
type ConfusionMatrix [2][2]int

// Total returns the number of predictions counted.
func (c ConfusionMatrix) Total() int {
	return c[0][0] + c[0][1] + c[1][0] + c[1][1]
}

// TrueNegatives is real predicted as real.
func (c ConfusionMatrix) TrueNegatives() int { return c[ClassReal][ClassReal] }

// FalsePositives is real predicted as fake.
func (c ConfusionMatrix) FalsePositives() int { return c[ClassReal][ClassFake] }

// FalseNegatives is fake predicted as real.
func (c ConfusionMatrix) FalseNegatives() int { return c[ClassFake][ClassReal] }

// TruePositives is fake predicted as fake.
func (c ConfusionMatrix) TruePositives() int { return c[ClassFake][ClassFake] }

// ClassReport holds per-label precision/recall/F1.
type ClassReport struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation keeps the raw held-out predictions for charting.
type Evaluation struct {
	YTrue    []int     `json:"y_true"`
	YPred    []int     `json:"y_pred"`
	ProbFake []float64 `json:"prob_fake"`
}

// IterationRecord is one step of the optimiser's history.
type IterationRecord struct {
	Iteration     int     `json:"iteration"`
	Loss          float64 `json:"loss"`
	TrainAccuracy float64 `json:"train_accuracy"`
}

// FeatureWeight pairs a vocabulary term with its classifier coefficient.
// Positive weights push towards fake.
type FeatureWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// BaselineMetrics reports the naive Bayes comparison model.
type BaselineMetrics struct {
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
}
