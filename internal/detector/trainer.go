package detector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/navossoc/bayesian"

	"github.com/Veraticus/newscheck/internal/classifier"
	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/dataset"
	"github.com/Veraticus/newscheck/internal/metrics"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/vectorize"
)

// BaselineName identifies the comparison model in reports.
const BaselineName = "multinomial naive bayes"

const (
	bayesReal bayesian.Class = "real"
	bayesFake bayesian.Class = "fake"
)

// Stage names reported through Options.OnStage.
const (
	StageLoad      = "load"
	StageVectorize = "vectorize"
	StageFit       = "fit"
	StageEvaluate  = "evaluate"
	StageBaseline  = "baseline"
)

// Options configures a Trainer. Zero values select the defaults.
type Options struct {
	// Recorder receives per-iteration optimiser progress.
	Recorder classifier.Recorder
	// OnStage is called as each training stage starts.
	OnStage       func(stage string)
	Logger        *slog.Logger
	TestSize      float64
	C             float64
	Seed          uint64
	MaxFeatures   int
	MaxIterations int
}

// Trainer builds Models from labelled data.
type Trainer struct {
	logger *slog.Logger
	opts   Options
}

// NewTrainer creates a trainer with the given options.
func NewTrainer(opts Options) *Trainer {
	if opts.TestSize <= 0 {
		opts.TestSize = dataset.DefaultTestSize
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = vectorize.DefaultMaxFeatures
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = classifier.DefaultMaxIterations
	}
	if opts.C <= 0 {
		opts.C = classifier.DefaultC
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{opts: opts, logger: logger}
}

// Train loads a CSV file and trains on it.
func (t *Trainer) Train(ctx context.Context, csvPath string) (*Model, error) {
	t.stage(StageLoad)
	articles, err := dataset.LoadCSV(csvPath)
	if err != nil {
		return nil, err
	}
	t.logger.Info("Loaded training data", "path", csvPath, "rows", len(articles))
	return t.TrainArticles(ctx, articles)
}

// TrainArticles splits articles, fits the vectorizer and classifier on the
// training partition and evaluates on the held-out partition.
func (t *Trainer) TrainArticles(ctx context.Context, articles []model.Article) (*Model, error) {
	start := time.Now()

	texts := make([]string, len(articles))
	labels := make([]int, len(articles))
	for i, a := range articles {
		texts[i] = a.Text()
		labels[i] = a.Label.Class()
	}

	trainIdx, testIdx, err := dataset.Split(len(articles), t.opts.TestSize, t.opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrData, err)
	}
	trainTexts, trainLabels := pick(texts, labels, trainIdx)
	testTexts, testLabels := pick(texts, labels, testIdx)

	if !hasBothClasses(trainLabels) {
		return nil, fmt.Errorf("%w: training partition needs both fake and real articles", common.ErrData)
	}
	t.logger.Info("Split data", "training_samples", len(trainIdx), "test_samples", len(testIdx))

	t.stage(StageVectorize)
	vec := vectorize.New(t.opts.MaxFeatures)
	if err := vec.Fit(trainTexts); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrData, err)
	}
	xTrain, err := vec.TransformAll(trainTexts)
	if err != nil {
		return nil, err
	}
	xTest, err := vec.TransformAll(testTexts)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("Fitted vectorizer", "vocabulary", vec.Dim())

	t.stage(StageFit)
	var history []model.IterationRecord
	recorder := classifier.RecorderFunc(func(rec model.IterationRecord) {
		history = append(history, rec)
		if t.opts.Recorder != nil {
			t.opts.Recorder.RecordIteration(rec)
		}
	})

	lr := classifier.New()
	lr.C = t.opts.C
	lr.MaxIterations = t.opts.MaxIterations
	if err := lr.Fit(ctx, xTrain, trainLabels, recorder); err != nil {
		return nil, fmt.Errorf("failed to fit classifier: %w", err)
	}
	t.logger.Debug("Fitted classifier", "iterations", lr.Iterations())

	t.stage(StageEvaluate)
	eval := model.Evaluation{
		YTrue:    testLabels,
		YPred:    make([]int, len(xTest)),
		ProbFake: make([]float64, len(xTest)),
	}
	for i, x := range xTest {
		proba, err := lr.PredictProba(x)
		if err != nil {
			return nil, err
		}
		eval.ProbFake[i] = proba[model.ClassFake]
		eval.YPred[i] = model.NewPredictionResult(proba[model.ClassFake]).Label().Class()
	}

	report, err := metrics.Evaluate(eval.YTrue, eval.YPred, eval.ProbFake)
	if err != nil {
		return nil, err
	}
	report.Metrics.TrainingSamples = len(trainIdx)

	t.stage(StageBaseline)
	baseline := model.BaselineMetrics{
		Name:     BaselineName,
		Accuracy: baselineAccuracy(trainTexts, trainLabels, testTexts, testLabels),
	}

	m := &Model{
		CreatedAt:  time.Now().UTC(),
		ID:         uuid.NewString(),
		vectorizer: vec,
		classifier: lr,
		Metrics:    report.Metrics,
		Confusion:  report.Confusion,
		Classes:    report.Classes,
		ROC:        report.ROC,
		Evaluation: eval,
		History:    history,
		Baseline:   baseline,
	}

	t.logger.Info("Model trained",
		"model_id", m.ID,
		"accuracy", m.Metrics.Accuracy,
		"f1", m.Metrics.F1,
		"auc", m.Metrics.AUC,
		"baseline_accuracy", baseline.Accuracy,
		"duration", time.Since(start))

	return m, nil
}

func (t *Trainer) stage(name string) {
	if t.opts.OnStage != nil {
		t.opts.OnStage(name)
	}
}

// baselineAccuracy trains naive Bayes on the same partition. An empty test
// partition scores zero.
func baselineAccuracy(trainTexts []string, trainLabels []int, testTexts []string, testLabels []int) float64 {
	nb := bayesian.NewClassifier(bayesReal, bayesFake)
	for i, text := range trainTexts {
		class := bayesReal
		if trainLabels[i] == model.ClassFake {
			class = bayesFake
		}
		nb.Learn(vectorize.Tokenize(text), class)
	}

	if len(testTexts) == 0 {
		return 0
	}
	correct := 0
	for i, text := range testTexts {
		_, best, _ := nb.LogScores(vectorize.Tokenize(text))
		// Class index follows the order passed to NewClassifier.
		if best == testLabels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(testTexts))
}

func pick(texts []string, labels []int, idx []int) ([]string, []int) {
	outTexts := make([]string, len(idx))
	outLabels := make([]int, len(idx))
	for i, j := range idx {
		outTexts[i] = texts[j]
		outLabels[i] = labels[j]
	}
	return outTexts, outLabels
}

func hasBothClasses(labels []int) bool {
	var fake int
	for _, l := range labels {
		fake += l
	}
	return fake > 0 && fake < len(labels)
}
