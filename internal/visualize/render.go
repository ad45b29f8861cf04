// Package visualize renders evaluation charts as PNG images.
package visualize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/Veraticus/newscheck/internal/metrics"
	"github.com/Veraticus/newscheck/internal/model"
)

// Chart names, also used as API keys and file names.
const (
	ChartConfusionMatrix   = "confusion_matrix"
	ChartMetrics           = "metrics_chart"
	ChartROC               = "roc_curve"
	ChartPredictionDist    = "prediction_dist"
	ChartFeatureImportance = "feature_importance"
	ChartTrainingProgress  = "training_progress"
	ChartPerformanceRadar  = "performance_radar"
)

// Names lists every chart in display order.
var Names = []string{
	ChartConfusionMatrix,
	ChartMetrics,
	ChartROC,
	ChartPredictionDist,
	ChartFeatureImportance,
	ChartTrainingProgress,
	ChartPerformanceRadar,
}

// ErrUnknownChart is returned for a chart name not in Names.
var ErrUnknownChart = errors.New("unknown chart")

// Input is everything the charts are drawn from.
type Input struct {
	FakeFeatures []model.FeatureWeight
	RealFeatures []model.FeatureWeight
	History      []model.IterationRecord
	ROC          metrics.Curve
	Evaluation   model.Evaluation
	Metrics      model.Metrics
	Confusion    model.ConfusionMatrix
}

var renderers = map[string]func(Input) ([]byte, error){
	ChartConfusionMatrix:   func(in Input) ([]byte, error) { return ConfusionMatrix(in.Confusion) },
	ChartMetrics:           func(in Input) ([]byte, error) { return MetricsChart(in.Metrics) },
	ChartROC:               func(in Input) ([]byte, error) { return ROCCurve(in.ROC, in.Metrics.AUC) },
	ChartPredictionDist:    func(in Input) ([]byte, error) { return PredictionDistribution(in.Evaluation) },
	ChartFeatureImportance: func(in Input) ([]byte, error) { return FeatureImportance(in.FakeFeatures, in.RealFeatures) },
	ChartTrainingProgress:  func(in Input) ([]byte, error) { return TrainingProgress(in.History) },
	ChartPerformanceRadar:  func(in Input) ([]byte, error) { return PerformanceRadar(in.Metrics) },
}

// Render draws a single named chart.
func Render(name string, in Input) ([]byte, error) {
	render, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	png, err := render(in)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return png, nil
}

// RenderAll draws every chart concurrently.
func RenderAll(ctx context.Context, in Input) (map[string][]byte, error) {
	var mu sync.Mutex
	out := make(map[string][]byte, len(Names))

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range Names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			png, err := Render(name, in)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = png
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Palette shared by the charts.
var (
	colorGreen  = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	colorBlue   = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	colorRed    = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	colorOrange = color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}
)

func withAlpha(c color.RGBA, a uint8) color.RGBA {
	// color.RGBA is premultiplied.
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 0xff) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

func encodePNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
