package visualize

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Veraticus/newscheck/internal/metrics"
	"github.com/Veraticus/newscheck/internal/model"
)

const histogramBins = 30

// grid adapts a row-major matrix to plotter.GridXYZ.
type grid [][]float64

func (g grid) Dims() (c, r int)   { return len(g[0]), len(g) }
func (g grid) Z(c, r int) float64 { return g[r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

func newHeatMap(g grid, pal palette.Palette) *plotter.HeatMap {
	hm := plotter.NewHeatMap(g, pal)
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}
	return hm
}

// ConfusionMatrix draws annotated counts with actual labels on Y and
// predicted labels on X.
func ConfusionMatrix(cm model.ConfusionMatrix) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Confusion Matrix - Fake News Detection"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	g := grid{
		{float64(cm[model.ClassReal][model.ClassReal]), float64(cm[model.ClassReal][model.ClassFake])},
		{float64(cm[model.ClassFake][model.ClassReal]), float64(cm[model.ClassFake][model.ClassFake])},
	}
	p.Add(newHeatMap(g, palette.Heat(12, 1)))

	labels := plotter.XYLabels{XYs: make(plotter.XYs, 0, 4)}
	for r := range g {
		for c := range g[r] {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%d", cm[r][c]))
		}
	}
	annotations, err := centeredLabels(labels, text.YCenter)
	if err != nil {
		return nil, err
	}
	p.Add(annotations)

	p.NominalX("Real", "Fake")
	p.NominalY("Real", "Fake")

	return encodePNG(p, 6*vg.Inch, 5*vg.Inch)
}

// MetricsChart draws the four headline scores beside the dataset split.
func MetricsChart(m model.Metrics) ([]byte, error) {
	scores := plot.New()
	scores.Title.Text = "Model Performance Metrics"
	scores.Y.Label.Text = "Score"
	scores.Y.Min, scores.Y.Max = 0, 1.1
	scores.Add(plotter.NewGrid())

	names := []string{"Accuracy", "Precision", "Recall", "F1-Score"}
	values := []float64{m.Accuracy, m.Precision, m.Recall, m.F1}
	colors := []color.Color{colorGreen, colorBlue, colorRed, colorOrange}
	if err := addBars(scores, values, colors, "%.3f"); err != nil {
		return nil, err
	}
	scores.NominalX(names...)

	split := plot.New()
	split.Title.Text = "Dataset Distribution"
	split.Y.Label.Text = "Sample Count"
	split.Y.Min = 0
	split.Add(plotter.NewGrid())
	counts := []float64{float64(m.TrainingSamples), float64(m.TestSamples)}
	if err := addBars(split, counts, []color.Color{colorBlue, colorRed}, "%.0f"); err != nil {
		return nil, err
	}
	split.Y.Max = math.Max(1, math.Max(counts[0], counts[1])*1.15)
	split.NominalX(fmt.Sprintf("Training (%d)", m.TrainingSamples), fmt.Sprintf("Testing (%d)", m.TestSamples))

	img := vgimg.New(12*vg.Inch, 5*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: 8 * vg.Millimeter, PadTop: 2 * vg.Millimeter, PadBottom: 2 * vg.Millimeter, PadLeft: 2 * vg.Millimeter, PadRight: 2 * vg.Millimeter}

	plots := [][]*plot.Plot{{scores, split}}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addBars draws one bar per value so each can carry its own colour, with the
// value printed above it.
func addBars(p *plot.Plot, values []float64, colors []color.Color, format string) error {
	labels := plotter.XYLabels{}
	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(40))
		if err != nil {
			return err
		}
		bar.XMin = float64(i)
		bar.Color = colors[i%len(colors)]
		p.Add(bar)

		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: v})
		labels.Labels = append(labels.Labels, fmt.Sprintf(format, v))
	}

	annotations, err := centeredLabels(labels, text.YBottom)
	if err != nil {
		return err
	}
	p.Add(annotations)
	return nil
}

func centeredLabels(l plotter.XYLabels, yAlign text.YAlignment) (*plotter.Labels, error) {
	labels, err := plotter.NewLabels(l)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = yAlign
	}
	return labels, nil
}

// ROCCurve draws the curve against the random-classifier diagonal. An empty
// curve draws only the diagonal.
func ROCCurve(curve metrics.Curve, auc float64) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "ROC Curve - Model Performance"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1.05
	p.Add(plotter.NewGrid())
	p.Legend.Top = false
	p.Legend.Left = false

	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, err
	}
	diagonal.LineStyle.Color = colorRed
	diagonal.LineStyle.Width = vg.Points(2)
	diagonal.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(diagonal)
	p.Legend.Add("Random Classifier", diagonal)

	if len(curve.FPR) > 0 {
		pts := make(plotter.XYs, len(curve.FPR))
		for i := range curve.FPR {
			pts[i] = plotter.XY{X: curve.FPR[i], Y: curve.TPR[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = colorGreen
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("ROC Curve (AUC = %.3f)", auc), line)
	} else {
		p.Title.Text += " (single class, no curve)"
	}

	return encodePNG(p, 6*vg.Inch, 5*vg.Inch)
}

// PredictionDistribution overlays histograms of P(fake) for truly fake and
// truly real test articles.
func PredictionDistribution(eval model.Evaluation) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Prediction Confidence Distribution"
	p.X.Label.Text = "Confidence Score (Fake)"
	p.Y.Label.Text = "Frequency"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	var fakeProbs, realProbs []float64
	for i, y := range eval.YTrue {
		if i >= len(eval.ProbFake) {
			break
		}
		if y == model.ClassFake {
			fakeProbs = append(fakeProbs, eval.ProbFake[i])
		} else {
			realProbs = append(realProbs, eval.ProbFake[i])
		}
	}

	for _, series := range []struct {
		name   string
		values []float64
		color  color.RGBA
	}{
		{name: "Fake News", values: fakeProbs, color: colorRed},
		{name: "Real News", values: realProbs, color: colorGreen},
	} {
		if len(series.values) == 0 {
			continue
		}
		h := histogram(series.values, histogramBins)
		h.FillColor = withAlpha(series.color, 0x99)
		p.Add(h)
		p.Legend.Add(series.name, h)
	}

	if p.Y.Max <= p.Y.Min {
		p.Y.Max = 1
	}

	return encodePNG(p, 7*vg.Inch, 5*vg.Inch)
}

// histogram bins values over the fixed [0, 1] probability range.
func histogram(values []float64, n int) *plotter.Histogram {
	width := 1.0 / float64(n)
	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: float64(i) * width, Max: float64(i+1) * width}
	}
	for _, v := range values {
		i := int(v / width)
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Weight++
	}
	return &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		LineStyle: plotter.DefaultLineStyle,
	}
}

// FeatureImportance draws the strongest coefficients as a two-column heat map:
// the left column holds real-leaning weight and the right fake-leaning weight.
func FeatureImportance(fakeLeaning, realLeaning []model.FeatureWeight) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Top Feature Importance Heatmap"
	p.Y.Label.Text = "Features"

	rows := make([]model.FeatureWeight, 0, len(fakeLeaning)+len(realLeaning))
	for i := len(realLeaning) - 1; i >= 0; i-- {
		rows = append(rows, realLeaning[i])
	}
	rows = append(rows, fakeLeaning...)
	for len(rows) < 2 {
		rows = append(rows, model.FeatureWeight{})
	}

	var maxAbs float64
	g := make(grid, len(rows))
	terms := make([]string, len(rows))
	labels := plotter.XYLabels{}
	for r, fw := range rows {
		g[r] = []float64{math.Max(-fw.Weight, 0), math.Max(fw.Weight, 0)}
		terms[r] = fw.Term
		maxAbs = math.Max(maxAbs, math.Abs(fw.Weight))
		for c, v := range g[r] {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.3f", v))
		}
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(math.Max(maxAbs, 1e-9))
	p.Add(newHeatMap(g, cmap.Palette(64)))

	annotations, err := centeredLabels(labels, text.YCenter)
	if err != nil {
		return nil, err
	}
	p.Add(annotations)

	p.NominalX("Real News Weight", "Fake News Weight")
	p.NominalY(terms...)

	height := vg.Length(len(rows))*0.3*vg.Inch + 1.5*vg.Inch
	return encodePNG(p, 7*vg.Inch, height)
}

// TrainingProgress draws loss and training accuracy per optimiser iteration
// with the mean accuracy as a dashed reference.
func TrainingProgress(history []model.IterationRecord) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Model Training Progress"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Value"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	p.Legend.Top = false
	p.Legend.Left = false

	if len(history) == 0 {
		p.Title.Text += " (no history recorded)"
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
		return encodePNG(p, 7*vg.Inch, 5*vg.Inch)
	}

	acc := make(plotter.XYs, len(history))
	loss := make(plotter.XYs, len(history))
	var sum float64
	for i, rec := range history {
		acc[i] = plotter.XY{X: float64(rec.Iteration), Y: rec.TrainAccuracy}
		loss[i] = plotter.XY{X: float64(rec.Iteration), Y: rec.Loss}
		sum += rec.TrainAccuracy
	}
	mean := sum / float64(len(history))

	accLine, accPoints, err := plotter.NewLinePoints(acc)
	if err != nil {
		return nil, err
	}
	accLine.Color = colorBlue
	accLine.Width = vg.Points(2)
	accPoints.Color = colorBlue
	accPoints.Shape = draw.CircleGlyph{}
	p.Add(accLine, accPoints)
	p.Legend.Add("Training Accuracy", accLine, accPoints)

	lossLine, err := plotter.NewLine(loss)
	if err != nil {
		return nil, err
	}
	lossLine.LineStyle.Color = colorOrange
	lossLine.LineStyle.Width = vg.Points(2)
	p.Add(lossLine)
	p.Legend.Add("Loss", lossLine)

	first, last := acc[0].X, acc[len(acc)-1].X
	if first == last {
		last = first + 1
	}
	meanLine, err := plotter.NewLine(plotter.XYs{{X: first, Y: mean}, {X: last, Y: mean}})
	if err != nil {
		return nil, err
	}
	meanLine.LineStyle.Color = colorRed
	meanLine.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(meanLine)
	p.Legend.Add(fmt.Sprintf("Mean: %.3f", mean), meanLine)

	return encodePNG(p, 7*vg.Inch, 5*vg.Inch)
}

// PerformanceRadar draws the four headline scores on a polar grid.
func PerformanceRadar(m model.Metrics) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Model Performance Radar"
	p.HideAxes()
	p.X.Min, p.X.Max = -1.35, 1.35
	p.Y.Min, p.Y.Max = -1.35, 1.35

	names := []string{"Accuracy", "Precision", "Recall", "F1-Score"}
	values := []float64{m.Accuracy, m.Precision, m.Recall, m.F1}
	angle := func(i int) float64 {
		// Start at the top and go clockwise.
		return math.Pi/2 - 2*math.Pi*float64(i)/float64(len(names))
	}
	point := func(i int, r float64) plotter.XY {
		return plotter.XY{X: r * math.Cos(angle(i)), Y: r * math.Sin(angle(i))}
	}

	gridColor := color.Gray{Y: 0xc0}
	for _, r := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
		ring := make(plotter.XYs, len(names)+1)
		for i := range names {
			ring[i] = point(i, r)
		}
		ring[len(names)] = ring[0]
		line, err := plotter.NewLine(ring)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = gridColor
		p.Add(line)
	}

	tickLabels := plotter.XYLabels{}
	axisLabels := plotter.XYLabels{}
	for i, name := range names {
		spoke, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, point(i, 1)})
		if err != nil {
			return nil, err
		}
		spoke.LineStyle.Color = gridColor
		p.Add(spoke)

		axisLabels.XYs = append(axisLabels.XYs, point(i, 1.18))
		axisLabels.Labels = append(axisLabels.Labels, name)
	}
	for _, r := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
		tickLabels.XYs = append(tickLabels.XYs, plotter.XY{X: 0.03, Y: r})
		tickLabels.Labels = append(tickLabels.Labels, fmt.Sprintf("%.1f", r))
	}

	shape := make(plotter.XYs, len(values))
	for i, v := range values {
		shape[i] = point(i, math.Min(math.Max(v, 0), 1))
	}
	poly, err := plotter.NewPolygon(shape)
	if err != nil {
		return nil, err
	}
	poly.Color = withAlpha(colorBlue, 0x40)
	poly.LineStyle.Color = colorBlue
	poly.LineStyle.Width = vg.Points(2)
	p.Add(poly)

	dots, err := plotter.NewScatter(shape)
	if err != nil {
		return nil, err
	}
	dots.Color = colorBlue
	dots.Shape = draw.CircleGlyph{}
	p.Add(dots)
	p.Legend.Add("Performance", poly)

	for _, l := range []plotter.XYLabels{axisLabels, tickLabels} {
		annotations, err := centeredLabels(l, text.YCenter)
		if err != nil {
			return nil, err
		}
		p.Add(annotations)
	}

	return encodePNG(p, 6*vg.Inch, 6*vg.Inch)
}
