package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/newscheck/internal/detector"
	"github.com/Veraticus/newscheck/internal/model"
)

// FormatPrediction renders a verdict with its probabilities.
func FormatPrediction(r model.PredictionResult) string {
	verdict := RealVerdictStyle.Render("REAL NEWS " + SuccessIcon)
	if r.IsFake {
		verdict = FakeVerdictStyle.Render("FAKE NEWS " + WarningIcon)
	}
	return fmt.Sprintf("%s  confidence %s\n  P(fake) %.2f%%  P(real) %.2f%%",
		verdict,
		BoldStyle.Render(fmt.Sprintf("%.2f%%", r.Confidence*100)),
		r.ProbabilityFake*100,
		r.ProbabilityReal*100,
	)
}

// RenderModelReport renders a trained model's held-out evaluation.
func RenderModelReport(m *detector.Model) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Model:      %s\n", InfoStyle.Render(m.ID))
	fmt.Fprintf(&b, "Trained:    %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Vocabulary: %d terms\n", m.VocabularySize())
	fmt.Fprintf(&b, "Samples:    %d train / %d test\n\n", m.Metrics.TrainingSamples, m.Metrics.TestSamples)

	for _, row := range []struct {
		name  string
		value float64
	}{
		{"Accuracy", m.Metrics.Accuracy},
		{"Precision", m.Metrics.Precision},
		{"Recall", m.Metrics.Recall},
		{"F1 score", m.Metrics.F1},
		{"ROC AUC", m.Metrics.AUC},
	} {
		fmt.Fprintf(&b, "  %-10s %s\n", row.name, BoldStyle.Render(fmt.Sprintf("%.4f", row.value)))
	}
	if m.Baseline.Name != "" {
		fmt.Fprintf(&b, "  %-10s %.4f %s\n", "Baseline", m.Baseline.Accuracy, SubtitleStyle.Render("("+m.Baseline.Name+")"))
	}

	cm := m.Confusion
	b.WriteString("\nConfusion matrix (rows actual, columns predicted)\n")
	fmt.Fprintf(&b, "  %-6s %6s %6s\n", "", "real", "fake")
	fmt.Fprintf(&b, "  %-6s %6d %6d\n", "real", cm.TrueNegatives(), cm.FalsePositives())
	fmt.Fprintf(&b, "  %-6s %6d %6d", "fake", cm.FalseNegatives(), cm.TruePositives())

	return RenderBox(ChartIcon+" Model Performance", b.String())
}
