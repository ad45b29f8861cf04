package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/newscheck/internal/model"
)

// TrainingProgress renders optimiser iterations as a progress bar and
// training stages as status lines. It implements classifier.Recorder.
type TrainingProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	max    int
}

// NewTrainingProgress creates a progress display for at most maxIterations
// optimiser iterations.
func NewTrainingProgress(w io.Writer, maxIterations int) *TrainingProgress {
	return &TrainingProgress{writer: w, max: maxIterations}
}

// Stage prints the start of a training stage.
func (p *TrainingProgress) Stage(name string) {
	p.finishBar()
	if _, err := fmt.Fprintln(p.writer, SubtitleStyle.Render("• "+name)); err != nil {
		slog.Warn("Failed to write training stage", "error", err)
	}
}

// RecordIteration advances the bar by one optimiser iteration.
func (p *TrainingProgress) RecordIteration(rec model.IterationRecord) {
	if p.bar == nil {
		p.bar = p.newBar()
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Fitting classifier[reset] loss %.4f acc %.3f", rec.Loss, rec.TrainAccuracy))
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Done closes the bar if one is open.
func (p *TrainingProgress) Done() {
	p.finishBar()
}

func (p *TrainingProgress) finishBar() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	p.bar = nil
}

func (p *TrainingProgress) newBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(p.max,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
