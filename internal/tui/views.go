package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/model"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("📰 Fake News Checker"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.checking:
		b.WriteString(m.spinner.View() + " Checking...")
	case m.lastError != nil:
		b.WriteString(m.theme.Error.Render("⚠️  " + errorText(m.lastError)))
	case m.last != nil:
		b.WriteString(m.theme.Box.Render(m.renderResult(*m.last)))
	default:
		b.WriteString(m.theme.Muted.Render("Nothing checked yet."))
	}
	b.WriteString("\n")

	if len(m.history) > 1 {
		b.WriteString("\n" + m.theme.Subtitle.Render("Recent") + "\n")
		for _, e := range m.history[1:] {
			fmt.Fprintf(&b, "  %s %s\n", m.verdict(e.result), m.theme.Muted.Render(oneLine(e.excerpt)))
		}
	}

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n" + m.help.View(m.keymap))
	return b.String()
}

func (m Model) renderResult(e entry) string {
	return fmt.Sprintf("%s  confidence %s\nP(fake) %.2f%%  P(real) %.2f%%\n%s",
		m.verdict(e.result),
		m.theme.Bold.Render(fmt.Sprintf("%.2f%%", e.result.Confidence*100)),
		e.result.ProbabilityFake*100,
		e.result.ProbabilityReal*100,
		m.theme.Muted.Render(oneLine(e.excerpt)),
	)
}

func (m Model) verdict(r model.PredictionResult) string {
	if r.IsFake {
		return m.theme.Fake.Render("FAKE")
	}
	return m.theme.Real.Render("REAL")
}

func (m Model) renderStatusBar() string {
	return m.theme.StatusBar.Render(fmt.Sprintf("Checked %d  •  Fake %d  •  Real %d",
		m.checked, m.fake, m.checked-m.fake))
}

func errorText(err error) string {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	if errors.Is(err, common.ErrModelNotLoaded) || errors.Is(err, common.ErrNotTrained) {
		return "model not trained, run 'newscheck train' first"
	}
	return err.Error()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
