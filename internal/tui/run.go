package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/newscheck/internal/tui/themes"
)

// Option configures Run.
type Option func(*options)

type options struct {
	input    io.Reader
	output   io.Writer
	theme    themes.Theme
	altScreen bool
}

// WithIO runs the program against r and w instead of the terminal.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(o *options) {
		o.input = r
		o.output = w
	}
}

// WithTheme overrides the default theme.
func WithTheme(theme themes.Theme) Option {
	return func(o *options) {
		o.theme = theme
	}
}

// Run starts the interactive checker and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, checker Checker, opts ...Option) error {
	if checker == nil {
		return errors.New("checker is required")
	}

	o := options{theme: themes.Default, altScreen: true}
	for _, opt := range opts {
		opt(&o)
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if o.input != nil {
		progOpts = append(progOpts, tea.WithInput(o.input))
	}
	if o.output != nil {
		progOpts = append(progOpts, tea.WithOutput(o.output))
		o.altScreen = false
	}
	if o.altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(newModel(ctx, checker, o.theme), progOpts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
