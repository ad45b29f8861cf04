// Package tui provides the interactive terminal checker.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/service"
	"github.com/Veraticus/newscheck/internal/tui/themes"
)

// maxHistory is how many past checks are listed under the input.
const maxHistory = 5

// Checker classifies a single text.
type Checker interface {
	Check(ctx context.Context, text string, channel model.PredictionChannel) (model.PredictionResult, error)
}

type entry struct {
	excerpt string
	result  model.PredictionResult
}

// Model holds the TUI state.
type Model struct {
	ctx       context.Context
	checker   Checker
	lastError error
	last      *entry
	theme     themes.Theme
	keymap    KeyMap
	help      help.Model
	spinner   spinner.Model
	input     textarea.Model
	history   []entry
	checked   int
	fake      int
	width     int
	height    int
	checking  bool
	quitting  bool
}

func newModel(ctx context.Context, checker Checker, theme themes.Theme) Model {
	input := textarea.New()
	input.Placeholder = "Paste a headline or article..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(6)
	input.Focus()

	return Model{
		ctx:     ctx,
		checker: checker,
		theme:   theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:   input,
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case m.checking:
			return m, nil
		case key.Matches(msg, m.keymap.Clear):
			m.input.Reset()
			m.lastError = nil
			m.last = nil
			return m, nil
		case key.Matches(msg, m.keymap.Check):
			m.checking = true
			m.lastError = nil
			return m, tea.Batch(m.check(m.input.Value()), m.spinner.Tick)
		}

	case checkResultMsg:
		m.checking = false
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.record(msg.text, msg.result)
		m.input.Reset()
		return m, nil

	case spinner.TickMsg:
		if !m.checking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) check(text string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.checker.Check(m.ctx, text, model.ChannelInteractive)
		return checkResultMsg{text: text, result: result, err: err}
	}
}

func (m *Model) record(text string, result model.PredictionResult) {
	e := entry{excerpt: service.Excerpt(text), result: result}
	m.last = &e
	m.checked++
	if result.IsFake {
		m.fake++
	}
	m.history = append([]entry{e}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}
