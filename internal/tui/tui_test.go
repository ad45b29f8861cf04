package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/tui/themes"
)

type stubChecker struct {
	err     error
	texts   []string
	channel model.PredictionChannel
}

func (s *stubChecker) Check(_ context.Context, text string, channel model.PredictionChannel) (model.PredictionResult, error) {
	s.texts = append(s.texts, text)
	s.channel = channel
	if s.err != nil {
		return model.PredictionResult{}, s.err
	}
	if strings.Contains(strings.ToLower(text), "conspiracy") {
		return model.NewPredictionResult(0.9), nil
	}
	return model.NewPredictionResult(0.2), nil
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

// submit presses the check key and feeds the resulting prediction back in.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)
	require.True(t, m.checking)
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if res, ok := c().(checkResultMsg); ok {
			updated, _ = m.Update(res)
			return updated.(Model)
		}
	}
	t.Fatal("no check result produced")
	return m
}

func TestModel_CheckRecordsResult(t *testing.T) {
	checker := &stubChecker{}
	m := newModel(context.Background(), checker, themes.Default)

	m = typeText(t, m, "Secret conspiracy exposed")
	m = submit(t, m)

	assert.False(t, m.checking)
	require.NotNil(t, m.last)
	assert.True(t, m.last.result.IsFake)
	assert.Equal(t, 1, m.checked)
	assert.Equal(t, 1, m.fake)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"Secret conspiracy exposed"}, checker.texts)
	assert.Equal(t, model.ChannelInteractive, checker.channel)

	view := m.View()
	assert.Contains(t, view, "FAKE")
	assert.Contains(t, view, "90.00%")
	assert.Contains(t, view, "Checked 1")
}

func TestModel_HistoryIsCapped(t *testing.T) {
	m := newModel(context.Background(), &stubChecker{}, themes.Default)
	for range maxHistory + 3 {
		m = typeText(t, m, "Markets rally on earnings")
		m = submit(t, m)
	}

	assert.Len(t, m.history, maxHistory)
	assert.Equal(t, maxHistory+3, m.checked)
	assert.Zero(t, m.fake)
}

func TestModel_ErrorsAreShown(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "validation", err: common.NewValidationError("text", "text too short (minimum 10 characters)"), want: "text too short"},
		{name: "no model", err: common.ErrModelNotLoaded, want: "model not trained"},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(context.Background(), &stubChecker{err: tt.err}, themes.Default)
			m = typeText(t, m, "short")
			m = submit(t, m)

			assert.Nil(t, m.last)
			assert.Zero(t, m.checked)
			assert.Equal(t, "short", m.input.Value())
			assert.Contains(t, m.View(), tt.want)
		})
	}
}

func TestModel_KeysWhileChecking(t *testing.T) {
	m := newModel(context.Background(), &stubChecker{}, themes.Default)
	m = typeText(t, m, "Markets rally")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "Markets rally", m.input.Value())

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_ClearAndHelp(t *testing.T) {
	m := newModel(context.Background(), &stubChecker{}, themes.Default)
	m = typeText(t, m, "some text")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)
	assert.Empty(t, m.input.Value())

	assert.False(t, m.help.ShowAll)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyF1})
	m = updated.(Model)
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "clear")
}

func TestRun_RequiresChecker(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil))
}
