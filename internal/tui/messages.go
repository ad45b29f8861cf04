package tui

import "github.com/Veraticus/newscheck/internal/model"

// checkResultMsg carries a finished prediction back to the update loop.
type checkResultMsg struct {
	err    error
	text   string
	result model.PredictionResult
}
