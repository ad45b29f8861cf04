package model

import "time"

// TrainingRun is the persisted summary of one training invocation.
type TrainingRun struct {
	CreatedAt        time.Time
	ID               string
	DataPath         string
	ArtifactPath     string
	Metrics          Metrics
	BaselineAccuracy float64
	Duration         time.Duration
}

// PredictionChannel records where a prediction request came from.
type PredictionChannel string

// Prediction channels.
const (
	ChannelAPI         PredictionChannel = "api"
	ChannelBatch       PredictionChannel = "batch"
	ChannelURL         PredictionChannel = "url"
	ChannelCLI         PredictionChannel = "cli"
	ChannelInteractive PredictionChannel = "interactive"
)

// PredictionRecord is a persisted prediction.
type PredictionRecord struct {
	CreatedAt       time.Time
	ModelID         string
	TextHash        string
	Excerpt         string
	Channel         PredictionChannel
	ProbabilityFake float64
	Confidence      float64
	ID              int64
	IsFake          bool
}

// PredictionSummary aggregates persisted predictions.
type PredictionSummary struct {
	Total             int
	Fake              int
	Real              int
	AverageConfidence float64
}
