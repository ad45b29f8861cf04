package api

import (
	"strings"
	"time"

	"github.com/Veraticus/newscheck/internal/model"
)

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	Text string `json:"text"`
}

// PredictURLRequest is the body of POST /api/predict-url.
type PredictURLRequest struct {
	URL string `json:"url"`
}

// BatchPredictRequest is the body of POST /api/batch-predict.
type BatchPredictRequest struct {
	Texts []string `json:"texts"`
}

// PredictResponse reports one classification. Probabilities are in [0, 1].
type PredictResponse struct {
	Label   string `json:"label"`
	ModelID string `json:"model_id"`
	model.PredictionResult
	Success bool `json:"success"`
}

// PredictURLResponse adds the scraped article to a prediction.
type PredictURLResponse struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	PredictResponse
}

// BatchResult is one accepted entry of a batch.
type BatchResult struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Index      int     `json:"index"`
	Confidence float64 `json:"confidence"`
	IsFake     bool    `json:"is_fake"`
}

// BatchSummary counts the accepted entries of a batch.
type BatchSummary struct {
	Total          int     `json:"total"`
	Fake           int     `json:"fake"`
	Real           int     `json:"real"`
	FakePercentage float64 `json:"fake_percentage"`
}

// BatchPredictResponse is returned by POST /api/batch-predict.
type BatchPredictResponse struct {
	Results []BatchResult `json:"results"`
	Summary BatchSummary  `json:"summary"`
	Success bool          `json:"success"`
}

// MetricsResponse is returned by GET /api/metrics.
type MetricsResponse struct {
	CreatedAt       time.Time                         `json:"created_at"`
	Classes         map[model.Label]model.ClassReport `json:"class_report"`
	ModelID         string                            `json:"model_id"`
	Baseline        model.BaselineMetrics             `json:"baseline"`
	Metrics         model.Metrics                     `json:"metrics"`
	ConfusionMatrix model.ConfusionMatrix             `json:"confusion_matrix"`
	VocabularySize  int                               `json:"vocabulary_size"`
}

// VisualizationsResponse carries every chart as a base64 PNG.
type VisualizationsResponse struct {
	Timestamp      time.Time         `json:"timestamp"`
	Visualizations map[string]string `json:"visualizations"`
}

// FeaturesResponse lists the classifier's strongest terms per label.
type FeaturesResponse struct {
	Fake []model.FeatureWeight `json:"fake"`
	Real []model.FeatureWeight `json:"real"`
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	Timestamp    time.Time      `json:"timestamp"`
	Metrics      *model.Metrics `json:"metrics,omitempty"`
	Usage        StatsSummary   `json:"usage"`
	ModelTrained bool           `json:"model_trained"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	ModelLoaded bool      `json:"model_loaded"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func displayLabel(r model.PredictionResult) string {
	return strings.ToUpper(string(r.Label()))
}
