package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/service"
	"github.com/Veraticus/newscheck/internal/visualize"
)

func (s *Server) predict(c *gin.Context) {
	var req PredictRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.checker.Check(c.Request.Context(), req.Text, model.ChannelAPI)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.observe(result, model.ChannelAPI)

	c.JSON(http.StatusOK, s.predictResponse(result))
}

func (s *Server) predictURL(c *gin.Context) {
	var req PredictURLRequest
	if !s.bind(c, &req) {
		return
	}

	article, result, err := s.checker.CheckURL(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.observe(result, model.ChannelURL)

	c.JSON(http.StatusOK, PredictURLResponse{
		URL:             article.URL,
		Title:           article.Title,
		PredictResponse: s.predictResponse(result),
	})
}

func (s *Server) batchPredict(c *gin.Context) {
	var req BatchPredictRequest
	if !s.bind(c, &req) {
		return
	}
	if len(req.Texts) == 0 {
		s.fail(c, common.NewValidationError("texts", "no texts provided"))
		return
	}
	if len(req.Texts) > s.cfg.MaxBatch {
		s.fail(c, common.NewValidationError("texts", "too many texts in one batch"))
		return
	}

	items, err := s.checker.CheckBatch(c.Request.Context(), req.Texts, model.ChannelBatch)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := BatchPredictResponse{Success: true, Results: make([]BatchResult, 0, len(items))}
	for _, item := range items {
		s.observe(item.Result, model.ChannelBatch)
		resp.Results = append(resp.Results, BatchResult{
			Index:      item.Index,
			Text:       service.Excerpt(item.Text),
			IsFake:     item.Result.IsFake,
			Confidence: item.Result.Confidence,
			Label:      displayLabel(item.Result),
		})
		if item.Result.IsFake {
			resp.Summary.Fake++
		}
	}
	resp.Summary.Total = len(resp.Results)
	resp.Summary.Real = resp.Summary.Total - resp.Summary.Fake
	if resp.Summary.Total > 0 {
		resp.Summary.FakePercentage = float64(resp.Summary.Fake) / float64(resp.Summary.Total) * 100
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) metrics(c *gin.Context) {
	m := s.checker.Model()
	if m == nil {
		s.fail(c, common.ErrNotTrained)
		return
	}

	c.JSON(http.StatusOK, MetricsResponse{
		ModelID:         m.ID,
		CreatedAt:       m.CreatedAt,
		Metrics:         m.Metrics,
		ConfusionMatrix: m.Confusion,
		Classes:         m.Classes,
		Baseline:        m.Baseline,
		VocabularySize:  m.VocabularySize(),
	})
}

func (s *Server) visualizations(c *gin.Context) {
	// The render fills the shared cache, so a client hanging up must not cancel it.
	charts, err := s.renderAll(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := VisualizationsResponse{
		Timestamp:      s.now(),
		Visualizations: make(map[string]string, len(charts)),
	}
	for name, png := range charts {
		resp.Visualizations[name] = base64.StdEncoding.EncodeToString(png)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) visualization(c *gin.Context) {
	png, err := s.renderOne(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) features(c *gin.Context) {
	m := s.checker.Model()
	if m == nil {
		s.fail(c, common.ErrNotTrained)
		return
	}
	fakeTerms, realTerms, err := m.TopFeatures(visualize.DefaultTopFeatures)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FeaturesResponse{Fake: fakeTerms, Real: realTerms})
}

func (s *Server) statsHandler(c *gin.Context) {
	resp := StatsResponse{
		Timestamp:    s.now(),
		ModelTrained: s.checker.Loaded(),
		Usage:        s.stats.Summary(),
	}
	if m := s.checker.Model(); m != nil {
		metrics := m.Metrics
		resp.Metrics = &metrics
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		ModelLoaded: s.checker.Loaded(),
		Timestamp:   s.now(),
	})
}

// bind decodes the JSON body into req, writing the error response on failure.
func (s *Server) bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		s.fail(c, err)
	} else {
		s.fail(c, common.NewValidationError("body", "invalid JSON body"))
	}
	return false
}

func (s *Server) predictResponse(result model.PredictionResult) PredictResponse {
	return PredictResponse{
		Success:          true,
		Label:            displayLabel(result),
		ModelID:          s.checker.Model().ID,
		PredictionResult: result,
	}
}

func (s *Server) observe(result model.PredictionResult, channel model.PredictionChannel) {
	s.stats.Add(result.IsFake, result.Confidence)
	s.instruments.observePrediction(result, channel)
}

// fail writes err as a JSON error with a status derived from its kind.
func (s *Server) fail(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "internal server error"

	var validationErr *common.ValidationError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusBadRequest, validationErr.Reason
	case errors.As(err, &maxBytesErr):
		status, message = http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, common.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrNotTrained), errors.Is(err, common.ErrModelNotLoaded):
		status, message = http.StatusServiceUnavailable, "model not trained"
	case errors.Is(err, visualize.ErrUnknownChart):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrFetchDisabled):
		status, message = http.StatusNotImplemented, err.Error()
	case c.FullPath() == "/api/predict-url":
		status, message = http.StatusBadGateway, "failed to fetch article: "+err.Error()
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("Request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
