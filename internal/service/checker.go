package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/newscheck/internal/cache"
	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/detector"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/scraper"
)

// ExcerptLength is how many runes of a text are kept with a stored prediction.
const ExcerptLength = 100

// ErrFetchDisabled is returned by CheckURL when no fetcher is configured.
var ErrFetchDisabled = errors.New("article fetching is not configured")

// CheckerConfig wires a Checker. Only Predictor and Validator are required.
type CheckerConfig struct {
	Predictor *detector.Predictor
	Validator *Validator
	Cache     cache.Cache
	Store     PredictionStore
	Fetcher   ArticleFetcher
	Logger    *slog.Logger
	Now       func() time.Time
}

// Checker validates text, classifies it and records the outcome.
// Cache and storage failures are logged and never fail a prediction.
type Checker struct {
	predictor *detector.Predictor
	validator *Validator
	cache     cache.Cache
	store     PredictionStore
	fetcher   ArticleFetcher
	logger    *slog.Logger
	now       func() time.Time
}

// BatchItem is one accepted entry of a batch.
type BatchItem struct {
	Text   string
	Result model.PredictionResult
	Index  int
}

// NewChecker creates a Checker from cfg.
func NewChecker(cfg CheckerConfig) *Checker {
	c := &Checker{
		predictor: cfg.Predictor,
		validator: cfg.Validator,
		cache:     cfg.Cache,
		store:     cfg.Store,
		fetcher:   cfg.Fetcher,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if c.validator == nil {
		c.validator = NewValidator(DefaultMinLength, DefaultMaxLength)
	}
	if c.cache == nil {
		c.cache = cache.Noop{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Loaded reports whether a model is available.
func (c *Checker) Loaded() bool {
	return c.predictor.Loaded()
}

// Model returns the loaded model, or nil in degraded mode.
func (c *Checker) Model() *detector.Model {
	return c.predictor.Model()
}

// Validator returns the input validator.
func (c *Checker) Validator() *Validator {
	return c.validator
}

// Check validates and classifies a single text.
func (c *Checker) Check(ctx context.Context, text string, channel model.PredictionChannel) (model.PredictionResult, error) {
	if !c.Loaded() {
		return model.PredictionResult{}, common.ErrModelNotLoaded
	}
	clean, err := c.validator.Clean(text)
	if err != nil {
		return model.PredictionResult{}, err
	}
	return c.classify(ctx, clean, channel)
}

// CheckBatch classifies every text that passes validation, skipping the rest.
// Results keep the input order; Index refers to the position in texts.
func (c *Checker) CheckBatch(ctx context.Context, texts []string, channel model.PredictionChannel) ([]BatchItem, error) {
	if !c.Loaded() {
		return nil, common.ErrModelNotLoaded
	}

	items := make([]BatchItem, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clean, err := c.validator.Clean(text)
		if err != nil {
			c.logger.Debug("Skipping batch entry", "index", i, "reason", err)
			continue
		}
		result, err := c.classify(ctx, clean, channel)
		if err != nil {
			return nil, fmt.Errorf("batch entry %d: %w", i, err)
		}
		items = append(items, BatchItem{Index: i, Text: clean, Result: result})
	}
	return items, nil
}

// CheckURL fetches the article at url and classifies its readable text.
func (c *Checker) CheckURL(ctx context.Context, url string) (*scraper.Article, model.PredictionResult, error) {
	if !c.Loaded() {
		return nil, model.PredictionResult{}, common.ErrModelNotLoaded
	}
	if c.fetcher == nil {
		return nil, model.PredictionResult{}, ErrFetchDisabled
	}

	article, err := c.fetcher.Scrape(ctx, url)
	if err != nil {
		return nil, model.PredictionResult{}, err
	}
	result, err := c.Check(ctx, article.Text(), model.ChannelURL)
	if err != nil {
		return article, model.PredictionResult{}, err
	}
	return article, result, nil
}

func (c *Checker) classify(ctx context.Context, text string, channel model.PredictionChannel) (model.PredictionResult, error) {
	m := c.predictor.Model()

	result, hit, err := c.cache.Get(ctx, m.ID, text)
	if err != nil {
		c.logger.Warn("Prediction cache lookup failed", "error", err)
	}
	if !hit {
		result, err = c.predictor.Predict(text)
		if err != nil {
			return model.PredictionResult{}, err
		}
		if err := c.cache.Set(ctx, m.ID, text, result); err != nil {
			c.logger.Warn("Prediction cache store failed", "error", err)
		}
	}

	c.record(ctx, m.ID, text, result, channel)
	return result, nil
}

func (c *Checker) record(ctx context.Context, modelID, text string, result model.PredictionResult, channel model.PredictionChannel) {
	if c.store == nil {
		return
	}
	rec := &model.PredictionRecord{
		CreatedAt:       c.now(),
		ModelID:         modelID,
		TextHash:        cache.TextHash(text),
		Excerpt:         Excerpt(text),
		Channel:         channel,
		ProbabilityFake: result.ProbabilityFake,
		Confidence:      result.Confidence,
		IsFake:          result.IsFake,
	}
	if err := c.store.SavePrediction(ctx, rec); err != nil {
		c.logger.Warn("Failed to record prediction", "error", err, "channel", channel)
	}
}

// Excerpt returns at most ExcerptLength runes of text.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return string(runes[:ExcerptLength])
}
