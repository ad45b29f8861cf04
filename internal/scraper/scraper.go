// Package scraper fetches web pages and extracts their readable article text.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/Veraticus/newscheck/internal/common"
)

const (
	defaultMaxContentLen = 50000
	defaultTimeout       = 10 * time.Second
	userAgent            = "Mozilla/5.0 (compatible; newscheck/1.0)"
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = fmt.Errorf("invalid URL: %w", common.ErrValidation)
	// ErrNoContent is returned when a page has no extractable text.
	ErrNoContent = fmt.Errorf("page has no readable content: %w", common.ErrValidation)
)

// Article is the readable part of a fetched page.
type Article struct {
	URL     string
	Title   string
	Content string
}

// Text joins title and content the same way training articles are joined.
func (a Article) Text() string {
	return strings.TrimSpace(a.Title + " " + a.Content)
}

// Scraper extracts readable content from web pages.
type Scraper struct {
	httpClient    *http.Client
	retry         common.RetryOptions
	maxContentLen int
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// WithMaxContentLength caps the returned content, in runes.
func WithMaxContentLength(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxContentLen = n
		}
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(opts common.RetryOptions) Option {
	return func(s *Scraper) {
		s.retry = opts
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.httpClient = c
	}
}

// New creates a new content scraper.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		httpClient:    &http.Client{Timeout: defaultTimeout},
		maxContentLen: defaultMaxContentLen,
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches rawURL and extracts its article. Network errors and 5xx
// responses are retried; other failures are returned immediately.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Article, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	var article *Article
	err = common.WithRetry(ctx, func() error {
		a, fetchErr := s.fetch(ctx, parsedURL)
		if fetchErr != nil {
			return fetchErr
		}
		article = a
		return nil
	}, s.retry)
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (s *Scraper) fetch(ctx context.Context, parsedURL *url.URL) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &common.RetryableError{Err: ctx.Err()}
		}
		return nil, &common.RetryableError{Err: fmt.Errorf("fetch URL: %w", err), Retryable: true}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("unexpected status: %d", resp.StatusCode),
			Retryable: resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	parsed, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("parse content: %w", err)}
	}

	content := truncateRunes(strings.TrimSpace(parsed.TextContent), s.maxContentLen)
	title := strings.TrimSpace(parsed.Title)
	if content == "" && title == "" {
		return nil, &common.RetryableError{Err: ErrNoContent}
	}

	return &Article{URL: parsedURL.String(), Title: title, Content: content}, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
