package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Veraticus/newscheck/internal/certs"
	"github.com/Veraticus/newscheck/internal/config"
	"github.com/Veraticus/newscheck/internal/detector"
	"github.com/Veraticus/newscheck/internal/service"
	"github.com/Veraticus/newscheck/internal/testutil"
	"github.com/Veraticus/newscheck/internal/visualize"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, m *detector.Model, cfg config.ServerConfig) *Server {
	t.Helper()
	checker := service.NewChecker(service.CheckerConfig{
		Predictor: detector.NewPredictor(m),
		Validator: service.NewValidator(10, 50000),
		Store:     testutil.SetupTestDB(t),
	})
	s, err := New(Deps{
		Checker: checker,
		Config:  cfg,
		Now:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPredict(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/api/predict", PredictRequest{Text: testutil.FakeText})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[PredictResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, resp.IsFake)
	assert.Equal(t, "FAKE", resp.Label)
	assert.Greater(t, resp.Confidence, 0.5)
	assert.InDelta(t, 1.0, resp.ProbabilityFake+resp.ProbabilityReal, 1e-9)
	assert.Equal(t, testutil.TrainedModel(t).ID, resp.ModelID)

	usage := s.Stats().Summary()
	assert.Equal(t, 1, usage.TotalPredictions)
	assert.Equal(t, 1, usage.FakePredictions)
}

func TestPredict_ValidationErrors(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	tests := []struct {
		body any
		name string
		want string
	}{
		{name: "short", body: PredictRequest{Text: "short"}, want: "text too short"},
		{name: "empty", body: PredictRequest{Text: "   "}, want: "empty text"},
		{name: "too long", body: PredictRequest{Text: strings.Repeat("a ", 30000)}, want: "text too long"},
		{name: "markup only", body: PredictRequest{Text: "<script>alert(1)</script>"}, want: "empty text"},
		{name: "not json", body: nil, want: "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[ErrorResponse](t, rec).Error, tt.want)
		})
	}
	assert.Zero(t, s.Stats().Summary().TotalPredictions)
}

func TestPredict_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{MaxBodyBytes: 64})

	rec := do(t, s, http.MethodPost, "/api/predict", PredictRequest{Text: strings.Repeat("conspiracy ", 20)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestBatchPredict_SkipsShortTexts(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/api/batch-predict", BatchPredictRequest{
		Texts: []string{"ok", testutil.RealText},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchPredictResponse](t, rec)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Results[0].Index)
	assert.Equal(t, "REAL", resp.Results[0].Label)
	assert.Equal(t, BatchSummary{Total: 1, Real: 1}, resp.Summary)
}

func TestBatchPredict_Summary(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/api/batch-predict", BatchPredictRequest{
		Texts: []string{testutil.FakeText, testutil.RealText, "tiny"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BatchPredictResponse](t, rec)
	assert.Equal(t, BatchSummary{Total: 2, Fake: 1, Real: 1, FakePercentage: 50}, resp.Summary)
	assert.Equal(t, 2, s.Stats().Summary().TotalPredictions)
}

func TestBatchPredict_Rejected(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{MaxBatch: 2})

	rec := do(t, s, http.MethodPost, "/api/batch-predict", BatchPredictRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/batch-predict", BatchPredictRequest{
		Texts: []string{testutil.FakeText, testutil.RealText, testutil.FakeText},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics(t *testing.T) {
	m := testutil.TrainedModel(t)
	s := newTestServer(t, m, config.ServerConfig{})

	rec := do(t, s, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[MetricsResponse](t, rec)
	assert.Equal(t, m.Metrics, resp.Metrics)
	assert.Equal(t, m.Metrics.TestSamples, resp.ConfusionMatrix.Total())
	assert.Equal(t, m.Baseline, resp.Baseline)
	assert.Len(t, resp.Classes, 2)
}

func TestVisualizations(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	rec := do(t, s, http.MethodGet, "/api/visualizations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[VisualizationsResponse](t, rec)
	assert.Equal(t, fixedNow, resp.Timestamp)
	require.Len(t, resp.Visualizations, len(visualize.Names))
	for _, name := range visualize.Names {
		png, err := base64.StdEncoding.DecodeString(resp.Visualizations[name])
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), name)
	}

	rec = do(t, s, http.MethodGet, "/api/visualizations/"+visualize.ChartROC, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/api/visualizations/pie_chart", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVisualizations_ClientGoneStillFillsCache(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/visualizations", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.chartsMu.Lock()
	cached := len(s.charts)
	s.chartsMu.Unlock()
	assert.Equal(t, len(visualize.Names), cached)
}

func TestFeatures(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	rec := do(t, s, http.MethodGet, "/api/features", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[FeaturesResponse](t, rec)
	require.NotEmpty(t, resp.Fake)
	require.NotEmpty(t, resp.Real)
	assert.Positive(t, resp.Fake[0].Weight)
	assert.Negative(t, resp.Real[0].Weight)
}

func TestDegradedMode(t *testing.T) {
	s := newTestServer(t, nil, config.ServerConfig{})

	rec := do(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.False(t, health.ModelLoaded)

	for _, tc := range []struct {
		body   any
		method string
		path   string
	}{
		{method: http.MethodPost, path: "/api/predict", body: PredictRequest{Text: testutil.FakeText}},
		{method: http.MethodPost, path: "/api/batch-predict", body: BatchPredictRequest{Texts: []string{testutil.FakeText}}},
		{method: http.MethodGet, path: "/api/metrics"},
		{method: http.MethodGet, path: "/api/visualizations"},
		{method: http.MethodGet, path: "/api/visualizations/roc_curve"},
		{method: http.MethodGet, path: "/api/features"},
	} {
		rec := do(t, s, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, tc.path)
		assert.Equal(t, "model not trained", decode[ErrorResponse](t, rec).Error, tc.path)
	}

	rec = do(t, s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[StatsResponse](t, rec)
	assert.False(t, stats.ModelTrained)
	assert.Nil(t, stats.Metrics)
}

func TestPredictURL_Disabled(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/api/predict-url", PredictURLRequest{URL: "https://example.com"})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})
	do(t, s, http.MethodPost, "/api/predict", PredictRequest{Text: testutil.FakeText})

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `newscheck_predictions_total{channel="api",label="fake"} 1`)
	assert.Contains(t, body, "newscheck_model_loaded 1")
	assert.Contains(t, body, `route="/api/predict"`)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, testutil.TrainedModel(t), config.ServerConfig{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_TLS(t *testing.T) {
	store := certs.NewStore(t.TempDir())
	tlsCfg, err := store.TLSConfig()
	require.NoError(t, err)

	checker := service.NewChecker(service.CheckerConfig{Predictor: detector.NewPredictor(nil)})
	s, err := New(Deps{Checker: checker, TLS: tlsCfg})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	leaf, err := x509.ParseCertificate(tlsCfg.Certificates[0].Certificate[0])
	require.NoError(t, err)
	roots := x509.NewCertPool()
	roots.AddCert(leaf)
	client := &http.Client{Transport: &http.Transport{
		DisableKeepAlives: true,
		TLSClientConfig:   &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12},
	}}

	resp, err := client.Get(fmt.Sprintf("https://%s/api/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	st := NewStats(func() time.Time { return clock })

	empty := st.Summary()
	assert.Zero(t, empty.FakePercentage)
	assert.Equal(t, "0h 0m 0s", empty.UptimeFormatted)

	st.Add(true, 0.9)
	st.Add(false, 0.7)
	st.Add(true, 0.8)
	clock = now.Add(time.Hour + 2*time.Minute + 3*time.Second)

	sum := st.Summary()
	assert.Equal(t, 3, sum.TotalPredictions)
	assert.Equal(t, 2, sum.FakePredictions)
	assert.Equal(t, 1, sum.RealPredictions)
	assert.InDelta(t, 66.666, sum.FakePercentage, 0.01)
	assert.InDelta(t, 0.8, sum.AverageConfidence, 1e-9)
	assert.Equal(t, 3723.0, sum.UptimeSeconds)
	assert.Equal(t, "1h 2m 3s", sum.UptimeFormatted)
}
