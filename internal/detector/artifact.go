package detector

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/newscheck/internal/classifier"
	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/metrics"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/vectorize"
)

// artifactVersion is bumped whenever the on-disk layout changes.
const artifactVersion = 1

// ErrArtifactNotFound means no model has been saved at the path yet.
var ErrArtifactNotFound = fmt.Errorf("model artifact not found: %w", common.ErrNotTrained)

type artifact struct {
	CreatedAt  time.Time                         `json:"created_at"`
	Classes    map[model.Label]model.ClassReport `json:"classes"`
	ID         string                            `json:"id"`
	Baseline   model.BaselineMetrics             `json:"baseline"`
	Vectorizer vectorize.State                   `json:"vectorizer"`
	Classifier classifier.State                  `json:"classifier"`
	Evaluation model.Evaluation                  `json:"evaluation"`
	ROC        metrics.Curve                     `json:"roc"`
	History    []model.IterationRecord           `json:"history"`
	Metrics    model.Metrics                     `json:"metrics"`
	Version    int                               `json:"version"`
	Confusion  model.ConfusionMatrix             `json:"confusion_matrix"`
}

// Save writes m to path as gzip-compressed JSON. The file is written to a
// temporary name in the same directory and renamed into place.
func Save(path string, m *Model) error {
	if m == nil {
		return common.ErrModelNotLoaded
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if err := Encode(tmp, m); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode writes the compressed artifact for m to w.
func Encode(w io.Writer, m *Model) error {
	a := artifact{
		Version:    artifactVersion,
		ID:         m.ID,
		CreatedAt:  m.CreatedAt,
		Vectorizer: m.vectorizer.State(),
		Classifier: m.classifier.State(),
		Metrics:    m.Metrics,
		Confusion:  m.Confusion,
		Classes:    m.Classes,
		ROC:        m.ROC,
		Evaluation: m.Evaluation,
		History:    m.History,
		Baseline:   m.Baseline,
	}

	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(a); err != nil {
		_ = gz.Close()
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress model: %w", err)
	}
	return nil
}

// Decode reads an artifact produced by Encode.
func Decode(r io.Reader) (*Model, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("corrupt model artifact: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	var a artifact
	if err := json.NewDecoder(gz).Decode(&a); err != nil {
		return nil, fmt.Errorf("corrupt model artifact: %w", err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported model artifact version %d", a.Version)
	}

	vec, err := vectorize.FromState(a.Vectorizer)
	if err != nil {
		return nil, err
	}
	lr, err := classifier.FromState(a.Classifier)
	if err != nil {
		return nil, err
	}
	if vec.Dim() != len(a.Classifier.Weights) {
		return nil, fmt.Errorf("model artifact has %d terms but %d weights", vec.Dim(), len(a.Classifier.Weights))
	}

	return &Model{
		CreatedAt:  a.CreatedAt,
		ID:         a.ID,
		vectorizer: vec,
		classifier: lr,
		Metrics:    a.Metrics,
		Confusion:  a.Confusion,
		Classes:    a.Classes,
		ROC:        a.ROC,
		Evaluation: a.Evaluation,
		History:    a.History,
		Baseline:   a.Baseline,
	}, nil
}
