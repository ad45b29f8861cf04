// Package checkpoint keeps versioned copies of the model artifact.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/Veraticus/newscheck/internal/detector"
)

const (
	artifactSuffix = ".model.gz"
	metadataSuffix = ".meta.json"

	// maxAutoCheckpoints is how many automatic checkpoints are retained.
	maxAutoCheckpoints = 5
)

// Common errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidTag          = errors.New("invalid checkpoint tag: cannot contain path separators")
)

// Manager handles model checkpoint operations.
type Manager struct {
	now            func() time.Time
	artifactPath   string
	checkpointsDir string
}

// Metadata is stored next to each checkpoint.
type Metadata struct {
	CreatedAt    time.Time `json:"created_at"`
	ModelCreated time.Time `json:"model_created_at"`
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	ModelID      string    `json:"model_id"`
	Checksum     string    `json:"checksum"`
	FileSize     int64     `json:"file_size"`
	Accuracy     float64   `json:"accuracy"`
	IsAuto       bool      `json:"is_auto"`
}

// Info describes a checkpoint for listing.
type Info struct {
	CreatedAt   time.Time
	ID          string
	Description string
	ModelID     string
	FileSize    int64
	Accuracy    float64
	IsAuto      bool
}

// NewManager creates a manager for the artifact at artifactPath. Checkpoints
// are stored in a checkpoints directory beside it.
func NewManager(artifactPath string) (*Manager, error) {
	if strings.TrimSpace(artifactPath) == "" {
		return nil, errors.New("artifact path cannot be empty")
	}

	checkpointsDir := filepath.Join(filepath.Dir(artifactPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		artifactPath:   artifactPath,
		checkpointsDir: checkpointsDir,
		now:            time.Now,
	}, nil
}

// Dir is where checkpoints are written.
func (m *Manager) Dir() string {
	return m.checkpointsDir
}

// Create copies the current artifact into a new checkpoint.
func (m *Manager) Create(ctx context.Context, tag, description string) (*Info, error) {
	return m.create(ctx, tag, description, false)
}

func (m *Manager) create(ctx context.Context, tag, description string, auto bool) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = fmt.Sprintf("checkpoint-%s", m.now().Format("2006-01-02-150405"))
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	checkpointPath := m.artifactFile(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, ErrCheckpointExists
	}

	mdl, err := detector.Load(m.artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read current model: %w", err)
	}

	if err := copyFile(m.artifactPath, checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to copy model: %w", err)
	}

	checksum, size, err := fileChecksum(checkpointPath)
	if err != nil {
		_ = os.Remove(checkpointPath)
		return nil, fmt.Errorf("failed to checksum checkpoint: %w", err)
	}

	metadata := Metadata{
		ID:           tag,
		CreatedAt:    m.now(),
		Description:  description,
		ModelID:      mdl.ID,
		ModelCreated: mdl.CreatedAt,
		Accuracy:     mdl.Metrics.Accuracy,
		Checksum:     checksum,
		FileSize:     size,
		IsAuto:       auto,
	}

	if err := saveMetadata(m.metadataFile(tag), metadata); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	info := metadata.info()
	return &info, nil
}

// List returns all checkpoints, newest first. Unreadable metadata is skipped.
func (m *Manager) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(m.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metadataSuffix) {
			continue
		}
		metadata, err := loadMetadata(filepath.Join(m.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, metadata.info())
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})

	return checkpoints, nil
}

// Get returns information about one checkpoint.
func (m *Manager) Get(_ context.Context, id string) (*Info, error) {
	if err := validateTag(id); err != nil {
		return nil, err
	}
	metadata, err := loadMetadata(m.metadataFile(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	info := metadata.info()
	return &info, nil
}

// Restore replaces the current artifact with a checkpoint after verifying
// that the checkpoint is intact and loads as a model.
func (m *Manager) Restore(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTag(id); err != nil {
		return err
	}

	checkpointPath := m.artifactFile(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	metadata, err := loadMetadata(m.metadataFile(id))
	if err != nil {
		return fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}

	checksum, _, err := fileChecksum(checkpointPath)
	if err != nil || checksum != metadata.Checksum {
		return ErrCheckpointCorrupted
	}
	if _, err := detector.Load(checkpointPath); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointCorrupted, err)
	}

	if err := copyFile(checkpointPath, m.artifactPath); err != nil {
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	slog.Info("Restored model checkpoint", "checkpoint", id, "model_id", metadata.ModelID)
	return nil
}

// Delete removes a checkpoint.
func (m *Manager) Delete(_ context.Context, id string) error {
	if err := validateTag(id); err != nil {
		return err
	}

	checkpointPath := m.artifactFile(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if err := os.Remove(m.metadataFile(id)); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "checkpoint", id)
	}

	return nil
}

// AutoCheckpoint snapshots the current artifact before an operation named by
// prefix. It does nothing when no artifact exists yet. Only the newest
// automatic checkpoints are kept.
func (m *Manager) AutoCheckpoint(ctx context.Context, prefix string) (*Info, error) {
	if _, err := os.Stat(m.artifactPath); os.IsNotExist(err) {
		return nil, nil
	}

	tag := fmt.Sprintf("auto-%s-%s", prefix, m.now().Format("2006-01-02-150405.000"))
	info, err := m.create(ctx, tag, fmt.Sprintf("Automatic checkpoint before %s", prefix), true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := m.cleanupOldAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}

	return info, nil
}

func (m *Manager) cleanupOldAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return err
	}

	autoCount := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount > maxAutoCheckpoints {
			if err := m.Delete(ctx, cp.ID); err != nil {
				slog.Debug("failed to delete old auto-checkpoint during cleanup", "error", err, "checkpoint", cp.ID)
			}
		}
	}
	return nil
}

func (m *Manager) artifactFile(id string) string {
	return filepath.Join(m.checkpointsDir, id+artifactSuffix)
}

func (m *Manager) metadataFile(id string) string {
	return filepath.Join(m.checkpointsDir, id+metadataSuffix)
}

func (md Metadata) info() Info {
	return Info{
		ID:          md.ID,
		CreatedAt:   md.CreatedAt,
		Description: md.Description,
		ModelID:     md.ModelID,
		FileSize:    md.FileSize,
		Accuracy:    md.Accuracy,
		IsAuto:      md.IsAuto,
	}
}

func validateTag(tag string) error {
	if tag == "" || strings.Contains(tag, "/") || strings.Contains(tag, "\\") || strings.Contains(tag, "..") {
		return ErrInvalidTag
	}
	return nil
}

func fileChecksum(path string) (string, int64, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from a validated tag
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	h := xxhash.New64()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return strconv.FormatUint(h.Sum64(), 16), n, nil
}

// copyFile writes dst through a temporary file and an atomic rename.
func copyFile(src, dst string) error {
	source, err := os.Open(src) //nolint:gosec // paths come from configuration and validated tags
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	destination, err := os.Create(tmpDst) //nolint:gosec // see above
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		if rmErr := os.Remove(tmpDst); rmErr != nil {
			slog.Error("failed to remove temporary file after copy error", "error", rmErr)
		}
		return err
	}

	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}

func saveMetadata(path string, metadata Metadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from a validated tag
	if err != nil {
		return nil, err
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}
