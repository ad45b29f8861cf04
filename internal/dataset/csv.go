// Package dataset reads, writes, splits and synthesises labelled article corpora.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/model"
)

// DateLayout is the format of the optional date column.
const DateLayout = "2006-01-02"

// Columns written by WriteCSV, in order.
var Columns = []string{"title", "content", "source", "date", "label"}

var requiredColumns = []string{"title", "content", "label"}

// LoadCSV reads labelled articles from a CSV file with a header row.
// Every failure wraps common.ErrData.
func LoadCSV(path string) ([]model.Article, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrData, err)
	}
	defer func() {
		_ = f.Close()
	}()

	articles, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return articles, nil
}

// ReadCSV parses articles from r. See LoadCSV.
func ReadCSV(r io.Reader) ([]model.Article, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", common.ErrData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", common.ErrData, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", common.ErrData, col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var articles []model.Article
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", common.ErrData, row, err)
		}

		label, err := model.ParseLabel(field(record, "label"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", common.ErrData, row, err)
		}

		article := model.Article{
			Title:   field(record, "title"),
			Content: field(record, "content"),
			Source:  field(record, "source"),
			Label:   label,
		}
		if raw := strings.TrimSpace(field(record, "date")); raw != "" {
			date, err := time.Parse(DateLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: invalid date %q", common.ErrData, row, raw)
			}
			article.Date = date
		}
		articles = append(articles, article)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: no data rows", common.ErrData)
	}
	return articles, nil
}

// WriteCSV writes articles with a header row, creating parent directories.
func WriteCSV(path string, articles []model.Article) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}

	if err := writeCSV(f, articles); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, articles []model.Article) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, a := range articles {
		date := ""
		if !a.Date.IsZero() {
			date = a.Date.Format(DateLayout)
		}
		if err := writer.Write([]string{a.Title, a.Content, a.Source, date, string(a.Label)}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
