// Package export writes the task list as CSV or JSON.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sadopc/taskhub/internal/model"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// Write renders tasks in format to out.
func Write(out io.Writer, format Format, tasks []model.Task, categories []model.Category) error {
	switch format {
	case CSV:
		return WriteCSV(out, tasks, categories)
	case JSON:
		return WriteJSON(out, tasks, categories, time.Now())
	}
	return fmt.Errorf("unknown export format %q", format)
}

// ToFile renders tasks and replaces path atomically, so a failed export
// never leaves a truncated file behind.
func ToFile(path string, format Format, tasks []model.Task, categories []model.Category) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, tasks, categories); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s file: %w", format, err)
	}
	return nil
}

// DefaultFilename is taskhub-20240101-150405.csv for now and CSV.
func DefaultFilename(format Format, now time.Time) string {
	return fmt.Sprintf("taskhub-%s.%s", now.Format("20060102-150405"), format)
}
