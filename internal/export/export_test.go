package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/taskhub/internal/model"
)

func sampleData() ([]model.Task, []model.Category) {
	categories := []model.Category{
		{ID: 1, Name: "Home"},
		{ID: 2, Name: "Work"},
	}
	tasks := []model.Task{
		{
			ID:         10,
			Task:       "Buy milk",
			Date:       model.NewDate(2024, 1, 1),
			Time:       "10:00",
			IsComplete: true,
			Category:   model.CategoryRef{ID: 1, Name: "Home"},
		},
		{
			ID:       11,
			Task:     "Write report",
			Date:     model.NewDate(2024, 1, 2),
			Time:     "09:30",
			Category: model.CategoryRef{ID: 2, Name: "Work"},
		},
		{
			ID:       12,
			Task:     "Old errand",
			Date:     model.NewDate(2024, 1, 3),
			Time:     "12:00",
			Category: model.CategoryRef{ID: 9, Name: "Errands"},
		},
	}
	return tasks, categories
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToFileCSV(t *testing.T) {
	tasks, categories := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToFile(path, CSV, tasks, categories); err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	records := readCSV(t, path)

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}
	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	want := []string{"10", "Buy milk", "2024-01-01", "10:00", "Home", "1", "true"}
	for i, v := range want {
		if records[1][i] != v {
			t.Fatalf("row[%d] = %q, want %q", i, records[1][i], v)
		}
	}
	if records[2][6] != "false" {
		t.Fatalf("Complete = %q, want false", records[2][6])
	}
}

func TestCSVUsesCurrentCategoryName(t *testing.T) {
	tasks, categories := sampleData()
	categories[0].Name = "House"

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tasks, categories); err != nil {
		t.Fatal(err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if records[1][4] != "House" {
		t.Fatalf("Category = %q, want House", records[1][4])
	}
}

func TestCSVDanglingCategory(t *testing.T) {
	tasks, categories := sampleData()
	tasks = append(tasks, model.Task{ID: 13, Task: "Orphan", Category: model.CategoryRef{ID: 42}})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tasks, categories); err != nil {
		t.Fatal(err)
	}
	records, _ := csv.NewReader(&buf).ReadAll()
	if records[3][4] != "Errands" {
		t.Fatalf("expected stored name for dangling category, got %q", records[3][4])
	}
	if records[4][4] != "Unknown" {
		t.Fatalf("expected 'Unknown' for nameless category, got %q", records[4][4])
	}
	if records[4][2] != "" {
		t.Fatalf("missing date should export empty, got %q", records[4][2])
	}
}

func TestCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToFile(path, CSV, nil, nil); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestCSVSpecialCharacters(t *testing.T) {
	tasks := []model.Task{{
		ID:       1,
		Task:     `buy "good" bread, and jam`,
		Category: model.CategoryRef{ID: 1, Name: `Home "Main"`},
	}}
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := ToFile(path, CSV, tasks, nil); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][1] != `buy "good" bread, and jam` {
		t.Fatalf("task mangled: %q", records[1][1])
	}
	if records[1][4] != `Home "Main"` {
		t.Fatalf("category mangled: %q", records[1][4])
	}
}

func TestToFileBadPath(t *testing.T) {
	if err := ToFile("/nonexistent/dir/file.csv", CSV, nil, nil); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	os.WriteFile(path, []byte("stale contents that are longer than the export\n\n\n"), 0o644)

	if err := ToFile(path, CSV, nil, nil); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "stale") {
		t.Fatalf("old contents survived: %q", data)
	}
}

// ============================================================
// JSON
// ============================================================

func TestWriteJSON(t *testing.T) {
	tasks, categories := sampleData()
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, tasks, categories, now); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var result jsonExport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.ExportedAt != "2024-01-05T12:00:00Z" {
		t.Fatalf("exported_at = %q", result.ExportedAt)
	}
	if result.Count != 3 || result.Completed != 1 {
		t.Fatalf("count = %d completed = %d, want 3 and 1", result.Count, result.Completed)
	}

	got := result.Tasks[0]
	want := jsonTask{ID: 10, Task: "Buy milk", Date: "2024-01-01", Time: "10:00", Category: "Home", CategoryID: 1, IsComplete: true}
	if got != want {
		t.Fatalf("task = %+v, want %+v", got, want)
	}
	if result.Tasks[2].Category != "Errands" {
		t.Fatalf("dangling category = %q", result.Tasks[2].Category)
	}
}

func TestJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	WriteJSON(&buf, nil, nil, time.Now())
	if !strings.Contains(buf.String(), `"tasks": []`) {
		t.Fatalf("empty export should carry an empty array:\n%s", buf.String())
	}
}

func TestToFileJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	if err := ToFile(path, JSON, nil, nil); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

// ============================================================
// Formats
// ============================================================

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, "JSON": JSON, " json ": JSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC)
	if got := DefaultFilename(JSON, now); got != "taskhub-20240101-150405.json" {
		t.Errorf("DefaultFilename = %q", got)
	}
}
