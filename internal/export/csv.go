package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/sadopc/taskhub/internal/model"
)

var csvHeader = []string{"ID", "Task", "Date", "Time", "Category", "Category ID", "Complete"}

// WriteCSV writes one row per task. Tasks whose category is not in
// categories keep the name they were stored with, or "Unknown".
func WriteCSV(out io.Writer, tasks []model.Task, categories []model.Category) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	names := categoryNames(categories)
	for _, t := range tasks {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Task,
			t.Date.String(),
			t.Time,
			categoryName(t, names),
			strconv.FormatInt(t.Category.ID, 10),
			strconv.FormatBool(t.IsComplete),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func categoryNames(categories []model.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func categoryName(t model.Task, names map[int64]string) string {
	if n, ok := names[t.Category.ID]; ok {
		return n
	}
	if t.Category.Name != "" {
		return t.Category.Name
	}
	return "Unknown"
}
