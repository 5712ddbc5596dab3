package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/taskhub/internal/model"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Completed  int        `json:"completed"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID         int64  `json:"id"`
	Task       string `json:"task"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Category   string `json:"category"`
	CategoryID int64  `json:"category_id"`
	IsComplete bool   `json:"is_complete"`
}

func WriteJSON(out io.Writer, tasks []model.Task, categories []model.Category, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(tasks),
		Tasks:      make([]jsonTask, 0, len(tasks)),
	}

	names := categoryNames(categories)
	for _, t := range tasks {
		if t.IsComplete {
			export.Completed++
		}
		export.Tasks = append(export.Tasks, jsonTask{
			ID:         t.ID,
			Task:       t.Task,
			Date:       t.Date.String(),
			Time:       t.Time,
			Category:   categoryName(t, names),
			CategoryID: t.Category.ID,
			IsComplete: t.IsComplete,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
