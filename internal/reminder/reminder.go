// Package reminder finds incomplete tasks that are due soon or overdue and
// runs that check on a cron schedule.
package reminder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/taskhub/internal/model"
)

type Status int

const (
	Upcoming Status = iota
	Overdue
)

type Reminder struct {
	Task   model.Task
	Due    time.Time
	Status Status
}

// Due returns the incomplete tasks whose due time is already past or falls
// within window of now, earliest first. Tasks without a date are skipped.
func Due(tasks []model.Task, now time.Time, window time.Duration) []Reminder {
	var out []Reminder
	limit := now.Add(window)
	for _, t := range tasks {
		if t.IsComplete {
			continue
		}
		due, ok := t.Due(now.Location())
		if !ok || due.After(limit) {
			continue
		}
		r := Reminder{Task: t, Due: due, Status: Upcoming}
		if due.Before(now) {
			r.Status = Overdue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Due.Equal(out[j].Due) {
			return out[i].Task.ID < out[j].Task.ID
		}
		return out[i].Due.Before(out[j].Due)
	})
	return out
}

// Describe renders one reminder relative to now, e.g.
// "Buy milk (Home) due in 20m" or "Pay rent (Home) overdue by 2h".
func (r Reminder) Describe(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(r.Task.Task))
	if name := strings.TrimSpace(r.Task.Category.Name); name != "" {
		fmt.Fprintf(&sb, " (%s)", name)
	}
	switch r.Status {
	case Overdue:
		fmt.Fprintf(&sb, " overdue by %s", humanize(now.Sub(r.Due)))
	default:
		d := r.Due.Sub(now)
		if d < time.Minute {
			sb.WriteString(" due now")
		} else {
			fmt.Fprintf(&sb, " due in %s", humanize(d))
		}
	}
	return sb.String()
}

// Summary is the one-line status shown in the TUI.
func Summary(rs []Reminder) string {
	if len(rs) == 0 {
		return ""
	}
	overdue := 0
	for _, r := range rs {
		if r.Status == Overdue {
			overdue++
		}
	}
	soon := len(rs) - overdue
	switch {
	case overdue == 0:
		return fmt.Sprintf("%d due soon", soon)
	case soon == 0:
		return fmt.Sprintf("%d overdue", overdue)
	}
	return fmt.Sprintf("%d overdue, %d due soon", overdue, soon)
}

func humanize(d time.Duration) string {
	d = d.Round(time.Minute)
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dd", int(d.Hours())/24)
}
