package reminder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sadopc/taskhub/internal/model"
)

// Scheduler wraps a cron runner for the periodic due-task check.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Every registers job to run at a fixed interval, rounded to whole seconds.
func (s *Scheduler) Every(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Recorder remembers which reminders were already announced.
// *store.Store satisfies it.
type Recorder interface {
	MarkReminded(taskID int64, due time.Time) (bool, error)
}

// Watcher computes reminders from a task source.
type Watcher struct {
	Tasks    func() []model.Task
	Window   time.Duration
	Recorder Recorder // optional
	Now      func() time.Time
	Log      *slog.Logger
}

// Check returns every current reminder and, of those, the ones not
// announced before. Without a Recorder every reminder is fresh.
func (w *Watcher) Check() (all, fresh []Reminder) {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	all = Due(w.Tasks(), now, w.Window)
	for _, r := range all {
		if w.Recorder == nil {
			fresh = append(fresh, r)
			continue
		}
		isNew, err := w.Recorder.MarkReminded(r.Task.ID, r.Due)
		if err != nil {
			if w.Log != nil {
				w.Log.Error("record reminder", "task", r.Task.ID, "err", err)
			}
			continue
		}
		if isNew {
			fresh = append(fresh, r)
		}
	}
	return all, fresh
}
