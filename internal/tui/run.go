package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/notice"
	"github.com/sadopc/taskhub/internal/reminder"
)

// Relay forwards hub notices into a running program. The hub is built
// before the program exists, so pass Relay.Notify as hub.Options.OnNotice
// and hand the same Relay to Run.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *Relay) Notify(c hub.Component, m notice.Message) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(noticeMsg{component: c, message: m})
	}
}

func (r *Relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// reminderHistory is how long announced reminders are remembered.
const reminderHistory = 30 * 24 * time.Hour

// Run starts the interface and blocks until the user quits or ctx ends.
func Run(ctx context.Context, d Deps, relay *Relay, opts ...tea.ProgramOption) error {
	app := NewApp(ctx, d)
	log := app.sess.log

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(app, opts...)
	if relay != nil {
		relay.attach(p)
		defer relay.attach(nil)
	}

	if d.Store != nil {
		if n, err := d.Store.PruneReminders(time.Now().Add(-reminderHistory)); err != nil {
			log.Warn("prune reminders", "err", err)
		} else if n > 0 {
			log.Debug("pruned reminders", "count", n)
		}
	}

	if every := d.Config.ReminderInterval; every > 0 {
		sched := reminder.NewScheduler(time.Local)
		sess := app.sess
		if _, err := sched.Every(every, func() {
			if _, ok := sess.hub.User(); !ok {
				return
			}
			p.Send(sess.checkReminders())
		}); err != nil {
			log.Warn("reminders disabled", "err", err)
		} else {
			sched.Start()
			defer sched.Stop()
		}
	}

	log.Info("tui started", "base_url", d.Config.BaseURL)
	_, err := p.Run()
	return err
}
