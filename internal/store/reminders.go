package store

import (
	"fmt"
	"time"
)

// MarkReminded records that the reminder for taskID at due was shown. It
// reports false when it had already been recorded.
func (s *Store) MarkReminded(taskID int64, due time.Time) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO reminders_sent (task_id, due_at) VALUES (?, ?)`,
		taskID, due.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("mark reminded %d: %w", taskID, err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// PruneReminders drops records sent before cutoff.
func (s *Store) PruneReminders(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM reminders_sent WHERE sent_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune reminders: %w", err)
	}
	return res.RowsAffected()
}
