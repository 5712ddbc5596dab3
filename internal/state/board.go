// Package state holds the in-memory category and task collections, the
// category filter and the inline-edit state. Every mutation here is applied
// only after the service has confirmed it, using the values it sent back.
//
// Board is not safe for concurrent use; callers serialize access.
package state

import (
	"math"

	"github.com/sadopc/taskhub/internal/model"
)

type Board struct {
	categories []model.Category
	tasks      []model.Task
	selected   *int64
	edit       EditState
}

func NewBoard() *Board {
	return &Board{edit: Idle{}}
}

// Load replaces both collections, as after the initial fetch.
func (b *Board) Load(categories []model.Category, tasks []model.Task) {
	b.categories = append([]model.Category(nil), categories...)
	b.tasks = append([]model.Task(nil), tasks...)
}

// ============================================================
// Categories
// ============================================================

func (b *Board) Categories() []model.Category {
	return append([]model.Category(nil), b.categories...)
}

func (b *Board) Category(id int64) (model.Category, bool) {
	for _, c := range b.categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

func (b *Board) AddCategory(c model.Category) {
	b.categories = append(b.categories, c)
}

// ReplaceCategory swaps in the renamed category and rewrites the embedded
// name of every task that references it. It returns how many tasks changed
// and false when the category is unknown.
func (b *Board) ReplaceCategory(c model.Category) (int, bool) {
	found := false
	for i := range b.categories {
		if b.categories[i].ID == c.ID {
			b.categories[i] = c
			found = true
		}
	}
	if !found {
		return 0, false
	}
	n := 0
	for i := range b.tasks {
		if b.tasks[i].Category.ID == c.ID {
			b.tasks[i].Category.Name = c.Name
			n++
		}
	}
	return n, true
}

// RemoveCategory drops the category and applies policy to its tasks. It
// returns how many tasks the policy touched.
func (b *Board) RemoveCategory(id int64, policy DanglingPolicy) (int, bool) {
	idx := -1
	for i, c := range b.categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	b.categories = append(b.categories[:idx:idx], b.categories[idx+1:]...)

	if b.selected != nil && *b.selected == id {
		b.selected = nil
	}
	if e, ok := b.edit.(EditingCategory); ok && e.ID == id {
		b.edit = Idle{}
	}

	n := 0
	switch policy {
	case CascadeDelete:
		kept := b.tasks[:0:0]
		for _, t := range b.tasks {
			if t.Category.ID == id {
				n++
				continue
			}
			kept = append(kept, t)
		}
		b.tasks = kept
	case Uncategorize:
		for i := range b.tasks {
			if b.tasks[i].Category.ID == id {
				b.tasks[i].Category = model.CategoryRef{ID: Uncategorized.ID, Name: Uncategorized.Name}
				n++
			}
		}
	}
	return n, true
}

// ============================================================
// Tasks
// ============================================================

func (b *Board) Tasks() []model.Task {
	return append([]model.Task(nil), b.tasks...)
}

func (b *Board) Task(id int64) (model.Task, bool) {
	if i := b.taskIndex(id); i >= 0 {
		return b.tasks[i], true
	}
	return model.Task{}, false
}

func (b *Board) AddTask(t model.Task) {
	b.tasks = append(b.tasks, t)
}

// TaskEdit is the set of mutable fields an edit replaces.
type TaskEdit struct {
	Task     string
	Date     model.Date
	Time     string
	Category model.CategoryRef
}

func (b *Board) ApplyTaskEdit(id int64, e TaskEdit) bool {
	i := b.taskIndex(id)
	if i < 0 {
		return false
	}
	b.tasks[i].Task = e.Task
	b.tasks[i].Date = e.Date
	b.tasks[i].Time = e.Time
	b.tasks[i].Category = e.Category
	return true
}

func (b *Board) SetComplete(id int64, complete bool) bool {
	i := b.taskIndex(id)
	if i < 0 {
		return false
	}
	b.tasks[i].IsComplete = complete
	return true
}

func (b *Board) RemoveTask(id int64) bool {
	i := b.taskIndex(id)
	if i < 0 {
		return false
	}
	b.tasks = append(b.tasks[:i:i], b.tasks[i+1:]...)
	if e, ok := b.edit.(EditingTask); ok && e.ID == id {
		b.edit = Idle{}
	}
	return true
}

func (b *Board) taskIndex(id int64) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// ============================================================
// Filter
// ============================================================

// Select sets the category filter; nil shows every task.
func (b *Board) Select(id *int64) {
	if id == nil {
		b.selected = nil
		return
	}
	v := *id
	b.selected = &v
}

func (b *Board) Selected() *int64 {
	if b.selected == nil {
		return nil
	}
	v := *b.selected
	return &v
}

// Visible returns the tasks passing the current filter.
func (b *Board) Visible() []model.Task {
	return Filter(b.tasks, b.selected)
}

func Filter(tasks []model.Task, selected *int64) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if selected == nil || t.Category.ID == *selected {
			out = append(out, t)
		}
	}
	return out
}

// ============================================================
// Edit state
// ============================================================

func (b *Board) BeginEdit(e EditState) {
	if e == nil {
		e = Idle{}
	}
	b.edit = e
}

func (b *Board) EndEdit() { b.edit = Idle{} }

func (b *Board) Edit() EditState { return b.edit }

// ============================================================
// Aggregation
// ============================================================

type Stats struct {
	Total      int
	Completed  int
	Percentage int
}

// Summarize counts tasks and completion. Percentage is rounded half away
// from zero and is 0 for an empty set.
func Summarize(tasks []model.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsComplete {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Percentage = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	}
	return s
}

// Stats summarizes the visible tasks.
func (b *Board) Stats() Stats {
	return Summarize(b.Visible())
}

type CategoryStats struct {
	Category model.CategoryRef
	Known    bool
	Stats
}

// StatsByCategory returns one row per known category, in store order,
// followed by rows for task category ids the store does not know about.
func (b *Board) StatsByCategory() []CategoryStats {
	rows := make([]CategoryStats, 0, len(b.categories))
	index := make(map[int64]int, len(b.categories))
	for _, c := range b.categories {
		index[c.ID] = len(rows)
		rows = append(rows, CategoryStats{Category: model.CategoryRef{ID: c.ID, Name: c.Name}, Known: true})
	}
	for _, t := range b.tasks {
		i, ok := index[t.Category.ID]
		if !ok {
			i = len(rows)
			index[t.Category.ID] = i
			rows = append(rows, CategoryStats{Category: t.Category})
		}
		rows[i].Total++
		if t.IsComplete {
			rows[i].Completed++
		}
	}
	for i := range rows {
		if rows[i].Total > 0 {
			rows[i].Percentage = int(math.Round(100 * float64(rows[i].Completed) / float64(rows[i].Total)))
		}
	}
	return rows
}
