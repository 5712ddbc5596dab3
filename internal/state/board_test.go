package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sadopc/taskhub/internal/model"
)

func ptr(v int64) *int64 { return &v }

func task(id int64, text string, cat model.CategoryRef, done bool) model.Task {
	return model.Task{
		ID:         id,
		Task:       text,
		Date:       model.NewDate(2024, 1, 1),
		Time:       "10:00",
		IsComplete: done,
		Category:   cat,
	}
}

var (
	home = model.Category{ID: 1, Name: "Home"}
	work = model.Category{ID: 2, Name: "Work"}
)

func ref(c model.Category) model.CategoryRef { return model.CategoryRef{ID: c.ID, Name: c.Name} }

func seeded() *Board {
	b := NewBoard()
	b.Load(
		[]model.Category{home, work},
		[]model.Task{
			task(10, "Buy milk", ref(home), false),
			task(11, "Write report", ref(work), true),
			task(12, "Fix sink", ref(home), true),
		},
	)
	return b
}

// ============================================================
// Categories
// ============================================================

func TestReplaceCategoryCascadesName(t *testing.T) {
	b := seeded()
	n, ok := b.ReplaceCategory(model.Category{ID: 1, Name: "House"})
	if !ok {
		t.Fatal("ReplaceCategory: unknown category")
	}
	if n != 2 {
		t.Errorf("rewritten = %d, want 2", n)
	}

	want := []model.Task{
		task(10, "Buy milk", model.CategoryRef{ID: 1, Name: "House"}, false),
		task(11, "Write report", ref(work), true),
		task(12, "Fix sink", model.CategoryRef{ID: 1, Name: "House"}, true),
	}
	if diff := cmp.Diff(want, b.Tasks()); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.Category{{ID: 1, Name: "House"}, work}, b.Categories()); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceCategoryKeepsNamesConsistent(t *testing.T) {
	b := seeded()
	b.ReplaceCategory(model.Category{ID: 2, Name: "Office"})

	for _, tk := range b.Tasks() {
		c, ok := b.Category(tk.Category.ID)
		if !ok {
			t.Fatalf("task %d references unknown category %d", tk.ID, tk.Category.ID)
		}
		if tk.Category.Name != c.Name {
			t.Errorf("task %d category name = %q, want %q", tk.ID, tk.Category.Name, c.Name)
		}
	}
}

func TestReplaceUnknownCategory(t *testing.T) {
	b := seeded()
	before := b.Tasks()
	if _, ok := b.ReplaceCategory(model.Category{ID: 99, Name: "X"}); ok {
		t.Fatal("expected unknown category")
	}
	if diff := cmp.Diff(before, b.Tasks()); diff != "" {
		t.Errorf("tasks changed (-want +got):\n%s", diff)
	}
}

func TestRemoveCategoryPolicies(t *testing.T) {
	tests := []struct {
		name    string
		policy  DanglingPolicy
		touched int
		want    []model.Task
	}{
		{
			name:   "keep",
			policy: KeepDangling,
			want: []model.Task{
				task(10, "Buy milk", ref(home), false),
				task(11, "Write report", ref(work), true),
				task(12, "Fix sink", ref(home), true),
			},
		},
		{
			name:    "cascade",
			policy:  CascadeDelete,
			touched: 2,
			want: []model.Task{
				task(11, "Write report", ref(work), true),
			},
		},
		{
			name:    "uncategorize",
			policy:  Uncategorize,
			touched: 2,
			want: []model.Task{
				task(10, "Buy milk", model.CategoryRef{ID: 0, Name: "Uncategorized"}, false),
				task(11, "Write report", ref(work), true),
				task(12, "Fix sink", model.CategoryRef{ID: 0, Name: "Uncategorized"}, true),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := seeded()
			n, ok := b.RemoveCategory(1, tt.policy)
			if !ok {
				t.Fatal("RemoveCategory: unknown category")
			}
			if n != tt.touched {
				t.Errorf("touched = %d, want %d", n, tt.touched)
			}
			if diff := cmp.Diff([]model.Category{work}, b.Categories()); diff != "" {
				t.Errorf("categories mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, b.Tasks()); diff != "" {
				t.Errorf("tasks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveCategoryKeepLeavesDanglingRef(t *testing.T) {
	b := seeded()
	b.RemoveCategory(1, KeepDangling)

	tk, _ := b.Task(10)
	if _, ok := b.Category(tk.Category.ID); ok {
		t.Fatal("expected the task's category to be gone from the store")
	}
	if tk.Category != ref(home) {
		t.Errorf("category ref = %+v, want %+v", tk.Category, ref(home))
	}
}

func TestRemoveCategoryResetsSelectionAndEdit(t *testing.T) {
	b := seeded()
	b.Select(ptr(1))
	b.BeginEdit(EditingCategory{ID: 1})
	b.RemoveCategory(1, KeepDangling)

	if b.Selected() != nil {
		t.Errorf("selected = %d, want nil", *b.Selected())
	}
	if _, ok := b.Edit().(Idle); !ok {
		t.Errorf("edit = %v, want idle", b.Edit())
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	b := seeded()
	cats := b.Categories()
	cats[0].Name = "mutated"
	if c, _ := b.Category(1); c.Name != "Home" {
		t.Errorf("store mutated through returned slice: %q", c.Name)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestAddTaskScenario(t *testing.T) {
	b := NewBoard()
	b.Load([]model.Category{home}, nil)

	added := model.Task{
		ID:       5,
		Task:     "Buy milk",
		Date:     model.NewDate(2024, 1, 1),
		Time:     "10:00",
		Category: model.CategoryRef{ID: 1, Name: "Home"},
	}
	b.AddTask(added)

	if diff := cmp.Diff([]model.Task{added}, b.Tasks()); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyTaskEdit(t *testing.T) {
	b := seeded()
	ok := b.ApplyTaskEdit(10, TaskEdit{
		Task:     "Buy oat milk",
		Date:     model.NewDate(2024, 2, 3),
		Time:     "09:30",
		Category: ref(work),
	})
	if !ok {
		t.Fatal("ApplyTaskEdit: unknown task")
	}
	got, _ := b.Task(10)
	want := model.Task{
		ID:       10,
		Task:     "Buy oat milk",
		Date:     model.NewDate(2024, 2, 3),
		Time:     "09:30",
		Category: ref(work),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
	if b.ApplyTaskEdit(99, TaskEdit{}) {
		t.Error("ApplyTaskEdit on unknown id returned true")
	}
}

func TestSetComplete(t *testing.T) {
	b := seeded()
	if !b.SetComplete(10, true) {
		t.Fatal("SetComplete: unknown task")
	}
	if tk, _ := b.Task(10); !tk.IsComplete {
		t.Error("task 10 not complete")
	}
	if b.SetComplete(99, true) {
		t.Error("SetComplete on unknown id returned true")
	}
}

func TestRemoveTask(t *testing.T) {
	b := seeded()
	b.BeginEdit(EditingTask{ID: 11})
	if !b.RemoveTask(11) {
		t.Fatal("RemoveTask: unknown task")
	}
	if _, ok := b.Task(11); ok {
		t.Error("task 11 still present")
	}
	if len(b.Tasks()) != 2 {
		t.Errorf("len = %d, want 2", len(b.Tasks()))
	}
	if _, ok := b.Edit().(Idle); !ok {
		t.Errorf("edit = %v, want idle", b.Edit())
	}
	if b.RemoveTask(11) {
		t.Error("second RemoveTask returned true")
	}
}

// ============================================================
// Filter
// ============================================================

func TestVisible(t *testing.T) {
	b := seeded()
	if got := len(b.Visible()); got != 3 {
		t.Errorf("unfiltered = %d, want 3", got)
	}

	b.Select(ptr(1))
	ids := func(ts []model.Task) []int64 {
		var out []int64
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}
	if diff := cmp.Diff([]int64{10, 12}, ids(b.Visible())); diff != "" {
		t.Errorf("visible mismatch (-want +got):\n%s", diff)
	}

	b.Select(nil)
	if got := len(b.Visible()); got != 3 {
		t.Errorf("after clearing filter = %d, want 3", got)
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	b := seeded()
	b.Select(ptr(2))
	first := b.Visible()
	b.Select(ptr(2))
	if diff := cmp.Diff(first, b.Visible()); diff != "" {
		t.Errorf("reselect changed visible set (-first +second):\n%s", diff)
	}
}

func TestSelectCopiesID(t *testing.T) {
	b := seeded()
	id := int64(1)
	b.Select(&id)
	id = 2
	if got := *b.Selected(); got != 1 {
		t.Errorf("selected = %d, want 1", got)
	}
}

// ============================================================
// Edit state
// ============================================================

func TestEditIsExclusive(t *testing.T) {
	b := seeded()
	if _, ok := b.Edit().(Idle); !ok {
		t.Fatalf("initial edit = %v, want idle", b.Edit())
	}

	b.BeginEdit(EditingTask{ID: 11})
	b.BeginEdit(EditingTask{ID: 10})
	if diff := cmp.Diff(EditState(EditingTask{ID: 10}), b.Edit()); diff != "" {
		t.Errorf("edit mismatch (-want +got):\n%s", diff)
	}

	b.BeginEdit(EditingCategory{ID: 2})
	if _, ok := b.Edit().(EditingTask); ok {
		t.Error("task edit survived starting a category edit")
	}

	b.EndEdit()
	if _, ok := b.Edit().(Idle); !ok {
		t.Errorf("edit = %v, want idle", b.Edit())
	}

	b.BeginEdit(nil)
	if _, ok := b.Edit().(Idle); !ok {
		t.Errorf("BeginEdit(nil) = %v, want idle", b.Edit())
	}
}

// ============================================================
// Aggregation
// ============================================================

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
		want  Stats
	}{
		{"empty", nil, Stats{}},
		{"none done", []model.Task{task(1, "a", ref(home), false)}, Stats{Total: 1}},
		{"all done", []model.Task{task(1, "a", ref(home), true)}, Stats{Total: 1, Completed: 1, Percentage: 100}},
		{
			"one of three rounds down",
			[]model.Task{task(1, "a", ref(home), true), task(2, "b", ref(home), false), task(3, "c", ref(home), false)},
			Stats{Total: 3, Completed: 1, Percentage: 33},
		},
		{
			"two of three rounds up",
			[]model.Task{task(1, "a", ref(home), true), task(2, "b", ref(home), true), task(3, "c", ref(home), false)},
			Stats{Total: 3, Completed: 2, Percentage: 67},
		},
		{
			"half",
			[]model.Task{task(1, "a", ref(home), true), task(2, "b", ref(home), false)},
			Stats{Total: 2, Completed: 1, Percentage: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.tasks)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
			if got.Percentage < 0 || got.Percentage > 100 {
				t.Errorf("percentage %d out of range", got.Percentage)
			}
		})
	}
}

func TestStatsFollowsFilter(t *testing.T) {
	b := seeded()
	if diff := cmp.Diff(Stats{Total: 3, Completed: 2, Percentage: 67}, b.Stats()); diff != "" {
		t.Errorf("all mismatch (-want +got):\n%s", diff)
	}
	b.Select(ptr(2))
	if diff := cmp.Diff(Stats{Total: 1, Completed: 1, Percentage: 100}, b.Stats()); diff != "" {
		t.Errorf("work mismatch (-want +got):\n%s", diff)
	}
	b.Select(ptr(42))
	if diff := cmp.Diff(Stats{}, b.Stats()); diff != "" {
		t.Errorf("empty filter mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsByCategory(t *testing.T) {
	b := seeded()
	b.AddCategory(model.Category{ID: 3, Name: "Empty"})
	b.RemoveCategory(2, KeepDangling)

	want := []CategoryStats{
		{Category: ref(home), Known: true, Stats: Stats{Total: 2, Completed: 1, Percentage: 50}},
		{Category: model.CategoryRef{ID: 3, Name: "Empty"}, Known: true},
		{Category: ref(work), Stats: Stats{Total: 1, Completed: 1, Percentage: 100}},
	}
	if diff := cmp.Diff(want, b.StatsByCategory()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

// ============================================================
// DanglingPolicy
// ============================================================

func TestParseDanglingPolicy(t *testing.T) {
	for _, p := range []DanglingPolicy{KeepDangling, CascadeDelete, Uncategorize} {
		got, err := ParseDanglingPolicy(p.String())
		if err != nil {
			t.Fatalf("ParseDanglingPolicy(%q): %v", p, err)
		}
		if got != p {
			t.Errorf("ParseDanglingPolicy(%q) = %v", p, got)
		}
	}
	if _, err := ParseDanglingPolicy("purge"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
