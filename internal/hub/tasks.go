package hub

import (
	"context"
	"fmt"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/state"
	"github.com/sadopc/taskhub/internal/validate"
)

// AddTask creates a task and appends the service's copy, nested category
// included. The add-task draft is cleared on success only.
func (h *Hub) AddTask(ctx context.Context, form validate.Task) (model.Task, error) {
	form = form.Normalized()
	if err := form.Validate(); err != nil {
		return model.Task{}, h.report(AddTask, "add task", err)
	}
	t, err := h.svc.CreateTask(ctx, api.NewTask{
		Task:       form.Task,
		Date:       form.Date,
		Time:       form.Time,
		CategoryID: form.CategoryID,
	})
	if err != nil {
		return model.Task{}, h.report(AddTask, "add task", err)
	}

	h.mu.Lock()
	h.board.AddTask(t)
	h.taskDraft = validate.Task{}
	h.mu.Unlock()

	h.notices[AddTask].Success("Task added successfully")
	return t, nil
}

// EditTask replaces the task's text, schedule and category with what the
// service returns and closes the inline editor.
func (h *Hub) EditTask(ctx context.Context, id int64, form validate.Task) (model.Task, error) {
	if _, ok := h.Task(id); !ok {
		return model.Task{}, h.report(TaskList, "edit task", fmt.Errorf("task %d: %w", id, ErrNotFound))
	}
	form = form.Normalized()
	if err := form.Validate(); err != nil {
		return model.Task{}, h.report(TaskList, "edit task", err)
	}
	res, err := h.svc.UpdateTask(ctx, id, api.TaskPatch{
		Task:       form.Task,
		Date:       form.Date,
		Time:       form.Time,
		CategoryID: form.CategoryID,
	})
	if err != nil {
		return model.Task{}, h.report(TaskList, "edit task", err)
	}

	h.mu.Lock()
	edit := state.TaskEdit{
		Task:     res.Task,
		Date:     res.Date,
		Time:     res.Time,
		Category: h.categoryRefLocked(res, form.CategoryID),
	}
	ok := h.board.ApplyTaskEdit(id, edit)
	h.board.EndEdit()
	t, _ := h.board.Task(id)
	h.mu.Unlock()

	if !ok {
		// Deleted locally while the request was in flight.
		return model.Task{}, h.report(TaskList, "edit task", fmt.Errorf("task %d: %w", id, ErrNotFound))
	}
	h.notices[TaskList].Success("Task updated successfully")
	return t, nil
}

// categoryRefLocked rebuilds the nested category from an update answer. The
// service sends a null name when the category no longer exists; the board's
// copy is used then.
func (h *Hub) categoryRefLocked(res api.TaskPatchResult, fallbackID int64) model.CategoryRef {
	ref := model.CategoryRef{ID: res.CategoryID}
	if ref.ID == 0 {
		ref.ID = fallbackID
	}
	if res.CategoryName != nil {
		ref.Name = *res.CategoryName
		return ref
	}
	if c, ok := h.board.Category(ref.ID); ok {
		ref.Name = c.Name
	}
	return ref
}

// ToggleComplete sends only the completion flag. On failure the local flag
// is left as it was.
func (h *Hub) ToggleComplete(ctx context.Context, id int64, complete bool) error {
	if _, ok := h.Task(id); !ok {
		return h.report(TaskList, "toggle task", fmt.Errorf("task %d: %w", id, ErrNotFound))
	}
	res, err := h.svc.SetTaskComplete(ctx, id, complete)
	if err != nil {
		return h.report(TaskList, "toggle task", err)
	}

	h.mu.Lock()
	h.board.SetComplete(id, res.IsComplete)
	h.mu.Unlock()
	return nil
}

func (h *Hub) DeleteTask(ctx context.Context, id int64) error {
	msg, err := h.svc.DeleteTask(ctx, id)
	if err != nil {
		return h.report(TaskList, "delete task", err)
	}

	h.mu.Lock()
	h.board.RemoveTask(id)
	h.mu.Unlock()

	h.notices[TaskList].Success(orDefault(msg, fmt.Sprintf("Successfully deleted task %d", id)))
	return nil
}
