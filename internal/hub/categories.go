package hub

import (
	"context"
	"strings"

	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/validate"
)

// AddCategory creates a category and appends the service's copy. The
// add-category input is cleared whatever the outcome.
func (h *Hub) AddCategory(ctx context.Context, name string) (model.Category, error) {
	defer h.SetCategoryInput("")

	name = strings.TrimSpace(name)
	if err := validate.CategoryName(name); err != nil {
		return model.Category{}, h.report(Categories, "add category", err)
	}
	res, err := h.svc.CreateCategory(ctx, name)
	if err != nil {
		return model.Category{}, h.report(Categories, "add category", err)
	}

	h.mu.Lock()
	h.board.AddCategory(res.Category)
	h.mu.Unlock()

	h.notices[Categories].Success("Category added successfully")
	return res.Category, nil
}

// RenameCategory renames id and rewrites the category name embedded in every
// task that references it. An empty name is rejected without a request.
func (h *Hub) RenameCategory(ctx context.Context, id int64, newName string) (model.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.Category{}, h.report(Categories, "rename category", validate.ErrEmptyCategoryName)
	}
	res, err := h.svc.RenameCategory(ctx, id, newName)
	if err != nil {
		return model.Category{}, h.report(Categories, "rename category", err)
	}
	c := res.Category
	if c.ID == 0 {
		c.ID = id
	}

	h.mu.Lock()
	_, known := h.board.ReplaceCategory(c)
	h.board.EndEdit()
	h.mu.Unlock()

	if !known {
		h.log.Warn("renamed category was not on the board", "id", id)
	}

	h.notices[Categories].Success(orDefault(res.Msg, "Category updated successfully"))
	return c, nil
}

// DeleteCategory removes id once the service confirms. Tasks still pointing
// at it are handled by the hub's dangling policy.
func (h *Hub) DeleteCategory(ctx context.Context, id int64) error {
	msg, err := h.svc.DeleteCategory(ctx, id)
	if err != nil {
		return h.report(Categories, "delete category", err)
	}

	h.mu.Lock()
	policy := h.policy
	_, known := h.board.RemoveCategory(id, policy)
	h.mu.Unlock()

	if !known {
		h.log.Warn("deleted category was not on the board", "id", id)
	}
	h.notices[Categories].Success(orDefault(msg, "Category deleted successfully"))
	return nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
