package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/validate"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app, "done", "Mark a task complete", true))
	cmd.AddCommand(newTasksCompleteCmd(app, "undo", "Mark a task not complete", false))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		category int64
		pending  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.load(cmd.Context()); err != nil {
				return err
			}
			if category != 0 {
				s.hub.SelectCategory(&category)
			}

			stats := s.hub.Stats()
			var tasks []model.Task
			for _, t := range s.hub.Visible() {
				if pending && t.IsComplete {
					continue
				}
				tasks = append(tasks, t)
			}
			if tasks == nil {
				tasks = []model.Task{}
			}

			return writeOut(cmd, app, tasks, func(out io.Writer) error {
				w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDONE\tDATE\tTIME\tCATEGORY\tTASK")
				for _, t := range tasks {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, doneMark(t.IsComplete), orDash(t.Date.String()), orDash(t.Time),
						categoryLabel(s.hub, t.Category), t.Task)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				_, err := fmt.Fprintf(out, "\n%d/%d complete (%d%%)\n", stats.Completed, stats.Total, stats.Percentage)
				return err
			})
		},
	}

	cmd.Flags().Int64Var(&category, "category", 0, "Only tasks in this category id")
	cmd.Flags().BoolVar(&pending, "pending", false, "Hide completed tasks")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var form validate.Task

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.hub.AddTask(cmd.Context(), form)
			if err != nil {
				return err
			}
			return writeTask(cmd, app, t, "Added")
		},
	}

	taskFlags(cmd, &form)
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	var form validate.Task

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.load(cmd.Context()); err != nil {
				return err
			}

			cur, ok := s.hub.Task(id)
			if !ok {
				return fmt.Errorf("task %d: %w", id, hub.ErrNotFound)
			}
			merged := validate.Task{
				Task:       cur.Task,
				Date:       cur.Date.String(),
				Time:       cur.Time,
				CategoryID: cur.Category.ID,
			}
			f := cmd.Flags()
			if f.Changed("text") {
				merged.Task = form.Task
			}
			if f.Changed("date") {
				merged.Date = form.Date
			}
			if f.Changed("time") {
				merged.Time = form.Time
			}
			if f.Changed("category") {
				merged.CategoryID = form.CategoryID
			}

			t, err := s.hub.EditTask(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			return writeTask(cmd, app, t, "Updated")
		},
	}

	taskFlags(cmd, &form)
	return cmd
}

func taskFlags(cmd *cobra.Command, form *validate.Task) {
	cmd.Flags().StringVar(&form.Task, "text", "", "Task description")
	cmd.Flags().StringVar(&form.Date, "date", "", "Date, YYYY-MM-DD")
	cmd.Flags().StringVar(&form.Time, "time", "", "Time of day, HH:MM")
	cmd.Flags().Int64Var(&form.CategoryID, "category", 0, "Category id")
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.hub.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			msg := s.hub.Notice(hub.TaskList).Current().Text
			return writeOut(cmd, app, map[string]any{"id": id, "msg": msg}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, msg)
				return err
			})
		},
	}
}

func newTasksCompleteCmd(app *App, use, short string, complete bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.load(cmd.Context()); err != nil {
				return err
			}

			if err := s.hub.ToggleComplete(cmd.Context(), id, complete); err != nil {
				return err
			}
			t, _ := s.hub.Task(id)
			return writeTask(cmd, app, t, "Updated")
		},
	}
}

func writeTask(cmd *cobra.Command, app *App, t model.Task, verb string) error {
	return writeOut(cmd, app, t, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s task %d: %s %s %s\n", verb, t.ID, doneMark(t.IsComplete), t.Task, schedule(t))
		return err
	})
}

// categoryLabel marks tasks whose category is gone from the board.
func categoryLabel(h *hub.Hub, ref model.CategoryRef) string {
	if _, ok := h.Category(ref.ID); ok || ref.ID == 0 {
		return orDash(ref.Name)
	}
	return orDash(ref.Name) + " (deleted)"
}

func schedule(t model.Task) string {
	if t.Date.IsZero() {
		return ""
	}
	if t.Time == "" {
		return "(" + t.Date.String() + ")"
	}
	return "(" + t.Date.String() + " " + t.Time + ")"
}

func doneMark(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
