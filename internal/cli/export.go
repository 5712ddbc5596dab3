package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/export"
	"github.com/sadopc/taskhub/internal/reminder"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		format   string
		category int64
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks to a CSV or JSON file",
		Example: `  taskhub export --format csv -o tasks.csv
  taskhub export --format json --category 2 -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
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
			if category != 0 {
				s.hub.SelectCategory(&category)
			}
			tasks, cats := s.hub.Visible(), s.hub.Categories()

			if output == "-" {
				return export.Write(cmd.OutOrStdout(), f, tasks, cats)
			}
			if output == "" {
				output = export.DefaultFilename(f, time.Now())
			}
			if err := export.ToFile(output, f, tasks, cats); err != nil {
				return err
			}
			s.log.Info("exported tasks", "path", output, "format", f, "count", len(tasks))
			return writeOut(cmd, app, map[string]any{"path": output, "count": len(tasks)}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Exported %d tasks to %s\n", len(tasks), output)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.CSV), "csv or json")
	cmd.Flags().Int64Var(&category, "category", 0, "Only tasks in this category id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default taskhub-<time>.<format>)")
	return cmd
}

func newRemindCmd(app *App) *cobra.Command {
	var onlyNew bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Print tasks that are overdue or due soon",
		Long: `Print incomplete tasks that are overdue or due within reminder_window.
With --new, reminders already shown by an earlier run or by the TUI are skipped,
which suits a cron job.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.load(cmd.Context()); err != nil {
				return err
			}

			now := time.Now()
			w := reminder.Watcher{
				Tasks:  s.hub.Tasks,
				Window: s.cfg.ReminderWindow,
				Now:    func() time.Time { return now },
				Log:    s.log,
			}
			if onlyNew {
				w.Recorder = s.store
			}
			all, fresh := w.Check()
			shown := all
			if onlyNew {
				shown = fresh
			}

			lines := describeAll(shown, now)
			return writeOut(cmd, app, lines, func(out io.Writer) error {
				for _, l := range lines {
					if _, err := fmt.Fprintln(out, l); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&onlyNew, "new", false, "Only reminders not shown before")
	return cmd
}
