package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/reminder"
	"github.com/sadopc/taskhub/internal/state"
)

// applyColorProfile honors NO_COLOR for the TUI and otherwise follows the
// terminal.
func applyColorProfile(env map[string]string) {
	if strings.TrimSpace(env["NO_COLOR"]) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

// outputProfile is the color profile for w; non-terminals get Ascii.
func outputProfile(w io.Writer, env map[string]string) termenv.Profile {
	if strings.TrimSpace(env["NO_COLOR"]) != "" {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show completion and due tasks",
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

			now := time.Now()
			stats := s.hub.Stats()
			due := reminder.Due(s.hub.Tasks(), now, s.cfg.ReminderWindow)
			var user string
			if p, err := s.store.GetProfile(s.origin); err == nil {
				user = p.Name
			}

			out := struct {
				User    string      `json:"user,omitempty"`
				Stats   state.Stats `json:"stats"`
				Due     []string    `json:"due"`
				BaseURL string      `json:"base_url"`
				Checked time.Time   `json:"checked_at"`
			}{User: user, Stats: stats, Due: describeAll(due, now), BaseURL: s.cfg.BaseURL, Checked: now}

			return writeOut(cmd, app, out, func(w io.Writer) error {
				if user != "" {
					fmt.Fprintf(w, "%s @ %s\n", user, s.cfg.BaseURL)
				}
				fmt.Fprintf(w, "%d/%d complete (%d%%)\n", stats.Completed, stats.Total, stats.Percentage)
				if len(due) == 0 {
					_, err := fmt.Fprintf(w, "Nothing due within %s\n", s.cfg.ReminderWindow)
					return err
				}
				fmt.Fprintf(w, "%s:\n", reminder.Summary(due))
				for _, line := range out.Due {
					fmt.Fprintf(w, "  %s\n", line)
				}
				return nil
			})
		},
	}
}

func describeAll(rs []reminder.Reminder, now time.Time) []string {
	lines := make([]string, 0, len(rs))
	for _, r := range rs {
		lines = append(lines, r.Describe(now))
	}
	return lines
}

func newReportCmd(app *App) *cobra.Command {
	var (
		raw   bool
		width int
		style string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Per-category completion report",
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

			rows := s.hub.StatsByCategory()
			total := state.Summarize(s.hub.Tasks())
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"total": total, "categories": rows}, nil)
			}

			md := reportMarkdown(rows, total)
			w := cmd.OutOrStdout()
			if raw {
				_, err := io.WriteString(w, md)
				return err
			}
			profile := outputProfile(w, s.env)
			if style == "" {
				style = styles.DarkStyle
				if profile == termenv.Ascii {
					style = styles.NoTTYStyle
				}
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithColorProfile(profile),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
			rendered, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			_, err = io.WriteString(w, rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().StringVar(&style, "style", "", "Glamour style: dark, light, notty (default depends on the terminal)")
	return cmd
}

func reportMarkdown(rows []state.CategoryStats, total state.Stats) string {
	var b strings.Builder
	b.WriteString("# Task report\n\n")
	fmt.Fprintf(&b, "**%d** of **%d** tasks complete (%d%%).\n\n", total.Completed, total.Total, total.Percentage)
	if len(rows) == 0 {
		b.WriteString("_No categories yet._\n")
		return b.String()
	}
	b.WriteString("| Category | Done | Total | Complete |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, r := range rows {
		name := r.Category.Name
		if !r.Known {
			name = fmt.Sprintf("%s (deleted, #%d)", orDash(name), r.Category.ID)
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d%% |\n", escapeCell(name), r.Completed, r.Total, r.Percentage)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
