package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/config"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/tui"
)

type App struct {
	ConfigPath string
	JSON       bool
	Verbose    bool

	// Environ and Password are replaced by tests.
	Environ  func() []string
	Password func(prompt string) (string, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{
		Environ:  os.Environ,
		Password: promptPassword,
	})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "taskhub",
		Short:        "Terminal client for the TaskHub task service",
		SilenceUsage: true,
		// main prints the error once.
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskhub

  # Sign in once; the session is shared with later commands
  taskhub login --email jane@example.com

  # Scriptable commands
  taskhub tasks list --category 2
  taskhub tasks add --text "Buy milk" --date 2024-06-01 --category 3
  taskhub export --format csv -o tasks.csv
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (JSON with comments)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print results as JSON")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log debug output to the log file")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSignUpCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newRemindCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	relay := &tui.Relay{}
	s, err := open(cmd, app, relay.Notify)
	if err != nil {
		return err
	}
	defer s.Close()

	applyColorProfile(s.env)
	err = tui.Run(cmd.Context(), tui.Deps{
		Hub:         s.hub,
		Store:       s.store,
		Config:      s.cfg,
		Logger:      s.log,
		AfterLogin:  func(u model.User) { s.saveProfile(u) },
		AfterLogout: func() { s.forget() },
	}, relay)
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// writeOut prints v as JSON under --json, otherwise calls text.
func writeOut(cmd *cobra.Command, app *App, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	if app.JSON || text == nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
