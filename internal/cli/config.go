package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write configuration",
		Long: `Configuration is layered, later layers winning: built-in defaults, the
global config file, the --config file, values saved from the TUI settings
view, TASKHUB_* environment variables, then flags.`,
	}
	cmd.AddCommand(newConfigPathCmd(app))
	cmd.AddCommand(newConfigGetCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	cmd.AddCommand(newConfigResetCmd(app))
	return cmd
}

// configFile is the file config set writes to.
func configFile(app *App) string {
	if app.ConfigPath != "" {
		return app.ConfigPath
	}
	return config.GlobalPath(config.EnvMap(app.Environ()))
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), configFile(app))
			return err
		},
	}
}

func newConfigGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print the resolved value of one key, or of all keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 1 {
				v, err := s.cfg.Get(args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]string{args[0]: v}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, v)
					return err
				})
			}
			values := s.cfg.Values()
			return writeOut(cmd, app, values, func(w io.Writer) error {
				for _, k := range config.Keys() {
					if _, err := fmt.Fprintf(w, "%s = %s\n", k, values[k]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a value to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile(app)
			in := config.Input{Env: fileEnv(config.EnvMap(app.Environ()))}
			if _, err := os.Stat(path); err == nil {
				in.ConfigPath = path
			}
			// Only file layers, so env and flag values are not baked in.
			cfg, err := config.Load(in)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			v, _ := cfg.Get(args[0])
			return writeOut(cmd, app, map[string]string{args[0]: v}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s = %s (%s)\n", args[0], v, path)
				return err
			})
		},
	}
}

func newConfigResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <key>",
		Short: "Drop a value saved from the TUI settings view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := (&config.Config{}).Get(args[0]); err != nil {
				return err
			}
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.DeleteSetting(args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"reset": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s reset\n", args[0])
				return err
			})
		},
	}
}

// fileEnv keeps only the variables that locate files.
func fileEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		if !strings.HasPrefix(k, config.EnvPrefix) {
			out[k] = v
		}
	}
	return out
}
