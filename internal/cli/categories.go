package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Category commands",
	}
	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesRenameCmd(app))
	cmd.AddCommand(newCategoriesDeleteCmd(app))
	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with task counts",
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

			cats := s.hub.Categories()
			counts := map[int64][2]int{}
			for _, row := range s.hub.StatsByCategory() {
				counts[row.Category.ID] = [2]int{row.Total, row.Completed}
			}
			return writeOut(cmd, app, cats, func(out io.Writer) error {
				w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTASKS\tDONE")
				for _, c := range cats {
					n := counts[c.ID]
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", c.ID, c.Name, n[0], n[1])
				}
				return w.Flush()
			})
		},
	}
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, app, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.hub.AddCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeCategory(cmd, app, c, "Added")
		},
	}
}

func newCategoriesRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
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

			c, err := s.hub.RenameCategory(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return writeCategory(cmd, app, c, "Renamed")
		},
	}
}

func newCategoriesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; the service removes its tasks too",
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

			if err := s.hub.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}
			msg := s.hub.Notice(hub.Categories).Current().Text
			return writeOut(cmd, app, map[string]any{"id": id, "msg": msg}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, msg)
				return err
			})
		},
	}
}

func writeCategory(cmd *cobra.Command, app *App, c model.Category, verb string) error {
	return writeOut(cmd, app, c, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s category %d: %s\n", verb, c.ID, c.Name)
		return err
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
