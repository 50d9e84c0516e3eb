package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budde25/nxcloud/internal/logging"
	"github.com/budde25/nxcloud/internal/remotepath"
)

func newPushCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "push <source> <destination>",
		Short: "Push a file from your local machine to the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, rawDest := args[0], args[1]

			name, err := remotepath.SourceFileName(source)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}

			dest := app.Session.Resolve(rawDest)
			if !dest.IsFile() {
				dest = dest.WithFileName(name)
			}

			t, err := app.transport()
			if err != nil {
				return err
			}
			if err := t.Store(cmd.Context(), dest.String(), data); err != nil {
				return err
			}

			fmt.Fprintf(app.Stdout, "Pushed '%s' to '/%s'\n", source, dest)
			return nil
		},
	}
}

func newPullCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <source> <destination>",
		Short: "Pull a file from the server to your local machine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawSource, rawDest := args[0], args[1]

			if _, err := remotepath.FormatSourcePull(rawSource); err != nil {
				return err
			}
			source := app.Session.Resolve(rawSource)

			dest, err := remotepath.FormatDestinationPull(source.String(), rawDest)
			if err != nil {
				return err
			}
			if _, err := os.Stat(dest); err == nil {
				return fmt.Errorf("destination '%s' already exists", dest)
			}

			t, err := app.transport()
			if err != nil {
				return err
			}
			data, err := t.Fetch(cmd.Context(), source.String())
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("write destination: %w", err)
			}

			fmt.Fprintf(app.Stdout, "Pulled '/%s' to '%s'\n", source, dest)
			return nil
		},
	}
}

func newLsCommand(app *App) *cobra.Command {
	var list, all bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List files and directories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Session.WorkingDir()
			if len(args) == 1 {
				path = app.Session.Resolve(args[0])
			}

			t, err := app.transport()
			if err != nil {
				return err
			}
			entries, err := t.List(cmd.Context(), path.String())
			if err != nil {
				return err
			}

			var names []string
			for _, entry := range entries {
				if !all && strings.HasPrefix(entry.Name, ".") {
					continue
				}
				name := entry.Name
				if !list && strings.Contains(name, " ") {
					name = "'" + name + "'"
				}
				names = append(names, name)
			}

			separator := "  "
			if list {
				separator = "\n"
			}
			fmt.Fprintln(app.Stdout, strings.Join(names, separator))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print one entry per line")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include entries starting with a dot")
	return cmd
}

func newMkdirCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Make a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.transport()
			if err != nil {
				return err
			}
			return t.Mkcol(cmd.Context(), app.Session.Resolve(args[0]).String())
		},
	}
}

var errRootDeletion = errors.New("deleting the root is not supported")

func newRmCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a file or directory",
		Long: "Remove a file or directory. Directories are deleted recursively\n" +
			"with everything in them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Session.Resolve(args[0])
			if path.IsRoot() {
				return errRootDeletion
			}

			if !force {
				logging.Warn("directories are deleted recursively, including all their contents")
				ok, err := app.confirm(fmt.Sprintf("Are you sure you want to delete '/%s'?", path))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			t, err := app.transport()
			if err != nil {
				return err
			}
			return t.Delete(cmd.Context(), path.String())
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")
	return cmd
}
