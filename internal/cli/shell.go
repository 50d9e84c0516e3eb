package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/budde25/nxcloud/internal/logging"
)

func newCdCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cd <path>",
		Short: "Change the remote working directory (shell only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.ChangeDir(args[0])
			return nil
		},
	}
}

func newShellCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Enter an interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.inShell {
				return errors.New("already in an interactive shell")
			}
			return runShell(cmd, app)
		},
	}
}

// runShell is the interactive loop: prompt for a line, hand it to
// runLine, carry the history. The line handling itself lives on App so
// it does not depend on the terminal.
func runShell(cmd *cobra.Command, app *App) error {
	prompt := liner.NewLiner()
	defer prompt.Close()
	prompt.SetCtrlCAborts(true)

	if f, err := os.Open(app.Config.HistoryFile); err == nil {
		if _, err := prompt.ReadHistory(f); err == nil {
			logging.S().Debug("loaded prompt history")
		}
		f.Close()
	}

	app.inShell = true
	defer func() { app.inShell = false }()

	for {
		input, err := prompt.Prompt(fmt.Sprintf("[/%s] >> ", app.Session.WorkingDir()))
		if err != nil {
			// EOF and interrupt both end the session.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				logging.S().Debugf("prompt closed: %v", err)
			}
			break
		}
		if !app.runLine(cmd.Context(), input) {
			break
		}
		if strings.TrimSpace(input) != "" {
			prompt.AppendHistory(input)
		}
	}

	saveHistory(prompt, app.Config.HistoryFile)
	return nil
}

// runLine executes one line of shell input: trim it, tokenize it, and
// hand the tokens to a freshly built command tree, so a line behaves
// exactly like a new process invocation; the only state that carries
// across lines is the session's working directory. It reports whether
// the shell should keep running: the exit command ends the loop, every
// other outcome, including errors, continues it.
func (a *App) runLine(ctx context.Context, input string) bool {
	line := strings.TrimSpace(input)
	if line == "" {
		return true
	}
	if strings.EqualFold(line, "exit") {
		return false
	}

	tokens, err := shellwords.Parse(line)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return true
	}
	// Lines may but need not start with the program name.
	if len(tokens) > 0 && tokens[0] == "nxcloud" {
		tokens = tokens[1:]
	}

	root := NewRootCommand(a)
	root.SetArgs(tokens)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	}
	return true
}

// historyWriter is the part of the line editor that dumps its history.
type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

// saveHistory persists the prompt history. Failure is logged, never
// fatal: losing history must not break the session teardown.
func saveHistory(h historyWriter, path string) {
	f, err := os.Create(path)
	if err != nil {
		logging.S().Warnf("could not save shell history: %v", err)
		return
	}
	defer f.Close()
	if _, err := h.WriteHistory(f); err != nil {
		logging.S().Warnf("could not save shell history: %v", err)
	}
}
