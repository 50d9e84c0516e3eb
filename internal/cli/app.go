// Package cli wires the command surface: it parses a command line into
// one of the client commands, resolves path arguments against the
// session's working directory, and dispatches to the transport and
// credential collaborators. The interactive shell re-enters the same
// command tree for every input line.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/budde25/nxcloud/internal/config"
	"github.com/budde25/nxcloud/internal/credentials"
	"github.com/budde25/nxcloud/internal/retry"
	"github.com/budde25/nxcloud/internal/session"
	"github.com/budde25/nxcloud/internal/webdav"
)

// Transport is the server-side capability the commands dispatch to.
// The production implementation is the webdav client; tests substitute
// their own.
type Transport interface {
	VerifyIdentity(ctx context.Context) error
	List(ctx context.Context, path string) ([]webdav.Entry, error)
	Fetch(ctx context.Context, path string) ([]byte, error)
	Store(ctx context.Context, path string, data []byte) error
	Mkcol(ctx context.Context, path string) error
	Delete(ctx context.Context, path string) error
}

// App bundles the collaborators every command needs. One App lives for
// the whole process; the shell shares it across loop iterations so the
// session's working directory carries forward.
type App struct {
	Config  *config.Config
	Session *session.Session
	Creds   credentials.Store

	// NewTransport builds a transport for the given credentials.
	NewTransport func(credentials.Credentials) Transport

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	inShell bool

	// stdinReader buffers Stdin. One reader lives for the whole App so
	// consecutive prompts do not lose input buffered by an earlier one.
	stdinReader *bufio.Reader
}

// NewApp builds the production wiring for a configuration.
func NewApp(cfg *config.Config) *App {
	return &App{
		Config:  cfg,
		Session: session.New(),
		Creds:   credentials.NewChain(cfg.CredentialsFile, cfg.DisableKeyring),
		NewTransport: func(creds credentials.Credentials) Transport {
			return webdav.New(webdav.Config{
				Server:   creds.Server,
				Username: creds.Username,
				Password: creds.Password,
				Timeout:  cfg.Timeout,
				Retry:    retry.WithAttempts(cfg.RetryAttempts),
			})
		},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// transport resolves stored credentials into a ready transport.
func (a *App) transport() (Transport, error) {
	creds, err := a.Creds.Read()
	if err != nil {
		return nil, err
	}
	return a.NewTransport(creds), nil
}

// reader returns the app's buffered stdin, creating it on first use.
func (a *App) reader() *bufio.Reader {
	if a.stdinReader == nil {
		a.stdinReader = bufio.NewReader(a.Stdin)
	}
	return a.stdinReader
}

// confirm asks an interactive y/n question on the app's streams.
func (a *App) confirm(question string) (bool, error) {
	fmt.Fprintf(a.Stderr, "%s (y/n) ", question)
	line, err := a.reader().ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// promptPassword reads a password without echo when stdin is a
// terminal, and as a plain line otherwise.
func (a *App) promptPassword() (string, error) {
	if f, ok := a.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.Stderr, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := a.reader().ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
