package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/budde25/nxcloud/internal/config"
	"github.com/budde25/nxcloud/internal/credentials"
	"github.com/budde25/nxcloud/internal/remotepath"
	"github.com/budde25/nxcloud/internal/session"
	"github.com/budde25/nxcloud/internal/webdav"
)

// fakeTransport records calls instead of talking to a server.
type fakeTransport struct {
	calls     []string
	entries   []webdav.Entry
	content   []byte
	stored    map[string][]byte
	verifyErr error
	err       error
}

func (f *fakeTransport) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeTransport) VerifyIdentity(ctx context.Context) error {
	f.record("verify")
	return f.verifyErr
}

func (f *fakeTransport) List(ctx context.Context, path string) ([]webdav.Entry, error) {
	f.record("list %s", path)
	return f.entries, f.err
}

func (f *fakeTransport) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.record("fetch %s", path)
	return f.content, f.err
}

func (f *fakeTransport) Store(ctx context.Context, path string, data []byte) error {
	f.record("store %s", path)
	if f.stored == nil {
		f.stored = make(map[string][]byte)
	}
	f.stored[path] = data
	return f.err
}

func (f *fakeTransport) Mkcol(ctx context.Context, path string) error {
	f.record("mkcol %s", path)
	return f.err
}

func (f *fakeTransport) Delete(ctx context.Context, path string) error {
	f.record("delete %s", path)
	return f.err
}

// memStore is an in-memory credential store.
type memStore struct {
	creds *credentials.Credentials
}

func (m *memStore) Read() (credentials.Credentials, error) {
	if m.creds == nil {
		return credentials.Credentials{}, credentials.ErrNotLoggedIn
	}
	return *m.creds, nil
}

func (m *memStore) Write(c credentials.Credentials) error {
	m.creds = &c
	return nil
}

func (m *memStore) Delete() error {
	if m.creds == nil {
		return credentials.ErrNotLoggedIn
	}
	m.creds = nil
	return nil
}

type testEnv struct {
	app       *App
	transport *fakeTransport
	store     *memStore
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	env := &testEnv{
		transport: &fakeTransport{},
		store:     &memStore{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	env.app = &App{
		Config: &config.Config{
			CacheDir:        dir,
			CredentialsFile: filepath.Join(dir, "credentials.txt"),
			HistoryFile:     filepath.Join(dir, "history.txt"),
			Timeout:         time.Second,
			RetryAttempts:   1,
		},
		Session: session.New(),
		Creds:   env.store,
		NewTransport: func(credentials.Credentials) Transport {
			return env.transport
		},
		Stdin:  strings.NewReader(""),
		Stdout: env.stdout,
		Stderr: env.stderr,
	}
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	creds, err := credentials.Parse("alice", "secret", "cloud.example.com")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := e.store.Write(creds); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func (e *testEnv) run(args ...string) error {
	root := NewRootCommand(e.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestStatusNotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := env.stdout.String(); got != "Not logged in\n" {
		t.Errorf("output = %q", got)
	}
}

func TestStatusLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if err := env.run("status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	got := env.stdout.String()
	if !strings.Contains(got, "alice") || !strings.Contains(got, "cloud.example.com") {
		t.Errorf("output = %q", got)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("login", "cloud.example.com", "alice", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if diff := cmp.Diff([]string{"verify"}, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if env.store.creds == nil {
		t.Fatal("credentials not persisted")
	}
	if env.store.creds.Server.String() != "https://cloud.example.com" {
		t.Errorf("server = %q", env.store.creds.Server)
	}
	if !strings.Contains(env.stdout.String(), "Login successful") {
		t.Errorf("output = %q", env.stdout.String())
	}
}

func TestLoginInvalidServer(t *testing.T) {
	env := newTestEnv(t)

	err := env.run("login", "", "alice", "secret")
	if !errors.Is(err, credentials.ErrInvalidURL) {
		t.Fatalf("err = %v, want ErrInvalidURL", err)
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("no network call expected, got %v", env.transport.calls)
	}
	if env.store.creds != nil {
		t.Error("credentials must not be persisted")
	}
}

func TestLoginVerifyFailure(t *testing.T) {
	env := newTestEnv(t)
	env.transport.verifyErr = errors.New("401")

	if err := env.run("login", "cloud.example.com", "alice", "bad"); err == nil {
		t.Fatal("expected error")
	}
	if env.store.creds != nil {
		t.Error("credentials must not be persisted after failed verification")
	}
}

func TestLoginPromptsForPassword(t *testing.T) {
	env := newTestEnv(t)
	env.app.Stdin = strings.NewReader("prompted-pass\n")

	if err := env.run("login", "cloud.example.com", "alice"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if env.store.creds == nil || env.store.creds.Password != "prompted-pass" {
		t.Errorf("stored = %+v", env.store.creds)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if err := env.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if env.store.creds != nil {
		t.Error("credentials should be deleted")
	}

	if err := env.run("logout"); err == nil {
		t.Error("second logout should fail")
	}
}

func TestPushAppendsFileName(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	source := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(source, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := env.run("push", source, "docs/"); err != nil {
		t.Fatalf("push: %v", err)
	}
	want := []string{"store docs/test.txt"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if string(env.transport.stored["docs/test.txt"]) != "data" {
		t.Errorf("stored = %q", env.transport.stored["docs/test.txt"])
	}
}

func TestPushExplicitDestination(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	source := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(source, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := env.run("push", source, "/docs/renamed.txt"); err != nil {
		t.Fatalf("push: %v", err)
	}
	want := []string{"store docs/renamed.txt"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestPushDirectorySource(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	err := env.run("push", "somewhere/", "docs/")
	if !errors.Is(err, remotepath.ErrSourceIsDirectory) {
		t.Fatalf("err = %v, want ErrSourceIsDirectory", err)
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("no network call expected, got %v", env.transport.calls)
	}
}

func TestPullAppendsFileName(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.transport.content = []byte("remote data")

	dir := t.TempDir()
	if err := env.run("pull", "/docs/test.txt", dir+"/"); err != nil {
		t.Fatalf("pull: %v", err)
	}
	want := []string{"fetch docs/test.txt"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(dir, "test.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "remote data" {
		t.Errorf("local file = %q", data)
	}
}

func TestPullRefusesOverwrite(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.transport.content = []byte("remote data")

	dest := filepath.Join(t.TempDir(), "exists.txt")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := env.run("pull", "/docs/test.txt", dest); err == nil {
		t.Fatal("expected error for existing destination")
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("no network call expected, got %v", env.transport.calls)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "old" {
		t.Error("existing file must not be overwritten")
	}
}

func TestPullDirectorySource(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	err := env.run("pull", "/docs/.", "local.txt")
	if !errors.Is(err, remotepath.ErrSourceIsDirectory) {
		t.Fatalf("err = %v, want ErrSourceIsDirectory", err)
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("no network call expected, got %v", env.transport.calls)
	}
}

func TestLsFormatting(t *testing.T) {
	entries := []webdav.Entry{
		{Name: "notes.txt"},
		{Name: "my folder", Dir: true},
		{Name: ".hidden"},
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"ls"}, "notes.txt  'my folder'\n"},
		{"list", []string{"ls", "--list"}, "notes.txt\nmy folder\n"},
		{"all", []string{"ls", "--all", "--list"}, "notes.txt\nmy folder\n.hidden\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login(t)
			env.transport.entries = entries

			if err := env.run(tt.args...); err != nil {
				t.Fatalf("ls: %v", err)
			}
			if got := env.stdout.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLsResolvesAgainstWorkingDir(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if err := env.run("cd", "docs"); err != nil {
		t.Fatalf("cd: %v", err)
	}
	if err := env.run("ls", "reports"); err != nil {
		t.Fatalf("ls: %v", err)
	}

	want := []string{"list docs/reports"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	// The resolution is one-shot; the working directory is unchanged.
	if got := env.app.Session.WorkingDir().String(); got != "docs" {
		t.Errorf("wd = %q, want docs", got)
	}
}

func TestMkdir(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if err := env.run("mkdir", "new/dir"); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := []string{"mkcol new/dir"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestRmRefusesRoot(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, args := range [][]string{
		{"rm", "/"},
		{"rm", "/", "--force"},
		{"rm", ".."},
	} {
		env.transport.calls = nil
		env.stderr.Reset()

		if err := env.run(args...); !errors.Is(err, errRootDeletion) {
			t.Errorf("%v err = %v, want root refusal", args, err)
		}
		if len(env.transport.calls) != 0 {
			t.Errorf("%v: no network call expected, got %v", args, env.transport.calls)
		}
		if strings.Contains(env.stderr.String(), "Are you sure") {
			t.Errorf("%v: refusal must come before the confirmation prompt", args)
		}
	}
}

func TestRmConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	// Both answers arrive on one stdin; the second prompt must still
	// see its line instead of losing it to the first prompt's buffer.
	env.app.Stdin = strings.NewReader("n\ny\n")

	if err := env.run("rm", "docs"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("declined rm must not delete, got %v", env.transport.calls)
	}

	if err := env.run("rm", "docs"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	want := []string{"delete docs"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestRmForceSkipsPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if err := env.run("rm", "docs", "--force"); err != nil {
		t.Fatalf("rm --force: %v", err)
	}
	want := []string{"delete docs"}
	if diff := cmp.Diff(want, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if strings.Contains(env.stderr.String(), "Are you sure") {
		t.Error("--force must not prompt")
	}
}

func TestCdPersistsAcrossCommands(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, target := range []string{"a", "b/c", ".."} {
		if err := env.run("cd", target); err != nil {
			t.Fatalf("cd %s: %v", target, err)
		}
	}
	if got := env.app.Session.WorkingDir().String(); got != "a/b" {
		t.Errorf("wd = %q, want a/b", got)
	}

	if err := env.run("cd", "/fresh/start"); err != nil {
		t.Fatalf("cd: %v", err)
	}
	if got := env.app.Session.WorkingDir().String(); got != "fresh/start" {
		t.Errorf("wd = %q, want fresh/start", got)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"ls"},
		{"mkdir", "x"},
		{"rm", "x", "--force"},
	} {
		err := env.run(args...)
		if !errors.Is(err, credentials.ErrNotLoggedIn) {
			t.Errorf("%v err = %v, want ErrNotLoggedIn", args, err)
		}
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("no network call expected, got %v", env.transport.calls)
	}
}

func TestErrorsLeaveSessionIntact(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if err := env.run("cd", "docs"); err != nil {
		t.Fatalf("cd: %v", err)
	}
	env.transport.err = errors.New("remote failure")

	if err := env.run("ls"); err == nil {
		t.Fatal("expected error")
	}
	if got := env.app.Session.WorkingDir().String(); got != "docs" {
		t.Errorf("wd after failed command = %q, want docs", got)
	}
}

func TestRunLineExit(t *testing.T) {
	env := newTestEnv(t)

	for _, input := range []string{"exit", "EXIT", "Exit", "  exit  "} {
		if env.app.runLine(context.Background(), input) {
			t.Errorf("runLine(%q) = true, want false", input)
		}
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("exit must not dispatch, got %v", env.transport.calls)
	}
}

func TestRunLineSkipsBlankInput(t *testing.T) {
	env := newTestEnv(t)

	for _, input := range []string{"", "   ", "\t"} {
		if !env.app.runLine(context.Background(), input) {
			t.Errorf("runLine(%q) = false, want true", input)
		}
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("blank input must not dispatch, got %v", env.transport.calls)
	}
}

func TestRunLineStripsProgramName(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, input := range []string{"ls", "nxcloud ls"} {
		env.transport.calls = nil
		if !env.app.runLine(context.Background(), input) {
			t.Fatalf("runLine(%q) = false, want true", input)
		}
		if diff := cmp.Diff([]string{"list "}, env.transport.calls); diff != "" {
			t.Errorf("runLine(%q) calls (-want +got):\n%s", input, diff)
		}
	}
}

func TestRunLineParseErrorContinues(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if !env.app.runLine(context.Background(), "ls 'unterminated") {
		t.Fatal("a parse error must not end the shell")
	}
	if len(env.transport.calls) != 0 {
		t.Errorf("unparseable line must not dispatch, got %v", env.transport.calls)
	}
	if !strings.Contains(env.stderr.String(), "Error:") {
		t.Errorf("stderr = %q, want a printed error", env.stderr.String())
	}
}

func TestRunLineCommandErrorContinues(t *testing.T) {
	env := newTestEnv(t)

	if !env.app.runLine(context.Background(), "frobnicate") {
		t.Fatal("a failed command must not end the shell")
	}
	if !strings.Contains(env.stderr.String(), "Error:") {
		t.Errorf("stderr = %q, want a printed error", env.stderr.String())
	}
}

func TestRunLineSessionCarriesForward(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	if !env.app.runLine(context.Background(), "cd docs") {
		t.Fatal("cd ended the shell")
	}
	if !env.app.runLine(context.Background(), "ls") {
		t.Fatal("ls ended the shell")
	}
	if diff := cmp.Diff([]string{"list docs"}, env.transport.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

type fakeHistory struct {
	lines []string
}

func (f fakeHistory) WriteHistory(w io.Writer) (int, error) {
	return io.WriteString(w, strings.Join(f.lines, "\n")+"\n")
}

func TestSaveHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	saveHistory(fakeHistory{lines: []string{"ls", "cd docs"}}, path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := string(data); got != "ls\ncd docs\n" {
		t.Errorf("history file = %q", got)
	}
}

func TestSaveHistoryFailureIsNonFatal(t *testing.T) {
	// The parent directory does not exist; saveHistory must swallow
	// the failure.
	saveHistory(fakeHistory{}, filepath.Join(t.TempDir(), "missing", "history.txt"))
}

func TestShellRefusesNesting(t *testing.T) {
	env := newTestEnv(t)
	env.app.inShell = true

	if err := env.run("shell"); err == nil {
		t.Fatal("nested shell should be refused")
	}
}

func TestUnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("frobnicate"); err == nil {
		t.Fatal("expected parse error for unknown command")
	}
}
