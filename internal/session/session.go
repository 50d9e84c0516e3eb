// Package session carries the state that survives between commands in
// an interactive shell: the current remote working directory. A
// session is owned by a single command loop and needs no locking.
package session

import "github.com/budde25/nxcloud/internal/remotepath"

// Session holds the current working directory for the lifetime of one
// shell invocation or one single-shot command.
type Session struct {
	wd remotepath.RemotePath
}

// New returns a session rooted at the top of the remote tree.
func New() *Session {
	return &Session{wd: remotepath.Root()}
}

// WorkingDir returns the current working directory.
func (s *Session) WorkingDir() remotepath.RemotePath {
	return s.wd
}

// Resolve joins a raw path argument against the working directory
// without changing it. Commands use this for their one-shot path
// arguments.
func (s *Session) Resolve(raw string) remotepath.RemotePath {
	return s.wd.Join(raw)
}

// ChangeDir replaces the working directory with the target resolved
// against the current one. Only the cd command calls this; it is the
// single mutation that persists across shell iterations.
func (s *Session) ChangeDir(raw string) {
	s.wd = s.wd.Join(raw)
}
