// Package remotepath models paths on the remote virtual filesystem.
//
// A RemotePath is a normalized sequence of path segments rooted at the
// server's file root. Normalization removes `.` and `..` tokens with a
// stack walk that clamps at the root, so a remote path can never escape
// the virtual tree. Whether a path denotes a file or a directory is
// carried as an explicit flag derived from the raw input's trailing
// shape, not from the server.
package remotepath

import "strings"

// RemotePath is a normalized path on the remote filesystem. The zero
// value is the root directory. Values are immutable; all methods return
// new values.
type RemotePath struct {
	segments []string
	isFile   bool
}

// Root returns the root of the remote filesystem.
func Root() RemotePath {
	return RemotePath{}
}

// Parse normalizes a raw path string into a RemotePath. Absolute and
// relative inputs are treated uniformly: both are resolved against the
// virtual root, and `..` components that would climb above the root are
// dropped rather than rejected.
func Parse(raw string) RemotePath {
	return RemotePath{
		segments: dedot(nil, raw),
		isFile:   shapeIsFile(raw),
	}
}

// Join resolves a raw path fragment against p. An absolute fragment
// (leading separator) discards p and re-roots. The literal fragments
// "." and "" return p unchanged and ".." returns the parent. Otherwise
// the fragment's components are walked on top of p's segments, with
// `..` allowed to pop back through p but never past the root. The
// file/directory shape of the result comes from the fragment alone.
func (p RemotePath) Join(fragment string) RemotePath {
	switch fragment {
	case "", ".":
		return p
	case "..":
		return p.Parent()
	}
	if strings.HasPrefix(fragment, "/") {
		return Parse(fragment)
	}
	return RemotePath{
		segments: dedot(p.segments, fragment),
		isFile:   shapeIsFile(fragment),
	}
}

// IsFile reports whether the path denotes a concrete file-like leaf.
// The root is always a directory.
func (p RemotePath) IsFile() bool {
	return p.isFile
}

// IsRoot reports whether the path is the root of the remote tree.
func (p RemotePath) IsRoot() bool {
	return len(p.segments) == 0
}

// Segments returns a copy of the path's components.
func (p RemotePath) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// String renders the path relative to the root, with no leading
// separator. The root renders as the empty string.
func (p RemotePath) String() string {
	return strings.Join(p.segments, "/")
}

// Equal reports whether two paths have identical segments and shape.
func (p RemotePath) Equal(o RemotePath) bool {
	if p.isFile != o.isFile || len(p.segments) != len(o.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != o.segments[i] {
			return false
		}
	}
	return true
}

// Parent returns the directory containing p, or the root if p is
// already the root.
func (p RemotePath) Parent() RemotePath {
	if len(p.segments) == 0 {
		return RemotePath{}
	}
	seg := make([]string, len(p.segments)-1)
	copy(seg, p.segments)
	return RemotePath{segments: seg}
}

// WithFileName returns p with its trailing segment replaced by name
// when p is file-shaped, or with name appended when p is a directory.
// The result is always file-shaped.
func (p RemotePath) WithFileName(name string) RemotePath {
	keep := p.segments
	if p.isFile && len(keep) > 0 {
		keep = keep[:len(keep)-1]
	}
	seg := make([]string, len(keep), len(keep)+1)
	copy(seg, keep)
	return RemotePath{segments: append(seg, name), isFile: true}
}

// shapeIsFile classifies a raw path by its trailing syntax: a trailing
// separator or a final component that is exactly "." or ".." marks a
// directory. An empty input is the root. Only exact dot tokens count;
// a run like "....." is an ordinary segment.
func shapeIsFile(raw string) bool {
	if raw == "" || strings.HasSuffix(raw, "/") {
		return false
	}
	last := raw
	if i := strings.LastIndexByte(raw, '/'); i >= 0 {
		last = raw[i+1:]
	}
	return last != "." && last != ".."
}

// dedot walks raw's components on top of base, dropping "." and empty
// components, popping a segment for each ".." and clamping at the root.
// The returned slice never aliases base.
func dedot(base []string, raw string) []string {
	stack := make([]string, len(base), len(base)+8)
	copy(stack, base)
	for _, comp := range strings.Split(raw, "/") {
		switch comp {
		case "", ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, comp)
		}
	}
	return stack
}
