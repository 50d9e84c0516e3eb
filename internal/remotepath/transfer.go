package remotepath

import (
	"errors"
	"strings"
)

// Errors reported when a transfer path has the wrong shape. They are
// detected before any network call is made.
var (
	ErrSourceIsDirectory = errors.New("source is a directory")
	ErrNoFileName        = errors.New("source has no file name")
)

// IsFilePath classifies a raw path string as file-shaped. A path is
// file-shaped unless it ends in '.', '/', or '*'. The check is a plain
// string suffix: "data.txt." is a directory-shaped path. Wildcards are
// unsupported and deliberately classified as directories so transfers
// reject them instead of mis-copying.
func IsFilePath(raw string) bool {
	return !strings.HasSuffix(raw, ".") &&
		!strings.HasSuffix(raw, "/") &&
		!strings.HasSuffix(raw, "*")
}

// SourceFileName extracts the file name from a transfer source. It
// fails with ErrSourceIsDirectory when the source is directory-shaped
// and ErrNoFileName when no trailing component exists.
func SourceFileName(source string) (string, error) {
	if !IsFilePath(source) {
		return "", ErrSourceIsDirectory
	}
	comps := components(source)
	if len(comps) == 0 || comps[len(comps)-1] == ".." {
		return "", ErrNoFileName
	}
	return comps[len(comps)-1], nil
}

// FormatDestinationPush computes the remote destination path for a
// push. A file-shaped destination is used as given; a directory-shaped
// destination gets the source's file name appended. Either way the
// result is stripped of leading '/', '.' and '..' runs and dedotted so
// it is safe to place in a request URL.
func FormatDestinationPush(source, destination string) (string, error) {
	name, err := SourceFileName(source)
	if err != nil {
		return "", err
	}
	if IsFilePath(destination) {
		return cleanRemote(destination), nil
	}
	return cleanRemote(withFileName(destination, name)), nil
}

// FormatDestinationPull computes the local destination path for a
// pull. Same file-name-or-append logic as the push direction, but the
// result is a local filesystem path and is not cleaned.
func FormatDestinationPull(source, destination string) (string, error) {
	name, err := SourceFileName(source)
	if err != nil {
		return "", err
	}
	if IsFilePath(destination) {
		return destination, nil
	}
	out := withFileName(destination, name)
	if strings.HasPrefix(destination, "/") {
		out = "/" + out
	}
	return out, nil
}

// FormatSourcePull validates and cleans the remote source path for a
// pull: the source must be file-shaped, and the cleaned form has any
// leading '/', '.' and '..' run removed.
func FormatSourcePull(source string) (string, error) {
	if _, err := SourceFileName(source); err != nil {
		return "", err
	}
	return cleanRemote(source), nil
}

// components splits a raw path into its meaningful components: empty
// and "." components are dropped, ".." is kept.
func components(raw string) []string {
	var out []string
	for _, comp := range strings.Split(raw, "/") {
		if comp != "" && comp != "." {
			out = append(out, comp)
		}
	}
	return out
}

// withFileName replaces the trailing file name of a file-shaped path,
// or appends name to a directory-shaped one. A trailing ".." component
// never counts as a directory name to descend into.
func withFileName(path, name string) string {
	comps := components(path)
	n := len(comps)
	if n == 0 {
		return name
	}
	out := make([]string, 0, n+1)
	out = append(out, comps[:n-1]...)
	if !IsFilePath(path) && comps[n-1] != ".." {
		out = append(out, comps[n-1])
	}
	out = append(out, name)
	return strings.Join(out, "/")
}

// cleanRemote removes dot tokens with the same clamped stack walk used
// for RemotePath normalization and renders the result without a
// leading separator.
func cleanRemote(raw string) string {
	return strings.Join(dedot(nil, raw), "/")
}
