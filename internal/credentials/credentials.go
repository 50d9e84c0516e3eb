// Package credentials holds the login identity for a remote server and
// the stores that persist it. The primary store is the OS keyring; a
// file in the client cache directory acts as the fallback. Both keep
// the same reversible base64(JSON) form — an obfuscation for casual
// eyes, not encryption.
package credentials

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrNotLoggedIn is returned when no usable credentials exist in
	// any store.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidURL is returned when the server argument cannot be
	// parsed as a URL even after defaulting the scheme.
	ErrInvalidURL = errors.New("invalid server url")
)

// Credentials bundles the identity used for every server request.
type Credentials struct {
	Username string
	Password string
	Server   *url.URL
}

// Parse validates the raw login arguments. A server without an
// explicit scheme defaults to https.
func Parse(username, password, server string) (Credentials, error) {
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return Credentials{}, fmt.Errorf("%w: %q has no host", ErrInvalidURL, server)
	}
	return Credentials{Username: username, Password: password, Server: u}, nil
}

type encodedForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Server   string `json:"server"`
}

// Encode renders the credentials in the persisted wire form.
func (c Credentials) Encode() string {
	data, _ := json.Marshal(encodedForm{
		Username: c.Username,
		Password: c.Password,
		Server:   c.Server.String(),
	})
	return base64.StdEncoding.EncodeToString(data)
}

// Decode parses the persisted wire form back into credentials.
func Decode(content string) (Credentials, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	var form encodedForm
	if err := json.Unmarshal(data, &form); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	u, err := url.Parse(form.Server)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return Credentials{Username: form.Username, Password: form.Password, Server: u}, nil
}
