// Package webdav is the transport layer: it issues authenticated HTTP
// requests against the remote file-storage server's WebDAV endpoint
// and its user-info endpoint. Path resolution happens before this
// package is called; every path argument here is already normalized
// and relative to the user's file root.
package webdav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/budde25/nxcloud/internal/logging"
	"github.com/budde25/nxcloud/internal/retry"
)

// Config holds client configuration.
type Config struct {
	Server   *url.URL
	Username string
	Password string
	Timeout  time.Duration
	Retry    retry.Config
}

// Client talks to one server on behalf of one user.
type Client struct {
	server     *url.URL
	username   string
	password   string
	httpClient *http.Client
	retryCfg   retry.Config
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string
	Dir  bool
}

// RemoteError reports a non-2xx response from the server.
type RemoteError struct {
	Op     string
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: server returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// New creates a client. A zero timeout defaults to 10 seconds and a
// zero retry configuration to a single attempt.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Single()
	}
	return &Client{
		server:     cfg.Server,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryCfg:   cfg.Retry,
	}
}

// davURL builds the WebDAV URL for a normalized remote path.
func (c *Client) davURL(path string) string {
	u := strings.TrimSuffix(c.server.String(), "/") +
		"/remote.php/dav/files/" + url.PathEscape(c.username)
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			u += "/" + url.PathEscape(seg)
		}
	}
	return u
}

// do issues one authenticated request and classifies the response:
// transport failures and 5xx answers are marked retryable, other
// non-2xx answers become a permanent RemoteError.
func (c *Client) do(ctx context.Context, op, method, rawURL string, body []byte, header http.Header) ([]byte, error) {
	var out []byte

	err := retry.Do(ctx, c.retryCfg, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.username, c.password)
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		logging.Debug("request", zap.String("method", method), zap.String("url", rawURL))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(fmt.Errorf("%s failed: %w", op, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if resp.StatusCode >= 500 {
				return retry.Retryable(&RemoteError{Op: op, Status: resp.StatusCode})
			}
			return &RemoteError{Op: op, Status: resp.StatusCode}
		}

		out, err = io.ReadAll(resp.Body)
		return err
	})

	return out, err
}

// VerifyIdentity checks the credentials against the server's user-info
// endpoint.
func (c *Client) VerifyIdentity(ctx context.Context) error {
	u := strings.TrimSuffix(c.server.String(), "/") +
		"/ocs/v1.php/cloud/users/" + url.PathEscape(c.username)
	header := http.Header{"OCS-APIRequest": []string{"true"}}
	_, err := c.do(ctx, "verify identity", http.MethodGet, u, nil, header)
	return err
}

// List fetches the directory listing for a remote path.
func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	header := http.Header{"Depth": []string{"1"}}
	data, err := c.do(ctx, "list", "PROPFIND", c.davURL(path), nil, header)
	if err != nil {
		return nil, err
	}
	return parseListing(bytes.NewReader(data))
}

// Fetch downloads the contents of a remote file.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, "pull", http.MethodGet, c.davURL(path), nil, nil)
}

// Store uploads data to a remote file path, creating or replacing it.
func (c *Client) Store(ctx context.Context, path string, data []byte) error {
	header := http.Header{"Content-Type": []string{"application/octet-stream"}}
	_, err := c.do(ctx, "push", http.MethodPut, c.davURL(path), data, header)
	return err
}

// Mkcol creates a remote directory.
func (c *Client) Mkcol(ctx context.Context, path string) error {
	_, err := c.do(ctx, "mkdir", "MKCOL", c.davURL(path), nil, nil)
	return err
}

// Delete removes a remote file or directory. Directories are removed
// recursively by the server.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, "rm", http.MethodDelete, c.davURL(path), nil, nil)
	return err
}
