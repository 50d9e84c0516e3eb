// Package config computes client configuration once at process start.
// Values come from environment variables with sensible defaults; the
// resulting Config is threaded explicitly into the commands instead of
// living in package globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all client configuration.
type Config struct {
	// CacheDir is the per-user directory for client state.
	CacheDir string

	// CredentialsFile is the fallback credential store, used when the
	// OS keyring is unavailable or disabled.
	CredentialsFile string

	// HistoryFile persists interactive shell history across sessions.
	HistoryFile string

	// Timeout bounds every request to the server.
	Timeout time.Duration

	// RetryAttempts is the number of attempts per request. The default
	// of 1 means failed requests are not retried.
	RetryAttempts int

	// DisableKeyring skips the OS keyring and uses the file store
	// exclusively.
	DisableKeyring bool
}

// Load reads configuration from the environment with defaults. The
// cache directory is created if it does not exist.
func Load() (*Config, error) {
	cacheDir := os.Getenv("NXCLOUD_CACHE_DIR")
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache directory: %w", err)
		}
		cacheDir = filepath.Join(base, "nxcloud")
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	cfg := &Config{
		CacheDir:        cacheDir,
		CredentialsFile: envOr("NXCLOUD_CREDENTIALS_FILE", filepath.Join(cacheDir, "credentials.txt")),
		HistoryFile:     envOr("NXCLOUD_HISTORY_FILE", filepath.Join(cacheDir, "history.txt")),
		Timeout:         envDuration("NXCLOUD_TIMEOUT", 10*time.Second),
		RetryAttempts:   envInt("NXCLOUD_RETRY_ATTEMPTS", 1),
		DisableKeyring:  envBool("NXCLOUD_NO_KEYRING", false),
	}

	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
