package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"

	"github.com/budde25/nxcloud/internal/logging"
)

// Store persists one credentials record.
type Store interface {
	Read() (Credentials, error)
	Write(Credentials) error
	Delete() error
}

const (
	keyringService = "nxcloud"
	keyringAccount = "credentials"
)

// KeyringStore keeps credentials in the operating system's secret
// store.
type KeyringStore struct{}

// Read loads credentials from the keyring.
func (KeyringStore) Read() (Credentials, error) {
	content, err := keyring.Get(keyringService, keyringAccount)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credentials{}, ErrNotLoggedIn
		}
		return Credentials{}, fmt.Errorf("keyring read: %w", err)
	}
	return Decode(content)
}

// Write stores credentials in the keyring.
func (KeyringStore) Write(c Credentials) error {
	if err := keyring.Set(keyringService, keyringAccount, c.Encode()); err != nil {
		return fmt.Errorf("keyring write: %w", err)
	}
	return nil
}

// Delete removes credentials from the keyring.
func (KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringAccount); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// FileStore keeps the encoded credentials in a single file.
type FileStore struct {
	Path string
}

// Read loads credentials from the file.
func (s FileStore) Read() (Credentials, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNotLoggedIn
		}
		return Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}
	return Decode(string(content))
}

// Write stores credentials in the file, readable by the owner only.
func (s FileStore) Write(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(c.Encode()), 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}

// Delete removes the credentials file.
func (s FileStore) Delete() error {
	if err := os.Remove(s.Path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("delete credentials file: %w", err)
	}
	return nil
}

// Chain tries an ordered list of stores. Reads return the first hit,
// writes go to the first store that accepts, deletes sweep every
// store so a logout clears stale fallback copies too.
type Chain []Store

// NewChain builds the default store order for the given configuration:
// OS keyring first unless disabled, then the credentials file.
func NewChain(credentialsFile string, disableKeyring bool) Chain {
	if disableKeyring {
		return Chain{FileStore{Path: credentialsFile}}
	}
	return Chain{KeyringStore{}, FileStore{Path: credentialsFile}}
}

// Read returns credentials from the first store that has them.
func (c Chain) Read() (Credentials, error) {
	for _, s := range c {
		creds, err := s.Read()
		if err == nil {
			return creds, nil
		}
		if !errors.Is(err, ErrNotLoggedIn) {
			logging.S().Debugf("credential store read failed: %v", err)
		}
	}
	return Credentials{}, ErrNotLoggedIn
}

// Write persists credentials to the first store that accepts them,
// falling through to the next on failure.
func (c Chain) Write(creds Credentials) error {
	var errs []error
	for _, s := range c {
		err := s.Write(creds)
		if err == nil {
			return nil
		}
		logging.S().Debugf("credential store write failed: %v", err)
		errs = append(errs, err)
	}
	return fmt.Errorf("save credentials: %w", errors.Join(errs...))
}

// Delete removes credentials from every store. It succeeds when at
// least one store held a record.
func (c Chain) Delete() error {
	deleted := false
	var errs []error
	for _, s := range c {
		switch err := s.Delete(); {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrNotLoggedIn):
		default:
			errs = append(errs, err)
		}
	}
	if deleted {
		return nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete credentials: %w", errors.Join(errs...))
	}
	return ErrNotLoggedIn
}
