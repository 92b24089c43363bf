// Package credential keeps the bearer token in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

const (
	serviceName = "matchbox"
	tokenKey    = "bearer-token"
)

// ErrNotFound is returned when no token has been saved.
var ErrNotFound = errors.New("credential not found")

// Opener opens a keyring. Tests substitute keyring.NewArrayKeyring.
type Opener func() (keyring.Keyring, error)

// Vault reads and writes the bearer token.
type Vault struct {
	open Opener
}

// NewVault returns a Vault backed by the system keyring, falling back to
// an encrypted file under dir.
func NewVault(dir string) *Vault {
	return &Vault{open: func() (keyring.Keyring, error) { return openKeyring(dir) }}
}

// NewVaultWith returns a Vault using open.
func NewVaultWith(open Opener) *Vault {
	return &Vault{open: open}
}

// openKeyring returns a configured keyring instance.
func openKeyring(dir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("matchbox-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// LoadToken returns the saved token, or ErrNotFound.
func (v *Vault) LoadToken() (string, error) {
	ring, err := v.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", tokenKey, err)
	}

	return string(item.Data), nil
}

// SaveToken stores token, replacing any previous one.
func (v *Vault) SaveToken(token string) error {
	ring, err := v.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   tokenKey,
		Data:  []byte(token),
		Label: "MatchBox session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", tokenKey, err)
	}

	return nil
}

// DeleteToken removes the saved token. A missing token is not an error.
func (v *Vault) DeleteToken() error {
	ring, err := v.open()
	if err != nil {
		return err
	}

	err = ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", tokenKey, err)
	}

	return nil
}
