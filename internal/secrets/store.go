// Package secrets keeps the exchange rate API key out of config files.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "cheapreg"
	// FallbackDir is the directory, relative to home, for file storage when no keyring is available
	FallbackDir = ".cheapreg/secrets"
	// APIKeyName is the entry holding the rate service API key
	APIKeyName = "rates-api-key"
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Store reads and writes secrets in the OS keyring or, as a fallback, in
// owner-only files
type Store struct {
	dir string // empty means keyring
}

type fileEntry struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStore picks the keyring when it is usable and files otherwise.
// CI and Codespaces always get files.
func NewStore() (*Store, error) {
	if os.Getenv("CODESPACES") == "" && os.Getenv("CI") == "" && keyringUsable() {
		return NewKeyringStore(), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return NewFileStore(filepath.Join(home, FallbackDir)), nil
}

// NewKeyringStore stores secrets in the OS keyring
func NewKeyringStore() *Store {
	return &Store{}
}

// NewFileStore stores secrets as files under dir
func NewFileStore(dir string) *Store {
	return &Store{dir: dir}
}

func keyringUsable() bool {
	const check = "_keyring_access_check_"
	if err := keyring.Set(KeyringService, check, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, check)
	return true
}

// Backend describes where secrets are kept
func (s *Store) Backend() string {
	if s.dir == "" {
		return "keyring"
	}
	return "file " + s.dir
}

// Set stores value under name
func (s *Store) Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if value == "" {
		return fmt.Errorf("secret %q cannot be empty", name)
	}

	if s.dir == "" {
		if err := keyring.Set(KeyringService, name, value); err != nil {
			return fmt.Errorf("failed to save to keyring: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	data, err := json.Marshal(fileEntry{Name: name, Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to serialize secret: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o600); err != nil {
		return fmt.Errorf("failed to save secret file: %w", err)
	}
	return nil
}

// Get returns the value stored under name, or a KEY_NOT_FOUND error
func (s *Store) Get(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	if s.dir == "" {
		value, err := keyring.Get(KeyringService, name)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", notFound(name)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read keyring: %w", err)
		}
		return value, nil
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", notFound(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", fmt.Errorf("corrupt secret file %s: %w", s.path(name), err)
	}
	return entry.Value, nil
}

// Delete removes name. Deleting a missing secret is a KEY_NOT_FOUND error.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	if s.dir == "" {
		err := keyring.Delete(KeyringService, name)
		if errors.Is(err, keyring.ErrNotFound) {
			return notFound(name)
		}
		return err
	}

	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(name)
	}
	return err
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid secret name %q", name)
	}
	return nil
}

func notFound(name string) error {
	return errs.New(errs.CodeKeyNotFound, fmt.Sprintf("no secret named %q", name), nil).
		WithDetail("name", name)
}

// Mask hides all but the last four characters of a secret
func Mask(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
