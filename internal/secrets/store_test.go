package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/zalando/go-keyring"
)

func exercise(t *testing.T, s *Store) {
	t.Helper()

	if _, err := s.Get(APIKeyName); !errors.Is(err, errs.ErrKeyNotFound) {
		t.Fatalf("Expected key not found before Set, got %v", err)
	}

	if err := s.Set(APIKeyName, "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(APIKeyName)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "abc123" {
		t.Fatalf("Expected abc123, got %q", got)
	}

	if err := s.Set(APIKeyName, "def456"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if got, _ := s.Get(APIKeyName); got != "def456" {
		t.Fatalf("Expected overwritten value, got %q", got)
	}

	if err := s.Delete(APIKeyName); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(APIKeyName); !errors.Is(err, errs.ErrKeyNotFound) {
		t.Fatalf("Expected key not found on second delete, got %v", err)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore()
	if s.Backend() != "keyring" {
		t.Errorf("unexpected backend %q", s.Backend())
	}
	exercise(t, s)
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	s := NewFileStore(dir)
	exercise(t, s)

	if err := s.Set("other", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "other.json"))
	if err != nil {
		t.Fatalf("secret file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, APIKeyName+".json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(dir).Get(APIKeyName); err == nil {
		t.Fatal("Expected error for corrupt file")
	}
}

func TestStore_InvalidInput(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if err := s.Set("../escape", "x"); err == nil {
		t.Error("Expected error for path-like name")
	}
	if err := s.Set(APIKeyName, ""); err == nil {
		t.Error("Expected error for empty value")
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abcdef123456"); got != "****3456" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := Mask("abc"); got != "****" {
		t.Errorf("unexpected mask %q", got)
	}
}
