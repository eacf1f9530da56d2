package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvStoreFromProcessEnvironment(t *testing.T) {
	t.Setenv("TEST_SECRET_TOKEN", "123:abc")

	store, err := NewEnvStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	value, err := store.Resolve("TEST_SECRET_TOKEN")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value != "123:abc" {
		t.Errorf("Expected '123:abc', got %q", value)
	}
}

func TestEnvStoreFromDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	if err := os.WriteFile(path, []byte("FILE_SECRET=from-file\n"), 0600); err != nil {
		t.Fatalf("Failed to write dotenv file: %v", err)
	}

	store, err := NewEnvStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	value, err := store.Resolve("FILE_SECRET")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value != "from-file" {
		t.Errorf("Expected 'from-file', got %q", value)
	}

	// File loading must not leak into the process environment.
	if _, ok := os.LookupEnv("FILE_SECRET"); ok {
		t.Error("Expected dotenv values to stay out of the environment")
	}
}

func TestEnvStoreFilePrecedence(t *testing.T) {
	t.Setenv("SHARED_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "secrets.env")
	if err := os.WriteFile(path, []byte("SHARED_SECRET=from-file\n"), 0600); err != nil {
		t.Fatalf("Failed to write dotenv file: %v", err)
	}

	store, err := NewEnvStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	value, err := store.Resolve("SHARED_SECRET")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value != "from-file" {
		t.Errorf("Expected file value to win, got %q", value)
	}
}

func TestEnvStoreNotFound(t *testing.T) {
	store, err := NewEnvStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.Resolve("DEFINITELY_NOT_SET_ANYWHERE")

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %T: %v", err, err)
	}
	if notFound.Name != "DEFINITELY_NOT_SET_ANYWHERE" {
		t.Errorf("Expected error to name the secret, got %s", notFound.Name)
	}
}

func TestEnvStoreMissingFile(t *testing.T) {
	if _, err := NewEnvStore("/nonexistent/secrets.env"); err == nil {
		t.Error("Expected error for missing dotenv file")
	}
}

func TestVaultStoreResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.vault")
	if err := os.WriteFile(path, []byte("$ANSIBLE_VAULT;1.1;AES256\nencrypted"), 0600); err != nil {
		t.Fatalf("Failed to write vault file: %v", err)
	}

	decryptCalls := 0
	decrypter := &MockVaultDecrypter{
		DecryptFunc: func(content, password string) (string, error) {
			decryptCalls++
			if password != "hunter2" {
				return "", errors.New("bad password")
			}
			return "BOT_TOKEN=123:abc\nDB_PASSWORD=swordfish\n", nil
		},
	}

	store := NewVaultStoreWithDecrypter(path, "hunter2", decrypter)

	value, err := store.Resolve("BOT_TOKEN")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if value != "123:abc" {
		t.Errorf("Expected '123:abc', got %q", value)
	}

	// Second resolve reuses the decrypted values.
	if _, err := store.Resolve("DB_PASSWORD"); err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if decryptCalls != 1 {
		t.Errorf("Expected a single decryption, got %d", decryptCalls)
	}

	_, err = store.Resolve("MISSING")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for unknown secret, got %v", err)
	}
}

func TestVaultStoreDecryptionFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.vault")
	if err := os.WriteFile(path, []byte("$ANSIBLE_VAULT;1.1;AES256\nencrypted"), 0600); err != nil {
		t.Fatalf("Failed to write vault file: %v", err)
	}

	decrypter := &MockVaultDecrypter{
		DecryptFunc: func(content, password string) (string, error) {
			return "", errors.New("HMAC mismatch")
		},
	}

	store := NewVaultStoreWithDecrypter(path, "wrong", decrypter)

	if _, err := store.Resolve("BOT_TOKEN"); err == nil {
		t.Error("Expected error when decryption fails")
	}
}
