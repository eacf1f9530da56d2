// Package secrets provides secret store implementations used to resolve
// manifest secret references at apply time.
package secrets

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// NotFoundError indicates a secret reference with no matching value.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("secret '%s' not found", e.Name)
}

// EnvStore resolves secrets from the process environment, optionally
// preloaded from dotenv files.
type EnvStore struct {
	values map[string]string
}

// NewEnvStore creates a store backed by the process environment. Any given
// dotenv files are read into the store without touching the environment.
func NewEnvStore(dotenvPaths ...string) (*EnvStore, error) {
	store := &EnvStore{values: make(map[string]string)}

	for _, path := range dotenvPaths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read secrets file %s: %w", path, err)
		}
		for k, v := range values {
			store.values[k] = v
		}
	}

	return store, nil
}

// Resolve returns the secret value, preferring file-loaded values over the
// process environment.
func (s *EnvStore) Resolve(name string) (string, error) {
	if value, ok := s.values[name]; ok {
		return value, nil
	}
	if value, ok := os.LookupEnv(name); ok {
		return value, nil
	}
	return "", &NotFoundError{Name: name}
}

// VaultStore resolves secrets from an Ansible Vault encrypted dotenv file.
// The file is decrypted once, on first use.
type VaultStore struct {
	path      string
	password  string
	decrypter VaultDecrypter

	mu     sync.Mutex
	values map[string]string
}

// NewVaultStore creates a store backed by an encrypted secrets file.
func NewVaultStore(path, password string) *VaultStore {
	return &VaultStore{
		path:      path,
		password:  password,
		decrypter: NewVaultDecrypter(),
	}
}

// NewVaultStoreWithDecrypter creates a vault store with a custom decrypter.
func NewVaultStoreWithDecrypter(path, password string, decrypter VaultDecrypter) *VaultStore {
	return &VaultStore{
		path:      path,
		password:  password,
		decrypter: decrypter,
	}
}

// Resolve returns the secret value from the decrypted file.
func (s *VaultStore) Resolve(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return "", err
	}

	if value, ok := s.values[name]; ok {
		return value, nil
	}
	return "", &NotFoundError{Name: name}
}

func (s *VaultStore) ensureLoaded() error {
	if s.values != nil {
		return nil
	}

	decrypted, err := LoadVaultFile(s.path, s.password, s.decrypter)
	if err != nil {
		return err
	}

	values, err := godotenv.Unmarshal(decrypted)
	if err != nil {
		return fmt.Errorf("failed to parse decrypted secrets: %w", err)
	}

	s.values = values
	return nil
}
