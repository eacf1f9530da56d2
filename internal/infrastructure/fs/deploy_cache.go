package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nickalie/shipway/internal/core/plan"
)

const (
	// DefaultCacheDir is the default directory for the deployment cache
	DefaultCacheDir = ".shipway"
)

// DeployRecord remembers the configuration fingerprint last applied per
// service, so unchanged manifests are not re-applied.
type DeployRecord struct {
	Service     string `json:"service"`
	Fingerprint string `json:"fingerprint"`
}

// DeployCache implements a file-backed record of applied deployments
type DeployCache struct {
	baseDir    string
	fileSystem FileSystem
	mu         sync.RWMutex
	records    map[string]DeployRecord
	loaded     bool
}

// NewDeployCache creates a new DeployCache with the default directory
func NewDeployCache() *DeployCache {
	return NewDeployCacheWithPath(DefaultCacheDir)
}

// NewDeployCacheWithPath creates a new DeployCache with a custom directory
func NewDeployCacheWithPath(baseDir string) *DeployCache {
	return &DeployCache{
		baseDir:    baseDir,
		fileSystem: NewFileSystem(),
		records:    make(map[string]DeployRecord),
	}
}

// SaveFingerprint stores the configuration fingerprint last applied for a service
func (c *DeployCache) SaveFingerprint(service, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return err
	}

	c.records[service] = DeployRecord{Service: service, Fingerprint: fingerprint}

	return c.persist()
}

// GetFingerprint retrieves the configuration fingerprint last applied for a
// service.
// An unknown service is not an error; it returns an empty fingerprint.
func (c *DeployCache) GetFingerprint(service string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return "", err
	}

	if record, ok := c.records[service]; ok {
		return record.Fingerprint, nil
	}

	return "", nil
}

// Clear removes all stored records
func (c *DeployCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[string]DeployRecord)

	err := c.fileSystem.RemoveAll(c.cacheFilePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}

	return nil
}

// ensureLoaded makes sure the records are loaded from disk
func (c *DeployCache) ensureLoaded() error {
	if c.loaded {
		return nil
	}

	data, err := c.fileSystem.ReadFile(c.cacheFilePath())

	if os.IsNotExist(err) {
		c.loaded = true
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	var records []DeployRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}

	c.records = make(map[string]DeployRecord, len(records))
	for _, record := range records {
		c.records[record.Service] = record
	}

	c.loaded = true
	return nil
}

// persist saves the records to disk
func (c *DeployCache) persist() error {
	records := make([]DeployRecord, 0, len(c.records))
	for _, record := range c.records {
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	dir := filepath.Dir(c.cacheFilePath())
	if err := c.fileSystem.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := c.fileSystem.WriteFile(c.cacheFilePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// cacheFilePath returns the path to the cache file
func (c *DeployCache) cacheFilePath() string {
	return filepath.Join(c.baseDir, "deployments.json")
}

// Ensure DeployCache implements the AppliedCache interface
var _ plan.AppliedCache = (*DeployCache)(nil)
