package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeployCacheRoundTrip(t *testing.T) {
	cache := NewDeployCacheWithPath(t.TempDir())

	fingerprint, err := cache.GetFingerprint("quiz-bot")
	assert.NoError(t, err)
	assert.Empty(t, fingerprint, "unknown service should yield empty fingerprint")

	err = cache.SaveFingerprint("quiz-bot", "abc123")
	assert.NoError(t, err)

	fingerprint, err = cache.GetFingerprint("quiz-bot")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", fingerprint)
}

func TestDeployCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewDeployCacheWithPath(dir)
	assert.NoError(t, first.SaveFingerprint("quiz-bot", "abc123"))
	assert.NoError(t, first.SaveFingerprint("worker", "def456"))

	second := NewDeployCacheWithPath(dir)
	fingerprint, err := second.GetFingerprint("quiz-bot")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", fingerprint)

	fingerprint, err = second.GetFingerprint("worker")
	assert.NoError(t, err)
	assert.Equal(t, "def456", fingerprint)
}

func TestDeployCacheOverwrite(t *testing.T) {
	cache := NewDeployCacheWithPath(t.TempDir())

	assert.NoError(t, cache.SaveFingerprint("quiz-bot", "old"))
	assert.NoError(t, cache.SaveFingerprint("quiz-bot", "new"))

	fingerprint, err := cache.GetFingerprint("quiz-bot")
	assert.NoError(t, err)
	assert.Equal(t, "new", fingerprint)
}

func TestDeployCacheClear(t *testing.T) {
	dir := t.TempDir()
	cache := NewDeployCacheWithPath(dir)

	assert.NoError(t, cache.SaveFingerprint("quiz-bot", "abc123"))
	assert.NoError(t, cache.Clear())

	fingerprint, err := cache.GetFingerprint("quiz-bot")
	assert.NoError(t, err)
	assert.Empty(t, fingerprint)

	_, err = os.Stat(filepath.Join(dir, "deployments.json"))
	assert.True(t, os.IsNotExist(err), "expected cache file to be removed")
}

func TestDeployCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deployments.json")
	assert.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	cache := NewDeployCacheWithPath(dir)
	_, err := cache.GetFingerprint("quiz-bot")
	assert.Error(t, err)
}

func TestDeployCacheReadFailure(t *testing.T) {
	cache := &DeployCache{
		baseDir: ".shipway",
		fileSystem: &MockFileSystem{
			ReadFileFunc: func(name string) ([]byte, error) {
				return nil, errors.New("disk on fire")
			},
		},
		records: make(map[string]DeployRecord),
	}

	_, err := cache.GetFingerprint("quiz-bot")
	assert.Error(t, err)
}
