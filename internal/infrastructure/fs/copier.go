// Package fs provides file system abstractions, remote copying and the
// local deployment cache.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nickalie/shipway/internal/util"
)

// RemoteFS abstracts the remote file operations needed to upload a build
// context.
type RemoteFS interface {
	Create(path string) (io.WriteCloser, error)
	MkdirAll(path string) error
	Chmod(path string, mode os.FileMode) error
	Stat(path string) (os.FileInfo, error)
}

// Copier uploads local files and directories to a remote file system.
type Copier struct {
	local  FileSystem
	remote RemoteFS
}

// NewCopier creates a new Copier instance
func NewCopier(local FileSystem, remote RemoteFS) *Copier {
	return &Copier{local: local, remote: remote}
}

// CopyPath copies a file or directory, skipping excluded paths.
func (c *Copier) CopyPath(local, remote string, exclude []string) error {
	info, err := c.local.Stat(local)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if info.IsDir() {
		return c.copyDir(local, remote, exclude)
	}
	return c.copyFile(local, remote, info.Mode())
}

func (c *Copier) copyFile(local, remote string, mode os.FileMode) error {
	localFile, err := c.local.Open(local)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer localFile.Close()

	remoteDir := filepath.ToSlash(filepath.Dir(remote))
	if err := c.remote.MkdirAll(remoteDir); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	remoteFile, err := c.remote.Create(remote)
	if err != nil {
		return fmt.Errorf("create destination file: %s, %w", remote, err)
	}
	defer remoteFile.Close()

	if _, err := io.Copy(remoteFile, localFile); err != nil {
		return fmt.Errorf("copy file content: %w", err)
	}

	if err := c.remote.Chmod(remote, mode); err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}

	return nil
}

func (c *Copier) copyDir(local, remote string, exclude []string) error {
	if err := c.remote.MkdirAll(filepath.ToSlash(remote)); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	entries, err := c.local.ReadDir(local)
	if err != nil {
		return fmt.Errorf("read source directory: %w", err)
	}

	for _, entry := range entries {
		localPath := filepath.Join(local, entry.Name())
		remotePath := filepath.ToSlash(filepath.Join(remote, entry.Name()))

		if util.IsExcluded(entry.Name(), exclude) {
			continue
		}

		if entry.IsDir() {
			if err := c.copyDir(localPath, remotePath, exclude); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat source file: %w", err)
		}
		if err := c.copyFile(localPath, remotePath, info.Mode()); err != nil {
			return err
		}
	}

	return nil
}
