package sshdeploy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SSHSession represents an SSH session
type SSHSession interface {
	Start(string) error
	Wait() error
	StdoutPipe() (io.Reader, error)
	StderrPipe() (io.Reader, error)
	Close() error
}

// SSHClientInterface represents SSH client functionality
type SSHClientInterface interface {
	NewSession() (SSHSession, error)
	Close() error
}

// SFTPClientInterface represents SFTP client functionality
type SFTPClientInterface interface {
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)
	MkdirAll(path string) error
	Chmod(path string, mode os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	Close() error
}

// SSHAdapter adapts ssh.Client to our SSHClientInterface
type SSHAdapter struct {
	*ssh.Client
}

// NewSSHAdapter creates a new SSHAdapter instance
func NewSSHAdapter(client *ssh.Client) SSHClientInterface {
	return &SSHAdapter{Client: client}
}

// NewSession implements SSHClientInterface by adapting the underlying ssh.Client's NewSession method
func (a *SSHAdapter) NewSession() (SSHSession, error) {
	return a.Client.NewSession()
}

// SFTPAdapter adapts sftp.Client to our SFTPClientInterface
type SFTPAdapter struct {
	*sftp.Client
}

// NewSFTPAdapter creates a new SFTPAdapter instance wrapping the provided sftp.Client
func NewSFTPAdapter(client *sftp.Client) SFTPClientInterface {
	return &SFTPAdapter{Client: client}
}

// Create implements SFTPClientInterface
func (a *SFTPAdapter) Create(path string) (io.WriteCloser, error) {
	return a.Client.Create(path)
}

// Open implements SFTPClientInterface
func (a *SFTPAdapter) Open(path string) (io.ReadCloser, error) {
	return a.Client.Open(path)
}

// runShellCommand runs a shell command on the host and pipes output to the
// provided writers. Cancelling the context closes the session, which
// terminates the remote command.
func runShellCommand(ctx context.Context, session SSHSession, cmd string, stdout, stderr io.Writer) error {
	stdoutPipe, err := session.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	stderrPipe, err := session.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	cmd = fmt.Sprintf("sh -c %s", escapeCommand(cmd))
	if err := session.Start(cmd); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		pipeOutput(stdoutPipe, stdout)
		wg.Done()
	}()
	go func() {
		pipeOutput(stderrPipe, stderr)
		wg.Done()
	}()

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Close()
		<-done
		err = ctx.Err()
	}

	wg.Wait()

	if err != nil {
		return &CommandError{Command: cmd, Cause: err}
	}

	return nil
}

// escapeCommand escapes special characters in shell commands
func escapeCommand(cmd string) string {
	cmd = "'" + strings.ReplaceAll(cmd, "'", "'\\''") + "'"
	return strings.ReplaceAll(cmd, "`", "\\`")
}

// pipeOutput pipes output from a reader to a writer
func pipeOutput(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
}

// CommandError represents a remote command failure.
type CommandError struct {
	Command string
	Cause   error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command '%s' failed: %v", e.Command, e.Cause)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}
