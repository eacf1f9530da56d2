// Package sshdeploy implements the platform client for self-hosted targets:
// a single Docker host reached over SSH. Images are built on the host from
// an SFTP-uploaded context, containers carry the manifest's health checks
// and resources, and the applied state is persisted on the host so later
// runs can plan against it.
package sshdeploy

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nickalie/shipway/internal/core/plan"
	"github.com/nickalie/shipway/internal/core/service"
	"github.com/nickalie/shipway/internal/infrastructure/fs"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Build context uploads skip VCS and cache directories.
var defaultExcludes = []string{".git", ".shipway", "node_modules"}

// Factory implements plan.ClientFactory for a single SSH target.
type Factory struct {
	target     *Target
	fileSystem fs.FileSystem
}

// NewFactory creates a new platform client factory for the given target.
func NewFactory(target *Target) *Factory {
	return &Factory{
		target:     target,
		fileSystem: fs.NewFileSystem(),
	}
}

// NewClient connects to the target and returns a platform client.
func (f *Factory) NewClient() (plan.PlatformClient, error) {
	sshConfig := &ssh.ClientConfig{
		User:            f.target.User,
		Auth:            getAuthMethods(f.target),
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}

	sshClient, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", f.target.Host, f.target.GetPort()), sshConfig)
	if err != nil {
		return nil, &plan.ConnectionError{Cause: err}
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("SFTP connection failed: %w", err)
	}

	sftpAdapter := NewSFTPAdapter(sftpClient)

	return &Client{
		sshClient:  NewSSHAdapter(sshClient),
		sftpClient: sftpAdapter,
		copier:     fs.NewCopier(f.fileSystem, sftpAdapter),
	}, nil
}

// Client implements plan.PlatformClient over an SSH connection.
type Client struct {
	sshClient  SSHClientInterface
	sftpClient SFTPClientInterface
	copier     *fs.Copier
}

// ReadState reports the applied state persisted on the host.
func (c *Client) ReadState(ctx context.Context, name string) (*plan.State, error) {
	return c.readState(name)
}

// EnsureService persists the service type so later runs can reject a type
// change. The type is written once and never overwritten.
func (c *Client) EnsureService(ctx context.Context, name, serviceType string) error {
	return c.updateState(name, func(state *plan.State) {
		if state.Type == "" {
			state.Type = serviceType
		}
	})
}

// BuildImage uploads the build context and builds the service image on the host.
func (c *Client) BuildImage(ctx context.Context, name string, build *service.BuildSpec) error {
	contextDir := serviceDir(name) + "/context"

	fmt.Printf("Uploading build context '%s'...\n", build.GetContext())
	if err := c.copier.CopyPath(build.GetContext(), contextDir, defaultExcludes); err != nil {
		return fmt.Errorf("failed to upload build context: %w", err)
	}

	fingerprint := build.Fingerprint()
	cmd := fmt.Sprintf("docker build -t %s -f %s/%s %s",
		imageTag(name, fingerprint), contextDir, build.GetDockerfile(), contextDir)
	if err := c.run(ctx, cmd); err != nil {
		return err
	}

	return c.updateState(name, func(state *plan.State) {
		state.BuildFingerprint = fingerprint
	})
}

// SetEnv replaces the service environment. Resolved values go only into the
// container env file; the persisted state keeps secret references.
func (c *Client) SetEnv(ctx context.Context, name string, env []*service.EnvVar) error {
	if err := c.writeEnvFile(name, env); err != nil {
		return err
	}

	if err := c.updateState(name, func(state *plan.State) {
		state.Env = redactEnv(env)
	}); err != nil {
		return err
	}

	return c.redeploy(ctx, name)
}

// UpdateResources changes the CPU/memory limits of the containers.
func (c *Client) UpdateResources(ctx context.Context, name string, resources *service.ResourceSpec) error {
	if err := c.updateState(name, func(state *plan.State) {
		state.Resources = resources
	}); err != nil {
		return err
	}
	return c.redeploy(ctx, name)
}

// UpdateRegions records the desired regions. A single-host target has only
// one placement, so this updates bookkeeping only.
func (c *Client) UpdateRegions(ctx context.Context, name string, regions []string) error {
	return c.updateState(name, func(state *plan.State) {
		state.Regions = regions
	})
}

// UpdateHealthCheck reconfigures the container health checks.
func (c *Client) UpdateHealthCheck(ctx context.Context, name string, ports []*service.PortSpec) error {
	if err := c.updateState(name, func(state *plan.State) {
		state.Ports = ports
	}); err != nil {
		return err
	}
	return c.redeploy(ctx, name)
}

// UpdateScaling changes the number of running replicas.
func (c *Client) UpdateScaling(ctx context.Context, name string, scaling *service.ScalingSpec) error {
	if err := c.updateState(name, func(state *plan.State) {
		state.Scaling = scaling
	}); err != nil {
		return err
	}
	return c.redeploy(ctx, name)
}

// UpdateRoutes writes the routing table consumed by the host's edge proxy.
func (c *Client) UpdateRoutes(ctx context.Context, name string, routes []*service.RouteSpec) error {
	if err := c.writeRoutesFile(name, routes); err != nil {
		return err
	}
	return c.updateState(name, func(state *plan.State) {
		state.Routes = routes
	})
}

// Close releases the SSH and SFTP connections.
func (c *Client) Close() {
	if c.sftpClient != nil {
		_ = c.sftpClient.Close()
	}
	if c.sshClient != nil {
		_ = c.sshClient.Close()
	}
}

// redeploy recreates the service containers from the persisted state.
func (c *Client) redeploy(ctx context.Context, name string) error {
	state, err := c.readState(name)
	if err != nil {
		return err
	}

	// Nothing to run until an image has been built.
	if state.BuildFingerprint == "" {
		return nil
	}

	builder := NewRunCommandBuilder(name, state)
	return c.run(ctx, builder.Script())
}

func (c *Client) run(ctx context.Context, cmd string) error {
	session, err := c.sshClient.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	return runShellCommand(ctx, session, cmd, os.Stdout, os.Stderr)
}

// redactEnv strips resolved secret values before the state is persisted.
func redactEnv(env []*service.EnvVar) []*service.EnvVar {
	redacted := make([]*service.EnvVar, 0, len(env))
	for _, e := range env {
		if e.IsSecret() {
			redacted = append(redacted, &service.EnvVar{Name: e.Name, Secret: e.Secret})
			continue
		}
		redacted = append(redacted, &service.EnvVar{Name: e.Name, Value: e.Value})
	}
	return redacted
}

func getAuthMethods(tgt *Target) []ssh.AuthMethod {
	methods := []ssh.AuthMethod{}

	if tgt.PrivateKey != "" {
		if key, err := loadPrivateKey(tgt.PrivateKey); err == nil {
			methods = append(methods, key)
		}
	}

	if tgt.Password != "" {
		methods = append(methods, ssh.Password(tgt.Password))
	}

	return methods
}

func loadPrivateKey(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}
