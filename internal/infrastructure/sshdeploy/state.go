package sshdeploy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nickalie/shipway/internal/core/plan"
	"github.com/nickalie/shipway/internal/core/service"
)

const stateRoot = ".shipway"

func serviceDir(name string) string {
	return stateRoot + "/" + name
}

func statePath(name string) string {
	return serviceDir(name) + "/state.json"
}

func envFilePath(name string) string {
	return serviceDir(name) + "/env"
}

func routesPath(name string) string {
	return serviceDir(name) + "/routes.json"
}

func imageTag(name, fingerprint string) string {
	return fmt.Sprintf("shipway/%s:%s", name, fingerprint)
}

// readState loads the applied state persisted on the host. A missing state
// file means the service has never been deployed.
func (c *Client) readState(name string) (*plan.State, error) {
	file, err := c.sftpClient.Open(statePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return &plan.State{}, nil
		}
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state plan.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	state.Exists = true
	return &state, nil
}

// updateState applies a mutation to the persisted state and writes it back.
func (c *Client) updateState(name string, mutate func(*plan.State)) error {
	state, err := c.readState(name)
	if err != nil {
		return err
	}

	mutate(state)
	state.Exists = true

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return c.writeFile(statePath(name), data)
}

// writeEnvFile writes the container env file with resolved values.
func (c *Client) writeEnvFile(name string, env []*service.EnvVar) error {
	content := ""
	for _, e := range env {
		content += fmt.Sprintf("%s=%s\n", e.Name, e.Value)
	}
	return c.writeFile(envFilePath(name), []byte(content))
}

// writeRoutesFile writes the routing table for the host's edge proxy.
func (c *Client) writeRoutesFile(name string, routes []*service.RouteSpec) error {
	data, err := json.MarshalIndent(routes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal routes: %w", err)
	}
	return c.writeFile(routesPath(name), data)
}

func (c *Client) writeFile(path string, data []byte) error {
	if err := c.sftpClient.MkdirAll(serviceDirOf(path)); err != nil {
		return fmt.Errorf("failed to create remote directory: %w", err)
	}

	file, err := c.sftpClient.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write remote file %s: %w", path, err)
	}

	return nil
}

func serviceDirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
