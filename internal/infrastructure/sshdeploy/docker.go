package sshdeploy

import (
	"fmt"
	"strings"

	"github.com/nickalie/shipway/internal/core/plan"
)

// RunCommandBuilder constructs the Docker commands that bring the service
// containers in line with the applied state.
type RunCommandBuilder struct {
	name  string
	state *plan.State
}

// NewRunCommandBuilder creates a new RunCommandBuilder
func NewRunCommandBuilder(name string, state *plan.State) *RunCommandBuilder {
	return &RunCommandBuilder{name: name, state: state}
}

// Replicas returns the number of containers to run, the scaling minimum.
func (b *RunCommandBuilder) Replicas() int {
	if b.state.Scaling == nil {
		return 1
	}
	return b.state.Scaling.Min
}

// Script returns the shell script that removes stale replicas and starts the
// desired ones.
func (b *RunCommandBuilder) Script() string {
	return strings.Join(b.BuildCommands(), "\n")
}

// BuildCommands builds the list of Docker commands
func (b *RunCommandBuilder) BuildCommands() []string {
	commands := make([]string, 0)

	// Stale replicas above the desired count are removed too, so a scale
	// down converges.
	commands = append(commands,
		fmt.Sprintf("docker ps -aq --filter label=shipway.service=%s | xargs -r docker rm -f", b.name))

	for i := 1; i <= b.Replicas(); i++ {
		commands = append(commands, b.buildRunCommand(i))
	}

	return commands
}

// buildRunCommand builds the docker run command for one replica
func (b *RunCommandBuilder) buildRunCommand(replica int) string {
	args := []string{"docker run -d"}

	args = append(args, "--name", fmt.Sprintf("%s-%d", b.name, replica))
	args = append(args, "-l", fmt.Sprintf("shipway.service=%s", b.name))
	args = append(args, "--restart", "unless-stopped")
	args = append(args, "--env-file", envFilePath(b.name))

	// Only the first replica binds host ports.
	if replica == 1 {
		for _, port := range b.state.Ports {
			args = append(args, "-p", fmt.Sprintf("%d:%d", port.Port, port.Port))
		}
	}

	args = append(args, b.healthArgs()...)
	args = append(args, b.resourceArgs()...)

	args = append(args, imageTag(b.name, b.state.BuildFingerprint))

	return strings.Join(args, " ")
}

// healthArgs maps the first configured health check onto Docker's probe flags
func (b *RunCommandBuilder) healthArgs() []string {
	for _, port := range b.state.Ports {
		health := port.GetHealth()
		if health == nil {
			continue
		}

		return []string{
			"--health-cmd", fmt.Sprintf("'curl -sf http://localhost:%d%s || exit 1'", port.Port, health.Path),
			"--health-interval", health.GetPeriod().String(),
			"--health-timeout", health.GetTimeout().String(),
			"--health-retries", fmt.Sprintf("%d", health.GetFailThreshold()),
			"--health-start-period", health.InitialDelay.String(),
		}
	}
	return nil
}

// resourceArgs maps the resource spec onto Docker's limit flags
func (b *RunCommandBuilder) resourceArgs() []string {
	if b.state.Resources == nil {
		return nil
	}

	args := make([]string, 0, 4)
	if b.state.Resources.CPU > 0 {
		args = append(args, "--cpus", fmt.Sprintf("%g", b.state.Resources.CPU))
	}
	if b.state.Resources.Memory > 0 {
		args = append(args, "--memory", fmt.Sprintf("%db", int64(b.state.Resources.Memory)))
	}
	return args
}
