// Package service defines the typed representation of a service deployment
// manifest: what to build, which ports to expose, how to scale and where to run.
package service

// Service types supported by the platform.
const (
	TypeWeb    = "web"
	TypeWorker = "worker"
	TypeCron   = "cron"
)

// Config describes the desired state of a single service. It is built once
// from a manifest, validated, and treated as immutable afterwards.
type Config struct {
	Name      string        `yaml:"-" json:"-" toml:"-"`
	Type      string        `yaml:"type" json:"type" toml:"type" validate:"required,oneof=web worker cron"`
	Build     *BuildSpec    `yaml:"build,omitempty" json:"build,omitempty" toml:"build,omitempty" validate:"required_without=Ports"`
	Ports     []*PortSpec   `yaml:"ports,omitempty" json:"ports,omitempty" toml:"ports,omitempty" validate:"required_if=Type web,omitempty,dive"`
	Env       []*EnvVar     `yaml:"env,omitempty" json:"env,omitempty" toml:"env,omitempty" validate:"omitempty,dive"`
	Resources *ResourceSpec `yaml:"resources,omitempty" json:"resources,omitempty" toml:"resources,omitempty"`
	Scaling   *ScalingSpec  `yaml:"scaling,omitempty" json:"scaling,omitempty" toml:"scaling,omitempty"`
	Regions   []string      `yaml:"regions,omitempty" json:"regions,omitempty" toml:"regions,omitempty"`
	Routes    []*RouteSpec  `yaml:"routes,omitempty" json:"routes,omitempty" toml:"routes,omitempty" validate:"omitempty,dive"`
}

// BuildSpec describes how the service image is produced.
type BuildSpec struct {
	Builder    string `yaml:"builder,omitempty" json:"builder,omitempty" toml:"builder,omitempty"`
	Context    string `yaml:"context,omitempty" json:"context,omitempty" toml:"context,omitempty"`
	Dockerfile string `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty" toml:"dockerfile,omitempty"`
}

// GetBuilder returns the builder to use, defaulting to dockerfile.
func (b *BuildSpec) GetBuilder() string {
	if b.Builder == "" {
		return "dockerfile"
	}
	return b.Builder
}

// GetContext returns the build context, defaulting to the current directory.
func (b *BuildSpec) GetContext() string {
	if b.Context == "" {
		return "."
	}
	return b.Context
}

// GetDockerfile returns the Dockerfile path, defaulting to Dockerfile.
func (b *BuildSpec) GetDockerfile() string {
	if b.Dockerfile == "" {
		return "Dockerfile"
	}
	return b.Dockerfile
}

// PortSpec describes a listening port and its optional HTTP configuration.
type PortSpec struct {
	Port int       `yaml:"port" json:"port" toml:"port" validate:"required,min=1,max=65535"`
	HTTP *HTTPSpec `yaml:"http,omitempty" json:"http,omitempty" toml:"http,omitempty"`
}

// HTTPSpec holds HTTP-level settings for a port.
type HTTPSpec struct {
	Health *HealthCheck `yaml:"health,omitempty" json:"health,omitempty" toml:"health,omitempty"`
}

// GetHealth returns the health check configured for the port, or nil.
func (p *PortSpec) GetHealth() *HealthCheck {
	if p.HTTP == nil {
		return nil
	}
	return p.HTTP.Health
}

// HealthCheck describes an HTTP health probe on a port.
type HealthCheck struct {
	Path             string   `yaml:"path" json:"path" toml:"path" validate:"required"`
	Period           Duration `yaml:"period,omitempty" json:"period,omitempty" toml:"period,omitempty"`
	InitialDelay     Duration `yaml:"initial-delay,omitempty" json:"initial-delay,omitempty" toml:"initial-delay,omitempty"`
	FailThreshold    int      `yaml:"fail-threshold,omitempty" json:"fail-threshold,omitempty" toml:"fail-threshold,omitempty"`
	SuccessThreshold int      `yaml:"success-threshold,omitempty" json:"success-threshold,omitempty" toml:"success-threshold,omitempty"`
	Timeout          Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" toml:"timeout,omitempty"`
}

// GetPeriod returns the probe period, defaulting to 10s.
func (h *HealthCheck) GetPeriod() Duration {
	if h.Period == 0 {
		return DefaultHealthPeriod
	}
	return h.Period
}

// GetTimeout returns the probe timeout, defaulting to 5s.
func (h *HealthCheck) GetTimeout() Duration {
	if h.Timeout == 0 {
		return DefaultHealthTimeout
	}
	return h.Timeout
}

// GetFailThreshold returns the failure threshold, defaulting to 3.
func (h *HealthCheck) GetFailThreshold() int {
	if h.FailThreshold == 0 {
		return 3
	}
	return h.FailThreshold
}

// GetSuccessThreshold returns the success threshold, defaulting to 1.
func (h *HealthCheck) GetSuccessThreshold() int {
	if h.SuccessThreshold == 0 {
		return 1
	}
	return h.SuccessThreshold
}

// Effective returns a copy of the health check with defaults filled in,
// suitable for comparing against state reported by the platform.
func (h *HealthCheck) Effective() *HealthCheck {
	return &HealthCheck{
		Path:             h.Path,
		Period:           h.GetPeriod(),
		InitialDelay:     h.InitialDelay,
		FailThreshold:    h.GetFailThreshold(),
		SuccessThreshold: h.GetSuccessThreshold(),
		Timeout:          h.GetTimeout(),
	}
}

// EnvVar is a single environment entry: either a literal value or a
// reference to a named secret, never both.
type EnvVar struct {
	Name   string `yaml:"name" json:"name" toml:"name" validate:"required"`
	Value  string `yaml:"value,omitempty" json:"value,omitempty" toml:"value,omitempty"`
	Secret string `yaml:"secret,omitempty" json:"secret,omitempty" toml:"secret,omitempty"`
}

// IsSecret reports whether the entry references a secret.
func (e *EnvVar) IsSecret() bool {
	return e.Secret != ""
}

// Ref returns a comparable representation of the entry's value: the literal
// value, or the secret reference prefixed with "secret:". Secret material is
// never part of the result.
func (e *EnvVar) Ref() string {
	if e.IsSecret() {
		return "secret:" + e.Secret
	}
	return e.Value
}

// ResourceSpec describes the CPU and memory allocation of the service.
type ResourceSpec struct {
	CPU    float64  `yaml:"cpu,omitempty" json:"cpu,omitempty" toml:"cpu,omitempty"`
	Memory ByteSize `yaml:"memory,omitempty" json:"memory,omitempty" toml:"memory,omitempty"`
}

// ScalingSpec bounds the number of instances. Min of zero means the service
// may scale to zero.
type ScalingSpec struct {
	Min int `yaml:"min" json:"min" toml:"min"`
	Max int `yaml:"max" json:"max" toml:"max"`
}

// RouteSpec maps a public or private path to the service.
type RouteSpec struct {
	Path   string `yaml:"path" json:"path" toml:"path" validate:"required"`
	Public bool   `yaml:"public,omitempty" json:"public,omitempty" toml:"public,omitempty"`
}
