// Package plan computes and applies the difference between a desired service
// configuration and the state observed on the platform.
package plan

import (
	"github.com/nickalie/shipway/internal/core/service"
)

// ActionType identifies the kind of reconciliation action.
type ActionType int

const (
	// ActionBuildImage builds a new service image.
	ActionBuildImage ActionType = iota
	// ActionSetEnv replaces the service environment.
	ActionSetEnv
	// ActionUpdateResources changes the CPU/memory allocation.
	ActionUpdateResources
	// ActionUpdateRegions changes the deployment regions.
	ActionUpdateRegions
	// ActionUpdateHealthCheck reconfigures port health checks.
	ActionUpdateHealthCheck
	// ActionUpdateScaling changes the instance bounds.
	ActionUpdateScaling
	// ActionUpdateRoutes changes the public routing table.
	ActionUpdateRoutes
)

func (t ActionType) String() string {
	switch t {
	case ActionBuildImage:
		return "build-image"
	case ActionSetEnv:
		return "set-env"
	case ActionUpdateResources:
		return "update-resources"
	case ActionUpdateRegions:
		return "update-regions"
	case ActionUpdateHealthCheck:
		return "update-health-check"
	case ActionUpdateScaling:
		return "update-scaling"
	case ActionUpdateRoutes:
		return "update-routes"
	default:
		return "unknown"
	}
}

// MarshalText lets plans print action names in JSON output.
func (t ActionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Action is a single reconciliation step. Exactly one payload field is set,
// matching the action type.
type Action struct {
	Build     *service.BuildSpec    `json:"build,omitempty"`
	Env       []*service.EnvVar     `json:"env,omitempty"`
	Resources *service.ResourceSpec `json:"resources,omitempty"`
	Regions   []string              `json:"regions,omitempty"`
	Ports     []*service.PortSpec   `json:"ports,omitempty"`
	Scaling   *service.ScalingSpec  `json:"scaling,omitempty"`
	Routes    []*service.RouteSpec  `json:"routes,omitempty"`

	Type ActionType `json:"type"`
}

// GetType returns the action type.
func (a *Action) GetType() ActionType {
	return a.Type
}

// Name returns the action identifier used in reports and errors.
func (a *Action) Name() string {
	return a.Type.String()
}

// Plan is the ordered sequence of actions that reconciles the observed state
// with the desired configuration.
type Plan struct {
	Service string    `json:"service"`
	Actions []*Action `json:"actions"`
}

// IsEmpty reports whether the observed state already matches the desired one.
func (p *Plan) IsEmpty() bool {
	return len(p.Actions) == 0
}

// State is the platform-reported state of a deployed service.
type State struct {
	// Exists is false when the service has never been deployed.
	Exists bool `json:"exists"`
	// Type is the deployed service type; it cannot change once set.
	Type string `json:"type,omitempty"`
	// BuildFingerprint identifies the build settings of the current image.
	BuildFingerprint string                `json:"build_fingerprint,omitempty"`
	Env              []*service.EnvVar     `json:"env,omitempty"`
	Resources        *service.ResourceSpec `json:"resources,omitempty"`
	Regions          []string              `json:"regions,omitempty"`
	Ports            []*service.PortSpec   `json:"ports,omitempty"`
	Scaling          *service.ScalingSpec  `json:"scaling,omitempty"`
	Routes           []*service.RouteSpec  `json:"routes,omitempty"`
}
