package validate

import (
	"fmt"
	"strings"

	"github.com/nickalie/shipway/internal/core/service"
)

// Limits carries the platform-defined floors and whitelists that validation
// checks against.
type Limits struct {
	MinCPU         float64
	MinMemory      service.ByteSize
	AllowedRegions []string
}

// DefaultLimits returns the limits of the hosted platform.
func DefaultLimits() Limits {
	return Limits{
		MinCPU:         0.1,
		MinMemory:      64 * 1024 * 1024,
		AllowedRegions: []string{"fra", "iad", "sin"},
	}
}

func (l Limits) regionAllowed(region string) bool {
	for _, allowed := range l.AllowedRegions {
		if allowed == region {
			return true
		}
	}
	return false
}

// Config validates a service configuration against the given limits and
// returns every issue found, in manifest order.
func Config(cfg *service.Config, limits Limits) []Issue {
	var issues []Issue

	issues = append(issues, checkPorts(cfg)...)
	issues = append(issues, checkEnv(cfg)...)
	issues = append(issues, checkResources(cfg, limits)...)
	issues = append(issues, checkScaling(cfg)...)
	issues = append(issues, checkRegions(cfg, limits)...)
	issues = append(issues, checkRoutes(cfg)...)

	return issues
}

// RequireValid validates the configuration and returns an Error when any
// error-severity issue is present.
func RequireValid(cfg *service.Config, limits Limits) ([]Issue, error) {
	issues := Config(cfg, limits)
	if HasErrors(issues) {
		return issues, &Error{Issues: issues}
	}
	return issues, nil
}

func checkPorts(cfg *service.Config) []Issue {
	var issues []Issue

	if cfg.Type == service.TypeWeb && len(cfg.Ports) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.ports",
			Message:  "web services must expose at least one port",
		})
	}

	seen := make(map[int]int)
	for i, port := range cfg.Ports {
		path := fmt.Sprintf("service.ports[%d]", i)

		if port.Port < 1 || port.Port > 65535 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".port",
				Message:  fmt.Sprintf("port %d is outside the valid range 1-65535", port.Port),
			})
		}

		if first, ok := seen[port.Port]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".port",
				Message:  fmt.Sprintf("port %d already declared at service.ports[%d].port", port.Port, first),
			})
		} else {
			seen[port.Port] = i
		}

		issues = append(issues, checkHealth(port, path)...)
	}

	return issues
}

func checkHealth(port *service.PortSpec, path string) []Issue {
	health := port.GetHealth()
	if health == nil {
		return nil
	}

	var issues []Issue
	healthPath := path + ".http.health"

	if health.Path == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     healthPath + ".path",
			Message:  "health check path must not be empty",
		})
	} else if !strings.HasPrefix(health.Path, "/") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     healthPath + ".path",
			Message:  fmt.Sprintf("health check path %q must start with /", health.Path),
		})
	}

	if health.GetTimeout() >= health.GetPeriod() {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     healthPath + ".timeout",
			Message: fmt.Sprintf("timeout %s must be shorter than period %s",
				health.GetTimeout(), health.GetPeriod()),
		})
	}

	if health.FailThreshold < 0 || health.GetFailThreshold() < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     healthPath + ".fail-threshold",
			Message:  "fail-threshold must be at least 1",
		})
	}

	if health.SuccessThreshold < 0 || health.GetSuccessThreshold() < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     healthPath + ".success-threshold",
			Message:  "success-threshold must be at least 1",
		})
	}

	if health.InitialDelay < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     healthPath + ".initial-delay",
			Message:  "initial-delay must not be negative",
		})
	}

	return issues
}

func checkEnv(cfg *service.Config) []Issue {
	var issues []Issue

	seen := make(map[string]int)
	for i, env := range cfg.Env {
		path := fmt.Sprintf("service.env[%d]", i)

		if env.Name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "env var name must not be empty",
			})
			continue
		}

		if first, ok := seen[env.Name]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("env var %q already declared at service.env[%d].name", env.Name, first),
			})
		} else {
			seen[env.Name] = i
		}

		switch {
		case env.Value != "" && env.Secret != "":
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("env var %q sets both value and secret; they are mutually exclusive", env.Name),
			})
		case env.Value == "" && env.Secret == "":
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("env var %q has neither value nor secret; it resolves to an empty string", env.Name),
			})
		}
	}

	return issues
}

func checkResources(cfg *service.Config, limits Limits) []Issue {
	if cfg.Resources == nil {
		return nil
	}

	var issues []Issue

	if cfg.Resources.CPU <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.resources.cpu",
			Message:  "cpu must be a positive number",
		})
	} else if cfg.Resources.CPU < limits.MinCPU {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.resources.cpu",
			Message:  fmt.Sprintf("cpu %g is below the platform minimum %g", cfg.Resources.CPU, limits.MinCPU),
		})
	}

	if cfg.Resources.Memory <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.resources.memory",
			Message:  "memory must be a positive byte quantity",
		})
	} else if cfg.Resources.Memory < limits.MinMemory {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.resources.memory",
			Message:  fmt.Sprintf("memory %s is below the platform minimum %s", cfg.Resources.Memory, limits.MinMemory),
		})
	}

	return issues
}

func checkScaling(cfg *service.Config) []Issue {
	if cfg.Scaling == nil {
		return nil
	}

	var issues []Issue

	if cfg.Scaling.Min < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.scaling.min",
			Message:  "scaling min must not be negative",
		})
	}
	if cfg.Scaling.Max < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.scaling.max",
			Message:  "scaling max must not be negative",
		})
	}
	if cfg.Scaling.Min >= 0 && cfg.Scaling.Max >= 0 && cfg.Scaling.Min > cfg.Scaling.Max {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "service.scaling",
			Message:  fmt.Sprintf("scaling min %d exceeds max %d", cfg.Scaling.Min, cfg.Scaling.Max),
		})
	}
	if cfg.Scaling.Max == 0 && cfg.Scaling.Min == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "service.scaling",
			Message:  "scaling max of 0 means the service never runs",
		})
	}

	return issues
}

func checkRegions(cfg *service.Config, limits Limits) []Issue {
	var issues []Issue

	for i, region := range cfg.Regions {
		if !limits.regionAllowed(region) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("service.regions[%d]", i),
				Message: fmt.Sprintf("region %q is not available; allowed regions: %s",
					region, strings.Join(limits.AllowedRegions, ", ")),
			})
		}
	}

	return issues
}

func checkRoutes(cfg *service.Config) []Issue {
	var issues []Issue

	seen := make(map[string]int)
	for i, route := range cfg.Routes {
		path := fmt.Sprintf("service.routes[%d].path", i)

		if route.Path == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "route path must not be empty",
			})
			continue
		}
		if !strings.HasPrefix(route.Path, "/") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("route path %q must start with /", route.Path),
			})
		}

		if first, ok := seen[route.Path]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("route path %q already declared at service.routes[%d].path", route.Path, first),
			})
		} else {
			seen[route.Path] = i
		}
	}

	return issues
}
