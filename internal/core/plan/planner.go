package plan

import (
	"sort"

	"github.com/nickalie/shipway/internal/core/service"
)

// Build diffs the desired configuration against the observed state and
// returns the ordered action plan. Unchanged fields produce no action; an
// up-to-date service yields an empty plan.
//
// Ordering: image builds come first, health checks are configured before
// scaling changes, and routes are updated last so traffic only reaches the
// service once everything else is in place.
func Build(cfg *service.Config, current *State) (*Plan, error) {
	if current == nil {
		current = &State{}
	}

	if current.Exists && current.Type != "" && current.Type != cfg.Type {
		return nil, &PlanningError{
			Service: cfg.Name,
			Field:   "service.type",
			Message: "service type is immutable once deployed; delete the service to change it",
		}
	}

	p := &Plan{Service: cfg.Name}

	if cfg.Build != nil && cfg.Build.Fingerprint() != current.BuildFingerprint {
		p.Actions = append(p.Actions, &Action{Type: ActionBuildImage, Build: cfg.Build})
	}

	if !envEqual(cfg.Env, current.Env) {
		p.Actions = append(p.Actions, &Action{Type: ActionSetEnv, Env: cfg.Env})
	}

	if cfg.Resources != nil && !resourcesEqual(cfg.Resources, current.Resources) {
		p.Actions = append(p.Actions, &Action{Type: ActionUpdateResources, Resources: cfg.Resources})
	}

	if len(cfg.Regions) > 0 && !regionsEqual(cfg.Regions, current.Regions) {
		p.Actions = append(p.Actions, &Action{Type: ActionUpdateRegions, Regions: cfg.Regions})
	}

	desiredPorts := normalizePorts(cfg.Ports)
	if len(desiredPorts) > 0 && !portsEqual(desiredPorts, normalizePorts(current.Ports)) {
		p.Actions = append(p.Actions, &Action{Type: ActionUpdateHealthCheck, Ports: desiredPorts})
	}

	if cfg.Scaling != nil && !scalingEqual(cfg.Scaling, current.Scaling) {
		p.Actions = append(p.Actions, &Action{Type: ActionUpdateScaling, Scaling: cfg.Scaling})
	}

	if len(cfg.Routes) > 0 && !routesEqual(cfg.Routes, current.Routes) {
		p.Actions = append(p.Actions, &Action{Type: ActionUpdateRoutes, Routes: cfg.Routes})
	}

	return p, nil
}

// Project returns the state the platform reaches after the plan is fully
// applied. Planning against a projected state yields an empty plan.
func Project(cfg *service.Config, current *State) *State {
	next := &State{Exists: true, Type: cfg.Type}
	if current != nil {
		*next = *current
		next.Exists = true
		next.Type = cfg.Type
	}

	if cfg.Build != nil {
		next.BuildFingerprint = cfg.Build.Fingerprint()
	}
	next.Env = cfg.Env
	if cfg.Resources != nil {
		next.Resources = cfg.Resources
	}
	if len(cfg.Regions) > 0 {
		next.Regions = cfg.Regions
	}
	if len(cfg.Ports) > 0 {
		next.Ports = normalizePorts(cfg.Ports)
	}
	if cfg.Scaling != nil {
		next.Scaling = cfg.Scaling
	}
	if len(cfg.Routes) > 0 {
		next.Routes = cfg.Routes
	}

	return next
}

// normalizePorts fills in health-check defaults so desired ports compare
// cleanly against the effective values the platform reports.
func normalizePorts(ports []*service.PortSpec) []*service.PortSpec {
	if ports == nil {
		return nil
	}
	normalized := make([]*service.PortSpec, 0, len(ports))
	for _, port := range ports {
		p := &service.PortSpec{Port: port.Port}
		if health := port.GetHealth(); health != nil {
			p.HTTP = &service.HTTPSpec{Health: health.Effective()}
		}
		normalized = append(normalized, p)
	}
	return normalized
}

// Secret env entries are compared by reference, never by resolved value.
func envEqual(desired, current []*service.EnvVar) bool {
	if len(desired) != len(current) {
		return false
	}
	currentRefs := make(map[string]string, len(current))
	for _, env := range current {
		currentRefs[env.Name] = env.Ref()
	}
	for _, env := range desired {
		ref, ok := currentRefs[env.Name]
		if !ok || ref != env.Ref() {
			return false
		}
	}
	return true
}

func resourcesEqual(desired, current *service.ResourceSpec) bool {
	if current == nil {
		return false
	}
	return desired.CPU == current.CPU && desired.Memory == current.Memory
}

// Regions form a set; order in the manifest does not matter.
func regionsEqual(desired, current []string) bool {
	if len(desired) != len(current) {
		return false
	}
	d := append([]string(nil), desired...)
	c := append([]string(nil), current...)
	sort.Strings(d)
	sort.Strings(c)
	for i := range d {
		if d[i] != c[i] {
			return false
		}
	}
	return true
}

func portsEqual(desired, current []*service.PortSpec) bool {
	if len(desired) != len(current) {
		return false
	}
	for i := range desired {
		if desired[i].Port != current[i].Port {
			return false
		}
		dh, ch := desired[i].GetHealth(), current[i].GetHealth()
		if (dh == nil) != (ch == nil) {
			return false
		}
		if dh != nil && *dh != *ch {
			return false
		}
	}
	return true
}

func scalingEqual(desired, current *service.ScalingSpec) bool {
	if current == nil {
		return false
	}
	return desired.Min == current.Min && desired.Max == current.Max
}

func routesEqual(desired, current []*service.RouteSpec) bool {
	if len(desired) != len(current) {
		return false
	}
	for i := range desired {
		if *desired[i] != *current[i] {
			return false
		}
	}
	return true
}
