package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/nickalie/shipway/internal/core/service"
)

func webConfig() *service.Config {
	return &service.Config{
		Name: "quiz-bot",
		Type: service.TypeWeb,
		Build: &service.BuildSpec{
			Context:    ".",
			Dockerfile: "Dockerfile",
		},
		Ports: []*service.PortSpec{
			{
				Port: 8080,
				HTTP: &service.HTTPSpec{
					Health: &service.HealthCheck{
						Path:   "/healthz",
						Period: service.Duration(15 * time.Second),
					},
				},
			},
		},
		Env: []*service.EnvVar{
			{Name: "LOG_LEVEL", Value: "info"},
			{Name: "BOT_TOKEN", Secret: "telegram-token"},
		},
		Resources: &service.ResourceSpec{CPU: 0.5, Memory: 256 * 1024 * 1024},
		Scaling:   &service.ScalingSpec{Min: 1, Max: 3},
		Regions:   []string{"fra", "iad"},
		Routes: []*service.RouteSpec{
			{Path: "/", Public: true},
		},
	}
}

func TestBuildFreshService(t *testing.T) {
	cfg := webConfig()

	p, err := Build(cfg, &State{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	expected := []ActionType{
		ActionBuildImage,
		ActionSetEnv,
		ActionUpdateResources,
		ActionUpdateRegions,
		ActionUpdateHealthCheck,
		ActionUpdateScaling,
		ActionUpdateRoutes,
	}

	if len(p.Actions) != len(expected) {
		t.Fatalf("Expected %d actions, got %d", len(expected), len(p.Actions))
	}
	for i, actionType := range expected {
		if p.Actions[i].GetType() != actionType {
			t.Errorf("Expected action %d to be %s, got %s", i, actionType, p.Actions[i].GetType())
		}
	}
}

func TestBuildNilStateTreatedAsFresh(t *testing.T) {
	cfg := webConfig()

	p, err := Build(cfg, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p.IsEmpty() {
		t.Error("Expected a non-empty plan for a service that does not exist")
	}
}

func TestBuildMatchingStateYieldsEmptyPlan(t *testing.T) {
	cfg := webConfig()

	p, err := Build(cfg, Project(cfg, &State{}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !p.IsEmpty() {
		names := make([]string, 0, len(p.Actions))
		for _, a := range p.Actions {
			names = append(names, a.Name())
		}
		t.Errorf("Expected empty plan for matching state, got %v", names)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	cfg := webConfig()

	first, err := Build(cfg, &State{})
	if err != nil {
		t.Fatalf("First plan failed: %v", err)
	}
	if first.IsEmpty() {
		t.Fatal("Expected first plan to contain actions")
	}

	// Applying the first plan moves the platform to the projected state.
	second, err := Build(cfg, Project(cfg, &State{}))
	if err != nil {
		t.Fatalf("Second plan failed: %v", err)
	}
	if !second.IsEmpty() {
		t.Errorf("Expected empty plan after apply, got %d actions", len(second.Actions))
	}
}

func TestBuildSingleFieldChanges(t *testing.T) {
	cfg := webConfig()
	base := Project(cfg, &State{})

	tests := []struct {
		name     string
		mutate   func(*service.Config)
		expected ActionType
	}{
		{
			name:     "dockerfile change rebuilds image",
			mutate:   func(c *service.Config) { c.Build.Dockerfile = "Dockerfile.prod" },
			expected: ActionBuildImage,
		},
		{
			name:     "env value change",
			mutate:   func(c *service.Config) { c.Env[0].Value = "debug" },
			expected: ActionSetEnv,
		},
		{
			name:     "secret reference change",
			mutate:   func(c *service.Config) { c.Env[1].Secret = "telegram-token-v2" },
			expected: ActionSetEnv,
		},
		{
			name:     "memory change",
			mutate:   func(c *service.Config) { c.Resources.Memory = 512 * 1024 * 1024 },
			expected: ActionUpdateResources,
		},
		{
			name:     "region added",
			mutate:   func(c *service.Config) { c.Regions = append(c.Regions, "sin") },
			expected: ActionUpdateRegions,
		},
		{
			name:     "health path change",
			mutate:   func(c *service.Config) { c.Ports[0].HTTP.Health.Path = "/live" },
			expected: ActionUpdateHealthCheck,
		},
		{
			name:     "scaling max change",
			mutate:   func(c *service.Config) { c.Scaling.Max = 5 },
			expected: ActionUpdateScaling,
		},
		{
			name:     "route visibility change",
			mutate:   func(c *service.Config) { c.Routes[0].Public = false },
			expected: ActionUpdateRoutes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := webConfig()
			tt.mutate(changed)

			p, err := Build(changed, base)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if len(p.Actions) != 1 {
				t.Fatalf("Expected exactly 1 action, got %d", len(p.Actions))
			}
			if p.Actions[0].GetType() != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, p.Actions[0].GetType())
			}
		})
	}
}

func TestBuildScalingZeroToOne(t *testing.T) {
	cfg := webConfig()
	current := Project(cfg, &State{})
	current.Scaling = &service.ScalingSpec{Min: 0, Max: 3}

	p, err := Build(cfg, current)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(p.Actions) != 1 {
		t.Fatalf("Expected exactly 1 action, got %d", len(p.Actions))
	}
	if p.Actions[0].GetType() != ActionUpdateScaling {
		t.Errorf("Expected update-scaling, got %s", p.Actions[0].Name())
	}
	if p.Actions[0].Scaling.Min != 1 {
		t.Errorf("Expected scaling min 1, got %d", p.Actions[0].Scaling.Min)
	}
}

func TestBuildHealthBeforeScalingRoutesLast(t *testing.T) {
	cfg := webConfig()
	current := Project(cfg, &State{})
	current.Ports = nil
	current.Scaling = nil
	current.Routes = nil

	p, err := Build(cfg, current)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	positions := make(map[ActionType]int)
	for i, action := range p.Actions {
		positions[action.GetType()] = i
	}

	health, hasHealth := positions[ActionUpdateHealthCheck]
	scaling, hasScaling := positions[ActionUpdateScaling]
	routes, hasRoutes := positions[ActionUpdateRoutes]

	if !hasHealth || !hasScaling || !hasRoutes {
		t.Fatalf("Expected health, scaling and routes actions, got %v", positions)
	}
	if health >= scaling {
		t.Error("Expected health check update before scaling update")
	}
	if routes != len(p.Actions)-1 {
		t.Error("Expected routes update to come last")
	}
}

func TestBuildRegionOrderDoesNotMatter(t *testing.T) {
	cfg := webConfig()
	current := Project(cfg, &State{})
	current.Regions = []string{"iad", "fra"}

	p, err := Build(cfg, current)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !p.IsEmpty() {
		t.Errorf("Expected empty plan for reordered regions, got %d actions", len(p.Actions))
	}
}

func TestBuildHealthDefaultsCompareEqual(t *testing.T) {
	cfg := webConfig()

	// The platform reports effective values; the manifest leaves defaults out.
	current := Project(cfg, &State{})
	current.Ports[0].HTTP.Health = cfg.Ports[0].GetHealth().Effective()

	p, err := Build(cfg, current)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !p.IsEmpty() {
		t.Errorf("Expected empty plan when only defaults differ, got %d actions", len(p.Actions))
	}
}

func TestBuildTypeChangeRejected(t *testing.T) {
	cfg := webConfig()
	current := Project(cfg, &State{})
	current.Type = service.TypeWorker

	_, err := Build(cfg, current)
	if err == nil {
		t.Fatal("Expected error for service type change")
	}

	var planErr *PlanningError
	if !errors.As(err, &planErr) {
		t.Fatalf("Expected PlanningError, got %T", err)
	}
	if planErr.Field != "service.type" {
		t.Errorf("Expected field service.type, got %s", planErr.Field)
	}
	if planErr.Service != "quiz-bot" {
		t.Errorf("Expected service quiz-bot, got %s", planErr.Service)
	}
}

func TestBuildDeterministic(t *testing.T) {
	cfg := webConfig()

	first, err := Build(cfg, &State{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		p, err := Build(cfg, &State{})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if len(p.Actions) != len(first.Actions) {
			t.Fatalf("Plan length changed between runs: %d vs %d", len(p.Actions), len(first.Actions))
		}
		for j := range p.Actions {
			if p.Actions[j].GetType() != first.Actions[j].GetType() {
				t.Errorf("Action %d changed between runs: %s vs %s",
					j, p.Actions[j].Name(), first.Actions[j].Name())
			}
		}
	}
}
