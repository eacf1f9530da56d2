package plan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nickalie/shipway/internal/core/service"
)

// MinActionTimeout is the floor for the per-action timeout when none is
// configured explicitly.
const MinActionTimeout = 30 * time.Second

// Reconciler plans and applies service deployments through an injected
// platform client. Applies of the same service name are serialized.
type Reconciler struct {
	clientFactory ClientFactory
	secrets       SecretStore
	cache         AppliedCache
	timeout       time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ReconcilerOption defines functional options for Reconciler.
type ReconcilerOption func(*Reconciler)

// WithSecretStore sets the store used to resolve secret env references.
func WithSecretStore(store SecretStore) ReconcilerOption {
	return func(r *Reconciler) {
		r.secrets = store
	}
}

// WithActionTimeout sets a fixed per-action timeout instead of deriving one
// from the manifest's health-check settings.
func WithActionTimeout(timeout time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.timeout = timeout
	}
}

// WithAppliedCache lets the reconciler skip applies for manifests that have
// not changed since the last successful run.
func WithAppliedCache(cache AppliedCache) ReconcilerOption {
	return func(r *Reconciler) {
		r.cache = cache
	}
}

// NewReconciler creates a new reconciler with the provided client factory.
func NewReconciler(clientFactory ClientFactory, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		clientFactory: clientFactory,
		locks:         make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Report describes the outcome of an apply run. When an action fails the
// plan is not rolled back; applied, failed and remaining actions are all
// surfaced so the caller can decide on retry.
type Report struct {
	Service   string    `json:"service"`
	Applied   []*Action `json:"applied"`
	Failed    *Action   `json:"failed,omitempty"`
	Remaining []*Action `json:"remaining,omitempty"`
	Skipped   bool      `json:"skipped,omitempty"`
	Err       error     `json:"-"`
}

// Completed reports whether every planned action was applied.
func (r *Report) Completed() bool {
	return r.Failed == nil && len(r.Remaining) == 0
}

// Plan reads the current platform state and computes the action plan without
// mutating anything.
func (r *Reconciler) Plan(ctx context.Context, cfg *service.Config) (*Plan, error) {
	client, err := r.clientFactory.NewClient()
	if err != nil {
		return nil, &ConnectionError{Cause: err}
	}
	defer client.Close()

	current, err := client.ReadState(ctx, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform state: %w", err)
	}

	return Build(cfg, current)
}

// Apply computes the plan and applies it action by action. The first failure
// stops the run; the returned report always describes how far the run got.
// Cancellation is honored between actions, never within one.
func (r *Reconciler) Apply(ctx context.Context, cfg *service.Config) (*Report, error) {
	unlock := r.lockService(cfg.Name)
	defer unlock()

	if skipped, err := r.shouldSkip(cfg); err == nil && skipped {
		fmt.Printf("Skipping service '%s' (unchanged since last apply)\n", cfg.Name)
		return &Report{Service: cfg.Name, Skipped: true}, nil
	}

	client, err := r.clientFactory.NewClient()
	if err != nil {
		return nil, &ConnectionError{Cause: err}
	}
	defer client.Close()

	current, err := client.ReadState(ctx, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform state: %w", err)
	}

	p, err := Build(cfg, current)
	if err != nil {
		return nil, err
	}

	report := &Report{Service: cfg.Name}

	if !p.IsEmpty() {
		if err := client.EnsureService(ctx, cfg.Name, cfg.Type); err != nil {
			return nil, fmt.Errorf("failed to record service: %w", err)
		}
	}

	for i, action := range p.Actions {
		// Cancelled actions were never attempted, so they stay in Remaining.
		if err := ctx.Err(); err != nil {
			report.Remaining = p.Actions[i:]
			report.Err = err
			return report, err
		}

		fmt.Printf("[%d/%d] Applying %s...\n", i+1, len(p.Actions), action.Name())

		if err := r.applyAction(ctx, client, cfg, action); err != nil {
			applyErr := &ApplyError{Service: cfg.Name, Action: action.Name(), Cause: err}
			report.Failed = action
			report.Remaining = p.Actions[i+1:]
			report.Err = applyErr
			return report, applyErr
		}

		report.Applied = append(report.Applied, action)
	}

	if r.cache != nil {
		if err := r.cache.SaveFingerprint(cfg.Name, cfg.Fingerprint()); err != nil {
			fmt.Printf("Warning: failed to record applied fingerprint: %v\n", err)
		}
	}

	return report, nil
}

// shouldSkip reports whether the manifest is identical to the one applied in
// the last successful run. Cache errors fall back to a full apply.
func (r *Reconciler) shouldSkip(cfg *service.Config) (bool, error) {
	if r.cache == nil {
		return false, nil
	}

	applied, err := r.cache.GetFingerprint(cfg.Name)
	if err != nil {
		return false, err
	}

	return applied != "" && applied == cfg.Fingerprint(), nil
}

func (r *Reconciler) applyAction(ctx context.Context, client PlatformClient, cfg *service.Config, action *Action) error {
	actionCtx, cancel := context.WithTimeout(ctx, r.actionTimeout(cfg))
	defer cancel()

	switch action.GetType() {
	case ActionBuildImage:
		return client.BuildImage(actionCtx, cfg.Name, action.Build)
	case ActionSetEnv:
		env, err := r.resolveEnv(action.Env)
		if err != nil {
			return err
		}
		return client.SetEnv(actionCtx, cfg.Name, env)
	case ActionUpdateResources:
		return client.UpdateResources(actionCtx, cfg.Name, action.Resources)
	case ActionUpdateRegions:
		return client.UpdateRegions(actionCtx, cfg.Name, action.Regions)
	case ActionUpdateHealthCheck:
		return client.UpdateHealthCheck(actionCtx, cfg.Name, action.Ports)
	case ActionUpdateScaling:
		return client.UpdateScaling(actionCtx, cfg.Name, action.Scaling)
	case ActionUpdateRoutes:
		return client.UpdateRoutes(actionCtx, cfg.Name, action.Routes)
	default:
		return fmt.Errorf("unknown action type %d", action.GetType())
	}
}

// resolveEnv materializes secret references through the secret store. The
// resolved values go straight to the platform client and are never logged.
func (r *Reconciler) resolveEnv(env []*service.EnvVar) ([]*service.EnvVar, error) {
	resolved := make([]*service.EnvVar, 0, len(env))
	for _, e := range env {
		if !e.IsSecret() {
			resolved = append(resolved, &service.EnvVar{Name: e.Name, Value: e.Value})
			continue
		}

		if r.secrets == nil {
			return nil, &SecretError{
				EnvVar: e.Name,
				Ref:    e.Secret,
				Cause:  fmt.Errorf("no secret store configured"),
			}
		}

		value, err := r.secrets.Resolve(e.Secret)
		if err != nil {
			return nil, &SecretError{EnvVar: e.Name, Ref: e.Secret, Cause: err}
		}
		// The secret reference stays attached so the platform can tell
		// resolved secrets apart from literals and avoid persisting them.
		resolved = append(resolved, &service.EnvVar{Name: e.Name, Value: value, Secret: e.Secret})
	}
	return resolved, nil
}

// actionTimeout returns the configured timeout, or one derived from the
// slowest health check so a deploy is given time to become healthy.
func (r *Reconciler) actionTimeout(cfg *service.Config) time.Duration {
	if r.timeout > 0 {
		return r.timeout
	}

	timeout := MinActionTimeout
	for _, port := range cfg.Ports {
		health := port.GetHealth()
		if health == nil {
			continue
		}
		settle := health.InitialDelay.Std() +
			health.GetPeriod().Std()*time.Duration(health.GetFailThreshold())
		if settle > timeout {
			timeout = settle
		}
	}
	return timeout
}

func (r *Reconciler) lockService(name string) func() {
	r.mu.Lock()
	lock, ok := r.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[name] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
