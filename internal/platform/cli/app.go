// Package cli provides the command-line interface functionality for the shipway
// application. It ties together environment loading, manifest parsing, platform
// rule validation and reconciliation, and serves as the entry point for the
// validate, plan and apply commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/nickalie/shipway/internal/core/plan"
	"github.com/nickalie/shipway/internal/core/service"
	"github.com/nickalie/shipway/internal/core/validate"
	"github.com/nickalie/shipway/internal/infrastructure/env"
	"github.com/nickalie/shipway/internal/infrastructure/fs"
	"github.com/nickalie/shipway/internal/infrastructure/secrets"
	"github.com/nickalie/shipway/internal/infrastructure/sshdeploy"
	"github.com/nickalie/shipway/internal/manifest"
)

// EnvLoader defines the interface for loading environment variables
type EnvLoader interface {
	Load(path, vaultPassword string) error
}

// ManifestLoader defines the interface for loading manifests
type ManifestLoader interface {
	Load(path string) (*manifest.Manifest, error)
}

// Reconciler defines the interface for planning and applying deployments
type Reconciler interface {
	Plan(ctx context.Context, cfg *service.Config) (*plan.Plan, error)
	Apply(ctx context.Context, cfg *service.Config) (*plan.Report, error)
}

// App represents the main application structure that handles manifest
// loading, validation and reconciliation.
type App struct {
	envLoader      EnvLoader
	manifestLoader ManifestLoader
	reconciler     Reconciler
	limits         validate.Limits
}

// AppOption is a function that modifies an App
type AppOption func(*App)

// WithStrictParsing makes the manifest loader reject unknown fields.
func WithStrictParsing(strict bool) AppOption {
	return func(app *App) {
		app.manifestLoader = manifest.NewLoader(manifest.WithStrict(strict))
	}
}

// WithTarget wires a reconciler deploying to the given SSH target. When
// skipUnchanged is set, manifests identical to the last applied one skip the
// platform round trip.
func WithTarget(target *sshdeploy.Target, store plan.SecretStore, timeout time.Duration, skipUnchanged bool) AppOption {
	return func(app *App) {
		opts := []plan.ReconcilerOption{plan.WithSecretStore(store)}
		if timeout > 0 {
			opts = append(opts, plan.WithActionTimeout(timeout))
		}
		if skipUnchanged {
			opts = append(opts, plan.WithAppliedCache(fs.NewDeployCache()))
		}
		app.reconciler = plan.NewReconciler(sshdeploy.NewFactory(target), opts...)
	}
}

// WithLimits overrides the platform limits used during validation.
func WithLimits(limits validate.Limits) AppOption {
	return func(app *App) {
		app.limits = limits
	}
}

// NewApp creates and returns a new App instance with default implementations
// for all dependencies.
func NewApp(opts ...AppOption) *App {
	app := &App{
		envLoader:      env.NewLoader(),
		manifestLoader: manifest.NewLoader(),
		limits:         validate.DefaultLimits(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// NewAppWithDeps creates and returns a new App instance with custom dependencies
func NewAppWithDeps(envLoader EnvLoader, manifestLoader ManifestLoader, reconciler Reconciler) *App {
	return &App{
		envLoader:      envLoader,
		manifestLoader: manifestLoader,
		reconciler:     reconciler,
		limits:         validate.DefaultLimits(),
	}
}

// NewSecretStore builds the secret store used at apply time: an Ansible
// Vault file when one is given, the process environment otherwise.
func NewSecretStore(vaultPath, vaultPassword string) (plan.SecretStore, error) {
	if vaultPath != "" {
		return secrets.NewVaultStore(vaultPath, vaultPassword), nil
	}
	return secrets.NewEnvStore()
}

// Validate loads the manifest and reports every platform rule violation.
// The returned error is non-nil when any issue is error-severity.
func (a *App) Validate(manifestPath string, envPaths []string, vaultPassword string) ([]validate.Issue, error) {
	cfg, err := a.loadConfig(manifestPath, envPaths, vaultPassword)
	if err != nil {
		return nil, err
	}

	return validate.RequireValid(cfg, a.limits)
}

// Plan validates the manifest and computes the action plan without touching
// the platform state.
func (a *App) Plan(ctx context.Context, manifestPath string, envPaths []string, vaultPassword string) (*plan.Plan, error) {
	cfg, err := a.validConfig(manifestPath, envPaths, vaultPassword)
	if err != nil {
		return nil, err
	}

	reconciler, err := a.getReconciler()
	if err != nil {
		return nil, err
	}

	return reconciler.Plan(ctx, cfg)
}

// Apply validates the manifest, computes the plan and applies it.
func (a *App) Apply(ctx context.Context, manifestPath string, envPaths []string, vaultPassword string) (*plan.Report, error) {
	cfg, err := a.validConfig(manifestPath, envPaths, vaultPassword)
	if err != nil {
		return nil, err
	}

	reconciler, err := a.getReconciler()
	if err != nil {
		return nil, err
	}

	return reconciler.Apply(ctx, cfg)
}

func (a *App) getReconciler() (Reconciler, error) {
	if a.reconciler == nil {
		return nil, fmt.Errorf("no deployment target configured")
	}
	return a.reconciler, nil
}

// loadConfig loads env files and the manifest, returning the typed config.
func (a *App) loadConfig(manifestPath string, envPaths []string, vaultPassword string) (*service.Config, error) {
	for _, path := range envPaths {
		if err := a.envLoader.Load(path, vaultPassword); err != nil {
			return nil, fmt.Errorf("failed to load environment file %s: %w", path, err)
		}
	}

	m, err := a.manifestLoader.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("manifest loading failed: %w", err)
	}

	return m.Config(), nil
}

// validConfig loads the config and refuses to continue on validation errors.
func (a *App) validConfig(manifestPath string, envPaths []string, vaultPassword string) (*service.Config, error) {
	cfg, err := a.loadConfig(manifestPath, envPaths, vaultPassword)
	if err != nil {
		return nil, err
	}

	issues, err := validate.RequireValid(cfg, a.limits)
	if err != nil {
		return nil, err
	}

	for _, issue := range issues {
		fmt.Printf("%s\n", issue)
	}

	return cfg, nil
}
