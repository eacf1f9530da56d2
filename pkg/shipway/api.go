// Package shipway provides a public API for validating and reconciling
// deployment manifests. It exposes simplified entry points over the core
// packages so other tools can embed manifest validation or drive
// deployments programmatically.
package shipway

import (
	"context"

	"github.com/nickalie/shipway/internal/core/plan"
	"github.com/nickalie/shipway/internal/core/service"
	"github.com/nickalie/shipway/internal/core/validate"
	"github.com/nickalie/shipway/internal/manifest"
)

// Manifest is a deployment manifest document
type Manifest = manifest.Manifest

// Config is the typed service configuration
type Config = service.Config

// BuildSpec describes how the service image is produced
type BuildSpec = service.BuildSpec

// EnvVar is a single environment entry
type EnvVar = service.EnvVar

// HealthCheck is an HTTP health probe configuration
type HealthCheck = service.HealthCheck

// Issue is a validation finding
type Issue = validate.Issue

// Limits are the platform rules validated against
type Limits = validate.Limits

// Plan is an ordered reconciliation plan
type Plan = plan.Plan

// Action is a single reconciliation action
type Action = plan.Action

// Report is the outcome of an apply run
type Report = plan.Report

// PlatformClient is the injected platform API surface
type PlatformClient = plan.PlatformClient

// SecretStore resolves secret references at apply time
type SecretStore = plan.SecretStore

// Builder builds manifests programmatically
type Builder = manifest.Builder

// NewBuilder creates a new manifest builder for the given service name
func NewBuilder(name string) *Builder {
	return manifest.NewBuilder(name)
}

// LoadManifest loads and structurally validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	loader := manifest.NewLoader()
	return loader.Load(path)
}

// Validate applies the default platform rules to a manifest.
func Validate(m *Manifest) []Issue {
	return validate.Config(m.Config(), validate.DefaultLimits())
}

// ValidateWithLimits applies custom platform rules to a manifest.
func ValidateWithLimits(m *Manifest, limits Limits) []Issue {
	return validate.Config(m.Config(), limits)
}

// BuildPlan computes the reconciliation plan for a manifest against an
// observed platform state.
func BuildPlan(m *Manifest, current *plan.State) (*Plan, error) {
	return plan.Build(m.Config(), current)
}

// Apply reconciles a manifest through the given platform client factory and
// secret store.
func Apply(ctx context.Context, m *Manifest, factory plan.ClientFactory, store SecretStore) (*Report, error) {
	reconciler := plan.NewReconciler(factory, plan.WithSecretStore(store))
	return reconciler.Apply(ctx, m.Config())
}
