package plan

import (
	"context"

	"github.com/nickalie/shipway/internal/core/service"
)

// PlatformClient is the injected platform API surface. Every mutation blocks
// until the platform acknowledges or the context expires.
type PlatformClient interface {
	// ReadState reports the current state of the named service.
	ReadState(ctx context.Context, name string) (*State, error)
	// EnsureService records the service and its type before the first
	// mutation. The type is immutable once recorded.
	EnsureService(ctx context.Context, name, serviceType string) error
	// BuildImage builds the service image from the given build settings.
	BuildImage(ctx context.Context, name string, build *service.BuildSpec) error
	// SetEnv replaces the service environment. Values are already resolved.
	SetEnv(ctx context.Context, name string, env []*service.EnvVar) error
	// UpdateResources changes the CPU/memory allocation.
	UpdateResources(ctx context.Context, name string, resources *service.ResourceSpec) error
	// UpdateRegions changes the deployment regions.
	UpdateRegions(ctx context.Context, name string, regions []string) error
	// UpdateHealthCheck reconfigures the port health checks.
	UpdateHealthCheck(ctx context.Context, name string, ports []*service.PortSpec) error
	// UpdateScaling changes the instance bounds.
	UpdateScaling(ctx context.Context, name string, scaling *service.ScalingSpec) error
	// UpdateRoutes replaces the routing table.
	UpdateRoutes(ctx context.Context, name string, routes []*service.RouteSpec) error
	// Close releases all resources associated with the client.
	Close()
}

// ClientFactory creates platform clients.
type ClientFactory interface {
	NewClient() (PlatformClient, error)
}

// SecretStore resolves secret references at apply time. Resolved values are
// passed to the platform and never persisted or logged.
type SecretStore interface {
	Resolve(name string) (string, error)
}

// AppliedCache remembers the configuration fingerprint last applied per
// service, letting unchanged manifests skip the platform round trip.
type AppliedCache interface {
	GetFingerprint(service string) (string, error)
	SaveFingerprint(service, fingerprint string) error
}
