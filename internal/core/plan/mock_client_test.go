package plan

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nickalie/shipway/internal/core/service"
)

// MockPlatformClient mocks the PlatformClient interface for testing
type MockPlatformClient struct {
	mock.Mock
}

func (m *MockPlatformClient) ReadState(ctx context.Context, name string) (*State, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*State), args.Error(1)
}

func (m *MockPlatformClient) EnsureService(ctx context.Context, name, serviceType string) error {
	args := m.Called(ctx, name, serviceType)
	return args.Error(0)
}

func (m *MockPlatformClient) BuildImage(ctx context.Context, name string, build *service.BuildSpec) error {
	args := m.Called(ctx, name, build)
	return args.Error(0)
}

func (m *MockPlatformClient) SetEnv(ctx context.Context, name string, env []*service.EnvVar) error {
	args := m.Called(ctx, name, env)
	return args.Error(0)
}

func (m *MockPlatformClient) UpdateResources(ctx context.Context, name string, resources *service.ResourceSpec) error {
	args := m.Called(ctx, name, resources)
	return args.Error(0)
}

func (m *MockPlatformClient) UpdateRegions(ctx context.Context, name string, regions []string) error {
	args := m.Called(ctx, name, regions)
	return args.Error(0)
}

func (m *MockPlatformClient) UpdateHealthCheck(ctx context.Context, name string, ports []*service.PortSpec) error {
	args := m.Called(ctx, name, ports)
	return args.Error(0)
}

func (m *MockPlatformClient) UpdateScaling(ctx context.Context, name string, scaling *service.ScalingSpec) error {
	args := m.Called(ctx, name, scaling)
	return args.Error(0)
}

func (m *MockPlatformClient) UpdateRoutes(ctx context.Context, name string, routes []*service.RouteSpec) error {
	args := m.Called(ctx, name, routes)
	return args.Error(0)
}

func (m *MockPlatformClient) Close() {
	m.Called()
}

// MockClientFactory mocks the ClientFactory interface for testing
type MockClientFactory struct {
	mock.Mock
}

func (m *MockClientFactory) NewClient() (PlatformClient, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(PlatformClient), args.Error(1)
}

// MockSecretStore mocks the SecretStore interface with a plain map
type MockSecretStore struct {
	values map[string]string
	err    error
}

func (m *MockSecretStore) Resolve(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	value, ok := m.values[name]
	if !ok {
		return "", &testSecretNotFound{name: name}
	}
	return value, nil
}

type testSecretNotFound struct {
	name string
}

func (e *testSecretNotFound) Error() string {
	return "secret '" + e.name + "' not found"
}

// MockAppliedCache mocks the AppliedCache interface with func fields
type MockAppliedCache struct {
	GetFingerprintFunc  func(service string) (string, error)
	SaveFingerprintFunc func(service, fingerprint string) error
	saved               map[string]string
}

func (m *MockAppliedCache) GetFingerprint(service string) (string, error) {
	if m.GetFingerprintFunc != nil {
		return m.GetFingerprintFunc(service)
	}
	return m.saved[service], nil
}

func (m *MockAppliedCache) SaveFingerprint(service, fingerprint string) error {
	if m.SaveFingerprintFunc != nil {
		return m.SaveFingerprintFunc(service, fingerprint)
	}
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[service] = fingerprint
	return nil
}
