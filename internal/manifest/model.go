// Package manifest loads declarative deployment manifests into a typed,
// structurally validated configuration.
package manifest

import (
	"github.com/nickalie/shipway/internal/core/service"
)

// Manifest is the top-level deployment document: a service name and the
// desired service state.
type Manifest struct {
	Name    string          `yaml:"name" json:"name" toml:"name" validate:"required"`
	Service *service.Config `yaml:"service" json:"service" toml:"service" validate:"required"`
}

// Config returns the service configuration with the manifest name attached.
func (m *Manifest) Config() *service.Config {
	cfg := m.Service
	cfg.Name = m.Name
	return cfg
}
