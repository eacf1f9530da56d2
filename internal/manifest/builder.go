package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/nickalie/shipway/internal/core/service"
)

type Builder struct {
	manifest    *Manifest
	currentPort *service.PortSpec
}

func NewBuilder(name string) *Builder {
	return &Builder{
		manifest: &Manifest{
			Name:    name,
			Service: &service.Config{Name: name},
		},
	}
}

func (b *Builder) Type(serviceType string) *Builder {
	b.manifest.Service.Type = serviceType
	return b
}

func (b *Builder) Build(spec *service.BuildSpec) *Builder {
	b.manifest.Service.Build = spec
	return b
}

func (b *Builder) AddPort(port int) *Builder {
	p := &service.PortSpec{Port: port}
	b.manifest.Service.Ports = append(b.manifest.Service.Ports, p)
	b.currentPort = p
	return b
}

func (b *Builder) HealthCheck(health *service.HealthCheck) *Builder {
	if b.currentPort == nil {
		return b
	}
	if b.currentPort.HTTP == nil {
		b.currentPort.HTTP = &service.HTTPSpec{}
	}
	b.currentPort.HTTP.Health = health
	return b
}

func (b *Builder) AddEnv(name, value string) *Builder {
	b.manifest.Service.Env = append(b.manifest.Service.Env, &service.EnvVar{
		Name:  name,
		Value: value,
	})
	return b
}

func (b *Builder) AddSecretEnv(name, secret string) *Builder {
	b.manifest.Service.Env = append(b.manifest.Service.Env, &service.EnvVar{
		Name:   name,
		Secret: secret,
	})
	return b
}

func (b *Builder) Resources(cpu float64, memory service.ByteSize) *Builder {
	b.manifest.Service.Resources = &service.ResourceSpec{
		CPU:    cpu,
		Memory: memory,
	}
	return b
}

func (b *Builder) Scaling(min, max int) *Builder {
	b.manifest.Service.Scaling = &service.ScalingSpec{Min: min, Max: max}
	return b
}

func (b *Builder) Regions(regions ...string) *Builder {
	b.manifest.Service.Regions = regions
	return b
}

func (b *Builder) AddRoute(path string, public bool) *Builder {
	b.manifest.Service.Routes = append(b.manifest.Service.Routes, &service.RouteSpec{
		Path:   path,
		Public: public,
	})
	return b
}

func (b *Builder) Manifest() *Manifest {
	return b.manifest
}

func (b *Builder) Print() error {
	d, err := json.Marshal(b.manifest)

	if err != nil {
		return err
	}

	fmt.Println(string(d))
	return nil
}
