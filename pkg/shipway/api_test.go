package shipway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nickalie/shipway/internal/core/plan"
)

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipway.yaml")
	content := `
name: quiz-bot
service:
  type: web
  build:
    context: .
  ports:
    - port: 8080
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := LoadManifest(path)
	assert.NoError(t, err)
	assert.Equal(t, "quiz-bot", m.Name)
	assert.Equal(t, "web", m.Service.Type)
}

func TestLoadManifestInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipway.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("name: quiz-bot\n"), 0644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	m := NewBuilder("quiz-bot").
		Type("web").
		Build(&BuildSpec{}).
		AddPort(8080).
		Regions("fra").
		Manifest()

	assert.Empty(t, Validate(m))

	m.Service.Regions = []string{"atlantis"}
	issues := Validate(m)
	assert.Len(t, issues, 1)
	assert.Equal(t, "service.regions[0]", issues[0].Path)
}

func TestValidateWithLimits(t *testing.T) {
	m := NewBuilder("quiz-bot").
		Type("web").
		Build(&BuildSpec{}).
		AddPort(8080).
		Regions("onprem").
		Manifest()

	limits := Limits{MinCPU: 0.01, MinMemory: 1024, AllowedRegions: []string{"onprem"}}
	assert.Empty(t, ValidateWithLimits(m, limits))
}

func TestBuildPlan(t *testing.T) {
	m := NewBuilder("quiz-bot").
		Type("web").
		Build(&BuildSpec{}).
		AddPort(8080).
		Manifest()

	p, err := BuildPlan(m, &plan.State{})
	assert.NoError(t, err)
	assert.False(t, p.IsEmpty())
	assert.Equal(t, "quiz-bot", p.Service)
}
