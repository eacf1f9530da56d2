package main

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	oldFlagCommandLine := flag.CommandLine

	defer func() {
		os.Args = oldArgs
		flag.CommandLine = oldFlagCommandLine
	}()

	tests := []struct {
		name         string
		args         []string
		wantCommand  string
		wantManifest string
		wantEnv      []string
		wantHost     string
		wantStrict   bool
		wantNoSkip   bool
		wantTimeout  time.Duration
	}{
		{
			name:         "default values",
			args:         []string{"shipway"},
			wantCommand:  "",
			wantManifest: "shipway.yaml",
		},
		{
			name:         "validate command",
			args:         []string{"shipway", "-manifest", "custom.yaml", "-strict", "validate"},
			wantCommand:  "validate",
			wantManifest: "custom.yaml",
			wantStrict:   true,
		},
		{
			name:         "apply with target flags",
			args:         []string{"shipway", "-host", "deploy.example.com", "-env", "prod.env,secrets.env", "-timeout", "2m", "-no-skip", "apply"},
			wantCommand:  "apply",
			wantManifest: "shipway.yaml",
			wantEnv:      []string{"prod.env", "secrets.env"},
			wantHost:     "deploy.example.com",
			wantNoSkip:   true,
			wantTimeout:  2 * time.Minute,
		},
		{
			name:         "plan command",
			args:         []string{"shipway", "-host", "deploy.example.com", "plan"},
			wantCommand:  "plan",
			wantManifest: "shipway.yaml",
			wantHost:     "deploy.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
			os.Args = tt.args

			app := NewApplication()
			app.ParseFlags()

			assert.Equal(t, tt.wantCommand, app.command, "command mismatch")
			assert.Equal(t, tt.wantManifest, app.manifestPath, "manifestPath mismatch")
			assert.Equal(t, tt.wantEnv, app.envPaths, "envPaths mismatch")
			assert.Equal(t, tt.wantHost, app.host, "host mismatch")
			assert.Equal(t, tt.wantStrict, app.strict, "strict mismatch")
			assert.Equal(t, tt.wantNoSkip, app.noSkip, "noSkip mismatch")
			assert.Equal(t, tt.wantTimeout, app.timeout, "timeout mismatch")
		})
	}
}

func TestRunVersionFlag(t *testing.T) {
	app := &Application{
		version:       true,
		versionString: "1.0.0-test",
	}

	assert.NoError(t, app.Run())
}

func TestRunUnknownCommand(t *testing.T) {
	app := NewApplication()
	app.command = "destroy"

	err := app.Run()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestNewDeployAppRequiresHost(t *testing.T) {
	app := NewApplication()

	_, err := app.newDeployApp()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "-host")
}

func TestNewDeployAppWithHost(t *testing.T) {
	app := NewApplication()
	app.host = "deploy.example.com"
	app.user = "deploy"

	cliApp, err := app.newDeployApp()
	assert.NoError(t, err)
	assert.NotNil(t, cliApp)
}

func TestPrintJSON(t *testing.T) {
	assert.NoError(t, printJSON(map[string]string{"service": "quiz-bot"}))
	assert.Error(t, printJSON(make(chan int)))
}
