// file: cmd/shipway/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nickalie/shipway/internal/infrastructure/sshdeploy"
	"github.com/nickalie/shipway/internal/platform/cli"
)

// Application encapsulates the shipway CLI application
type Application struct {
	command       string
	manifestPath  string
	envPaths      []string
	vaultPassword string
	secretsVault  string
	strict        bool
	noSkip        bool
	timeout       time.Duration
	host          string
	user          string
	password      string
	privateKey    string
	sshPort       int
	verbose       bool
	version       bool
	versionString string
}

// NewApplication creates a new Application instance with default values
func NewApplication() *Application {
	return &Application{
		manifestPath:  "shipway.yaml",
		versionString: "1.0.0",
	}
}

// ParseFlags parses the command-line flags and updates the Application
// fields accordingly. The first positional argument selects the command:
// validate, plan or apply.
func (app *Application) ParseFlags() {
	flag.StringVar(&app.manifestPath, "manifest", app.manifestPath, "Path to the deployment manifest")

	var envPathsStr string
	flag.StringVar(&envPathsStr, "env", "", "Comma-separated paths to environment files")
	flag.StringVar(&app.vaultPassword, "vault-password", app.vaultPassword, "Password for Ansible Vault files")
	flag.StringVar(&app.secretsVault, "secrets-vault", app.secretsVault, "Path to an Ansible Vault secrets file")
	flag.BoolVar(&app.strict, "strict", app.strict, "Reject unknown manifest fields")
	flag.BoolVar(&app.noSkip, "no-skip", app.noSkip, "Always reconcile, even when the manifest is unchanged")
	flag.DurationVar(&app.timeout, "timeout", app.timeout, "Per-action timeout (default derived from health checks)")
	flag.StringVar(&app.host, "host", app.host, "Deployment host")
	flag.StringVar(&app.user, "user", app.user, "SSH user on the deployment host")
	flag.StringVar(&app.password, "password", app.password, "SSH password")
	flag.StringVar(&app.privateKey, "ssh-key", app.privateKey, "Path to the SSH private key")
	flag.IntVar(&app.sshPort, "ssh-port", app.sshPort, "SSH port on the deployment host")
	flag.BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logging")
	flag.BoolVar(&app.version, "version", app.version, "Show version information")

	flag.Parse()

	if envPathsStr != "" {
		app.envPaths = strings.Split(envPathsStr, ",")
	}

	app.command = flag.Arg(0)
}

// Run executes the application
func (app *Application) Run() error {
	if app.version {
		fmt.Printf("shipway version %s\n", app.versionString)
		return nil
	}

	if app.verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch app.command {
	case "validate", "":
		return app.runValidate()
	case "plan":
		return app.runPlan(ctx)
	case "apply":
		return app.runApply(ctx)
	default:
		return fmt.Errorf("unknown command '%s' (expected validate, plan or apply)", app.command)
	}
}

func (app *Application) runValidate() error {
	cliApp := cli.NewApp(cli.WithStrictParsing(app.strict))

	issues, err := cliApp.Validate(app.manifestPath, app.envPaths, app.vaultPassword)
	for _, issue := range issues {
		fmt.Println(issue)
	}
	if err != nil {
		return fmt.Errorf("manifest is invalid")
	}

	fmt.Printf("Manifest '%s' is valid\n", app.manifestPath)
	return nil
}

func (app *Application) runPlan(ctx context.Context) error {
	cliApp, err := app.newDeployApp()
	if err != nil {
		return err
	}

	p, err := cliApp.Plan(ctx, app.manifestPath, app.envPaths, app.vaultPassword)
	if err != nil {
		return err
	}

	if p.IsEmpty() {
		fmt.Printf("Service '%s' is up to date\n", p.Service)
		return nil
	}

	return printJSON(p)
}

func (app *Application) runApply(ctx context.Context) error {
	cliApp, err := app.newDeployApp()
	if err != nil {
		return err
	}

	report, applyErr := cliApp.Apply(ctx, app.manifestPath, app.envPaths, app.vaultPassword)
	if report != nil {
		if err := printJSON(report); err != nil {
			return err
		}
	}
	if applyErr != nil {
		return applyErr
	}

	fmt.Printf("Service reconciled successfully\n")
	return nil
}

func (app *Application) newDeployApp() (*cli.App, error) {
	if app.host == "" {
		return nil, fmt.Errorf("a deployment host is required (-host)")
	}

	store, err := cli.NewSecretStore(app.secretsVault, app.vaultPassword)
	if err != nil {
		return nil, err
	}

	target := &sshdeploy.Target{
		Host:       app.host,
		User:       app.user,
		Password:   app.password,
		PrivateKey: app.privateKey,
		Port:       app.sshPort,
	}

	return cli.NewApp(
		cli.WithStrictParsing(app.strict),
		cli.WithTarget(target, store, app.timeout, !app.noSkip),
	), nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	app := NewApplication()
	app.ParseFlags()

	if err := app.Run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
