package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

// CommandRunner is an interface for executing commands
type CommandRunner func(dir string, args ...string) ([]byte, error)

// Loader defines the interface for loading manifests.
type Loader interface {
	Load(path string) (*Manifest, error)
}

// DefaultLoader implements the Loader interface using file-based manifests.
type DefaultLoader struct {
	validator *validator.Validate
	loaders   map[string]func(string) (*Manifest, error)
	cmdRunner CommandRunner
	strict    bool
}

// LoaderOption defines functional options for DefaultLoader.
type LoaderOption func(*DefaultLoader)

// WithStrict makes the loader reject unknown manifest fields instead of
// ignoring them.
func WithStrict(strict bool) LoaderOption {
	return func(l *DefaultLoader) {
		l.strict = strict
	}
}

// WithCommandRunner overrides how script manifests are executed.
func WithCommandRunner(runner CommandRunner) LoaderOption {
	return func(l *DefaultLoader) {
		l.cmdRunner = runner
	}
}

// NewLoader creates a new manifest loader with default implementations.
func NewLoader(opts ...LoaderOption) *DefaultLoader {
	validate := validator.New()
	// Report field paths the way they appear in the manifest.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	loader := &DefaultLoader{
		validator: validate,
		loaders:   make(map[string]func(string) (*Manifest, error)),
		cmdRunner: execCommand,
	}

	for _, opt := range opts {
		opt(loader)
	}

	// Register default loaders
	loader.loaders[".yaml"] = loader.loadYAML
	loader.loaders[".yml"] = loader.loadYAML
	loader.loaders[".toml"] = loader.loadTOML
	loader.loaders[".json"] = loader.loadJSON
	loader.loaders[".ts"] = loader.loadTypeScript
	loader.loaders[".js"] = loader.loadJavaScript
	loader.loaders[".mjs"] = loader.loadJavaScript
	loader.loaders[".go"] = loader.loadGolang

	return loader
}

// execCommand executes a command and returns its output,
// streaming the output to stdout/stderr in real time.
func execCommand(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	var outputBuffer bytes.Buffer

	var wg sync.WaitGroup
	wg.Add(2)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Println(line)
			outputBuffer.WriteString(line + "\n")
		}
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Fprintln(os.Stderr, line)
			outputBuffer.WriteString(line + "\n")
		}
	}()

	wg.Wait()

	err = cmd.Wait()
	if err != nil {
		return outputBuffer.Bytes(), fmt.Errorf("%w\n%s", err, outputBuffer.String())
	}

	return outputBuffer.Bytes(), nil
}

// Load loads a manifest from the specified path and validates its structure.
func (l *DefaultLoader) Load(path string) (*Manifest, error) {
	m, err := l.loadByExtension(path)
	if err != nil {
		return nil, err
	}

	if err := l.validateStructure(path, m); err != nil {
		return nil, err
	}

	return m, nil
}

// loadByExtension loads a manifest based on file extension
func (l *DefaultLoader) loadByExtension(path string) (*Manifest, error) {
	ext := strings.ToLower(filepath.Ext(path))

	loader, ok := l.loaders[ext]
	if !ok {
		return nil, &ParseError{File: path, Cause: fmt.Errorf("unsupported manifest extension: %s", ext)}
	}

	return loader(path)
}

// validateStructure enforces the required manifest shape at the parse
// boundary. Semantic platform rules live in the validate package.
func (l *DefaultLoader) validateStructure(path string, m *Manifest) error {
	if err := l.validator.Struct(m); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ParseError{
				File:  path,
				Field: fieldPath(validationErrors[0]),
				Cause: fmt.Errorf("invalid manifest structure:\n%s", formatFieldErrors(validationErrors)),
			}
		}
		return &ParseError{File: path, Cause: err}
	}

	m.Service.Name = m.Name
	return nil
}

// fieldPath maps a validator namespace like "Manifest.service.type" to the
// manifest path "service.type".
func fieldPath(err validator.FieldError) string {
	return strings.TrimPrefix(err.Namespace(), "Manifest.")
}

// formatFieldErrors formats structural errors into a readable string
func formatFieldErrors(errs validator.ValidationErrors) string {
	errMsgs := make([]string, 0, len(errs))
	for _, err := range errs {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"Field '%s' failed validation: %s (condition: %s)",
			fieldPath(err),
			err.Tag(),
			err.Param(),
		))
	}
	return strings.Join(errMsgs, "\n")
}

// loadYAML loads a manifest from a YAML file
func (l *DefaultLoader) loadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	dataStr := replaceEnvVariables(string(data))

	var m Manifest
	if l.strict {
		err = yaml.UnmarshalStrict([]byte(dataStr), &m)
	} else {
		err = yaml.Unmarshal([]byte(dataStr), &m)
	}
	if err != nil {
		return nil, &ParseError{File: path, Cause: fmt.Errorf("failed to parse YAML: %w", err)}
	}

	return &m, nil
}

// loadTOML loads a manifest from a TOML file
func (l *DefaultLoader) loadTOML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	dataStr := replaceEnvVariables(string(data))

	var m Manifest
	decoder := toml.NewDecoder(strings.NewReader(dataStr))
	if l.strict {
		decoder = decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&m); err != nil {
		return nil, &ParseError{File: path, Cause: fmt.Errorf("failed to parse TOML: %w", err)}
	}

	return &m, nil
}

// loadJSON loads a manifest from a JSON file
func (l *DefaultLoader) loadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	dataStr := replaceEnvVariables(string(data))

	m, err := l.decodeJSON([]byte(dataStr))
	if err != nil {
		return nil, &ParseError{File: path, Cause: err}
	}

	return m, nil
}

func (l *DefaultLoader) decodeJSON(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := json.NewDecoder(bytes.NewReader(data))
	if l.strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &m, nil
}

// loadTypeScript loads a manifest from a TypeScript file
func (l *DefaultLoader) loadTypeScript(path string) (*Manifest, error) {
	tmpDir, err := os.MkdirTemp("", "tsmanifest")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	err = os.WriteFile(filepath.Join(tmpDir, "package.json"), []byte("{\"type\":\"module\"}"), 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create package.json: %w", err)
	}

	defer os.RemoveAll(tmpDir)

	jsFile := filepath.Join(tmpDir, "manifest.js")
	// Build TypeScript file using esbuild
	result := api.Build(api.BuildOptions{
		EntryPoints: []string{path},
		Bundle:      true,
		Platform:    api.PlatformNode,
		Format:      api.FormatESModule,
		Write:       true,
		Outfile:     jsFile,
	})

	if len(result.Errors) > 0 {
		return nil, &ParseError{File: path, Cause: fmt.Errorf("failed to build TypeScript: %v", result.Errors[0].Text)}
	}

	return l.loadJavaScript(jsFile)
}

// loadJavaScript loads a manifest from a JavaScript file
func (l *DefaultLoader) loadJavaScript(path string) (*Manifest, error) {
	return l.loadCmd(
		filepath.Dir(path),
		"node",
		"-e",
		fmt.Sprintf(
			"(async ()=>{"+
				"const m=await import(\"./%s\");"+
				"console.log(JSON.stringify("+
				"typeof m.default==='function'?await m.default():m.default));"+
				"})();",
			filepath.Base(path),
		),
	)
}

// loadGolang loads a manifest from a Go file
func (l *DefaultLoader) loadGolang(path string) (*Manifest, error) {
	return l.loadCmd("./", "go", "run", path)
}

// loadCmd loads a manifest by executing a command that prints it as JSON
func (l *DefaultLoader) loadCmd(dir string, args ...string) (*Manifest, error) {
	output, err := l.cmdRunner(dir, args...)
	if err != nil {
		return nil, fmt.Errorf("%w\n%s", err, string(output))
	}

	parts := strings.Split(string(output), "\n")

	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid manifest command output")
	}

	outputStr := parts[len(parts)-2]

	m, err := l.decodeJSON([]byte(outputStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest output: %w", err)
	}

	return m, nil
}

// replaceEnvVariables replaces environment variables in the content
func replaceEnvVariables(content string) string {
	re := regexp.MustCompile(`\${(\w+)}`)
	return re.ReplaceAllStringFunc(content, func(s string) string {
		key := re.FindStringSubmatch(s)[1]
		return os.Getenv(key)
	})
}
